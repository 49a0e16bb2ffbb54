package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"venuebook/internal/accesscontrol"
	"venuebook/internal/mailer"
	"venuebook/internal/notifications"
	"venuebook/internal/store"

	"github.com/go-chi/chi/v5"
)

const eventDateLayout = "2006-01-02"

type createBookingPayload struct {
	EventDate  string `json:"event_date" validate:"required,datetime=2006-01-02"`
	EventType  string `json:"event_type" validate:"required,max=100"`
	GuestCount int    `json:"guest_count" validate:"required,min=1"`
	Phone      string `json:"phone" validate:"omitempty,max=20"`
	Email      string `json:"email" validate:"omitempty,email,max=255"`
	Message    string `json:"message" validate:"omitempty,max=1000"`
}

// createBookingHandler godoc
//
//	@Summary		Book a venue for a date
//	@Description	Creates a pending booking. The amount is snapshotted from the venue's current price and never recomputed.
//	@Tags			Bookings
//	@Accept			json
//	@Produce		json
//	@Param			venueID	path		int						true	"Venue ID"
//	@Param			payload	body		createBookingPayload	true	"Booking details"
//	@Success		201		{object}	store.Booking
//	@Failure		404		{object}	error	"Venue not found"
//	@Failure		409		{object}	error	"Date already booked"
//	@Security		ApiKeyAuth
//	@Router			/venues/{venueID}/bookings [post]
func (app *application) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	var payload createBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	eventDate, err := time.Parse(eventDateLayout, payload.EventDate)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid event date: %w", err))
		return
	}

	user := getUserFromContext(r)
	ctx := r.Context()

	venue, err := app.store.Venues.GetByID(ctx, venueID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Status is re-validated server-side; clients never get to assert it.
	if venue.Status != store.VenueApproved {
		app.conflictResponse(w, r, errors.New("venue is not open for booking"))
		return
	}

	if payload.GuestCount > venue.Capacity {
		app.badRequestResponse(w, r, fmt.Errorf("guest count %d exceeds venue capacity %d", payload.GuestCount, venue.Capacity))
		return
	}

	// Contact fields default to the customer's profile when omitted.
	phone := payload.Phone
	if phone == "" {
		phone = user.Phone
	}
	email := payload.Email
	if email == "" {
		email = user.Email
	}

	reference, err := app.refs.Generate(user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	var message *string
	if payload.Message != "" {
		message = &payload.Message
	}

	booking := &store.Booking{
		Reference:    reference,
		VenueID:      venue.ID,
		CustomerID:   user.ID,
		CustomerName: user.Name,
		EventDate:    eventDate,
		EventType:    payload.EventType,
		GuestCount:   payload.GuestCount,
		Amount:       venue.Price, // snapshot of the price at booking time
		Phone:        phone,
		Email:        email,
		Message:      message,
	}

	if err := app.store.Bookings.Create(ctx, booking); err != nil {
		switch {
		case errors.Is(err, store.ErrDateTaken):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	booking.VenueName = venue.Name
	booking.VenueAddress = venue.Address

	app.invalidateReservedDates(venue.ID)
	app.notifyBookingRequested(booking, venue, user)

	if err := app.jsonResponse(w, http.StatusCreated, booking); err != nil {
		app.internalServerError(w, r, err)
	}
}

// reservedDatesHandler godoc
//
//	@Summary	List a venue's reserved dates
//	@Tags		Bookings
//	@Produce	json
//	@Param		venueID	path		int	true	"Venue ID"
//	@Success	200		{array}		string
//	@Router		/venues/{venueID}/reserved-dates [get]
func (app *application) reservedDatesHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	ctx := r.Context()

	if app.cache != nil {
		if dates, ok := app.cache.GetReservedDates(ctx, venueID); ok {
			app.jsonResponse(w, http.StatusOK, formatDates(dates))
			return
		}
	}

	dates, err := app.store.Bookings.GetReservedDates(ctx, venueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if app.cache != nil {
		if err := app.cache.SetReservedDates(ctx, venueID, dates); err != nil {
			app.logger.Warnw("failed to cache reserved dates", "venue_id", venueID, "error", err)
		}
	}

	app.jsonResponse(w, http.StatusOK, formatDates(dates))
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(eventDateLayout))
	}
	return out
}

type updateBookingStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled completed"`
}

// updateBookingStatusHandler godoc
//
//	@Summary		Transition a booking's status
//	@Description	Allowed edges: pending→confirmed|cancelled, confirmed→completed|cancelled. Venue owner or admin only.
//	@Tags			Bookings
//	@Accept			json
//	@Produce		json
//	@Param			bookingID	path		int							true	"Booking ID"
//	@Param			payload		body		updateBookingStatusPayload	true	"New status"
//	@Success		200			{object}	store.Booking
//	@Failure		403			{object}	error
//	@Failure		422			{object}	error	"Invalid transition"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID}/status [patch]
func (app *application) updateBookingStatusHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid booking ID"))
		return
	}

	var payload updateBookingStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	ctx := r.Context()

	booking, err := app.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	venue, err := app.store.Venues.GetByID(ctx, booking.VenueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if !accesscontrol.CanTransitionBooking(actorFor(user), venue.OwnerID) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, payload.Status); err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidTransition):
			app.invalidTransitionResponse(w, r, fmt.Errorf("cannot move booking from %s to %s", booking.Status, payload.Status))
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, errors.New("booking was modified concurrently, retry"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	booking.Status = payload.Status

	app.invalidateReservedDates(booking.VenueID)
	app.notifyBookingStatusChanged(booking)

	if err := app.jsonResponse(w, http.StatusOK, booking); err != nil {
		app.internalServerError(w, r, err)
	}
}

// cancelBookingHandler lets a customer withdraw their own booking while it
// is still pending. Once confirmed, cancellation goes through the venue.
func (app *application) cancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid booking ID"))
		return
	}

	user := getUserFromContext(r)
	ctx := r.Context()

	booking, err := app.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if !accesscontrol.CanCancelBooking(actorFor(user), booking.CustomerID) {
		app.forbiddenResponse(w, r)
		return
	}

	if booking.Status != store.BookingPending {
		app.invalidTransitionResponse(w, r, errors.New("only pending bookings can be cancelled by the customer"))
		return
	}

	if err := app.store.Bookings.UpdateStatus(ctx, booking.ID, store.BookingPending, store.BookingCancelled); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, errors.New("booking was modified concurrently, retry"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	booking.Status = store.BookingCancelled

	app.invalidateReservedDates(booking.VenueID)
	app.notifyBookingStatusChanged(booking)

	if err := app.jsonResponse(w, http.StatusOK, booking); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getMyBookingsHandler godoc
//
//	@Summary	List the caller's bookings
//	@Tags		Bookings
//	@Produce	json
//	@Success	200	{array}	store.Booking
//	@Security	ApiKeyAuth
//	@Router		/bookings/mine [get]
func (app *application) getMyBookingsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookings, err := app.store.Bookings.GetByCustomer(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, bookings)
}

func (app *application) getVenueBookingsHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	user := getUserFromContext(r)
	ctx := r.Context()

	venue, err := app.store.Venues.GetByID(ctx, venueID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if !accesscontrol.CanViewVenueBookings(actorFor(user), venue.OwnerID) {
		app.forbiddenResponse(w, r)
		return
	}

	bookings, err := app.store.Bookings.GetByVenue(ctx, venueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, bookings)
}

func (app *application) getAllBookingsHandler(w http.ResponseWriter, r *http.Request) {
	bookings, err := app.store.Bookings.GetAll(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, bookings)
}

func (app *application) invalidateReservedDates(venueID int64) {
	if app.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.cache.Invalidate(ctx, venueID); err != nil {
		app.logger.Warnw("failed to invalidate reserved dates cache", "venue_id", venueID, "error", err)
	}
}

// notifyBookingRequested emails the customer and the venue owner and pushes
// to the owner's devices. Fire-and-forget: failures are logged only.
func (app *application) notifyBookingRequested(booking *store.Booking, venue *store.Venue, customer *store.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		vars := struct {
			Username     string
			CustomerName string
			Reference    string
			VenueName    string
			EventDate    string
			EventType    string
			GuestCount   int
			Amount       int64
		}{
			Username:     customer.Name,
			CustomerName: customer.Name,
			Reference:    booking.Reference,
			VenueName:    venue.Name,
			EventDate:    booking.EventDate.Format(eventDateLayout),
			EventType:    booking.EventType,
			GuestCount:   booking.GuestCount,
			Amount:       booking.Amount,
		}

		if _, err := app.mailer.Send(mailer.BookingReceivedTemplate, customer.Name, booking.Email, vars); err != nil {
			app.logger.Errorw("error sending booking email to customer", "reference", booking.Reference, "error", err)
		}

		owner, err := app.store.Users.GetByID(ctx, venue.OwnerID)
		if err != nil {
			app.logger.Errorw("error loading venue owner for notification", "venue_id", venue.ID, "error", err)
			return
		}

		vars.Username = owner.Name
		if _, err := app.mailer.Send(mailer.BookingRequestTemplate, owner.Name, owner.Email, vars); err != nil {
			app.logger.Errorw("error sending booking email to owner", "reference", booking.Reference, "error", err)
		}

		app.pushBookingEvent(ctx, owner.ID, notifications.BookingRequested, booking.Reference)
	}()
}

// notifyBookingStatusChanged tells the customer their booking moved.
func (app *application) notifyBookingStatusChanged(booking *store.Booking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		vars := struct {
			Username  string
			Reference string
			VenueName string
			EventDate string
			Status    string
		}{
			Username:  booking.CustomerName,
			Reference: booking.Reference,
			VenueName: booking.VenueName,
			EventDate: booking.EventDate.Format(eventDateLayout),
			Status:    booking.Status,
		}

		if _, err := app.mailer.Send(mailer.BookingStatusTemplate, booking.CustomerName, booking.Email, vars); err != nil {
			app.logger.Errorw("error sending booking status email", "reference", booking.Reference, "error", err)
		}

		event := notifications.BookingEvent(booking.Status)
		app.pushBookingEvent(ctx, booking.CustomerID, event, booking.Reference)
	}()
}

func (app *application) pushBookingEvent(ctx context.Context, userID int64, event notifications.BookingEvent, reference string) {
	tokensByUser, err := app.store.PushTokens.GetByUserIDs(ctx, []int64{userID})
	if err != nil {
		app.logger.Errorw("error loading push tokens", "user_id", userID, "error", err)
		return
	}

	if err := notifications.SendBookingPush(ctx, app.push, tokensByUser[userID], event, reference); err != nil {
		app.logger.Errorw("error sending booking push", "user_id", userID, "reference", reference, "error", err)
	}
}
