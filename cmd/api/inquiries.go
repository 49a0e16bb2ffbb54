package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"venuebook/internal/accesscontrol"
	"venuebook/internal/mailer"
	"venuebook/internal/store"

	"github.com/go-chi/chi/v5"
)

type createInquiryPayload struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Message string `json:"message" validate:"required,max=2000"`
}

// createInquiryHandler godoc
//
//	@Summary		Ask about a venue
//	@Description	Public endpoint; no account required. The venue owner is notified by email.
//	@Tags			Inquiries
//	@Accept			json
//	@Produce		json
//	@Param			venueID	path		int						true	"Venue ID"
//	@Param			payload	body		createInquiryPayload	true	"Inquiry"
//	@Success		201		{object}	store.Inquiry
//	@Router			/venues/{venueID}/inquiries [post]
func (app *application) createInquiryHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	var payload createInquiryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	venue, err := app.store.Venues.GetByID(r.Context(), venueID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	inquiry := &store.Inquiry{
		VenueID: venue.ID,
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Message: payload.Message,
	}

	if err := app.store.Inquiries.Create(r.Context(), inquiry); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	go app.notifyOwnerOfInquiry(venue, inquiry)

	if err := app.jsonResponse(w, http.StatusCreated, inquiry); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getVenueInquiriesHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	user := getUserFromContext(r)

	venue, err := app.store.Venues.GetByID(r.Context(), venueID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if !accesscontrol.CanManageVenue(actorFor(user), venue.OwnerID) {
		app.forbiddenResponse(w, r)
		return
	}

	inquiries, err := app.store.Inquiries.GetByVenue(r.Context(), venueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, inquiries)
}

type updateInquiryStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=new responded"`
}

func (app *application) updateInquiryStatusHandler(w http.ResponseWriter, r *http.Request) {
	inquiryID, err := strconv.ParseInt(chi.URLParam(r, "inquiryID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid inquiry ID"))
		return
	}

	var payload updateInquiryStatusPayload
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

	inquiry, err := app.store.Inquiries.GetByID(ctx, inquiryID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	venue, err := app.store.Venues.GetByID(ctx, inquiry.VenueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if !accesscontrol.CanManageVenue(actorFor(user), venue.OwnerID) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Inquiries.UpdateStatus(ctx, inquiryID, payload.Status); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	inquiry.Status = payload.Status
	app.jsonResponse(w, http.StatusOK, inquiry)
}

func (app *application) notifyOwnerOfInquiry(venue *store.Venue, inquiry *store.Inquiry) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	owner, err := app.store.Users.GetByID(ctx, venue.OwnerID)
	if err != nil {
		app.logger.Errorw("failed to load owner for inquiry notification",
			"venueID", venue.ID, "error", err)
		return
	}

	_, err = app.mailer.Send(mailer.InquiryReceivedTemplate, owner.Name, owner.Email, map[string]any{
		"OwnerName": owner.Name,
		"VenueName": venue.Name,
		"FromName":  inquiry.Name,
		"FromEmail": inquiry.Email,
		"Message":   inquiry.Message,
	})
	if err != nil {
		app.logger.Errorw("failed to send inquiry email",
			"venueID", venue.ID, "email", owner.Email, "error", err)
	}
}
