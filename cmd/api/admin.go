package main

import (
	"errors"
	"net/http"
	"strconv"

	"venuebook/internal/store"

	"github.com/go-chi/chi/v5"
)

// adminListVenuesHandler lists venues in any status, defaulting to the
// pending moderation queue.
//
//	@Summary	Moderation queue
//	@Tags		Admin
//	@Produce	json
//	@Param		status	query		string	false	"pending, approved or rejected"
//	@Success	200		{array}		store.Venue
//	@Security	ApiKeyAuth
//	@Router		/admin/venues [get]
func (app *application) adminListVenuesHandler(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = store.VenuePending
	}

	switch status {
	case store.VenuePending, store.VenueApproved, store.VenueRejected:
	default:
		app.badRequestResponse(w, r, errors.New("invalid status filter"))
		return
	}

	venues, err := app.store.Venues.List(r.Context(), store.VenueFilter{Status: status})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, venues)
}

type updateVenueStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// updateVenueStatusHandler approves or rejects a listed venue. Only
// approved venues show up in public search and accept bookings.
func (app *application) updateVenueStatusHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	var payload updateVenueStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Venues.UpdateStatus(r.Context(), venueID, payload.Status); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	venue, err := app.store.Venues.GetByID(r.Context(), venueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, venue)
}

func (app *application) listContactMessagesHandler(w http.ResponseWriter, r *http.Request) {
	messages, err := app.store.Contacts.GetAll(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, messages)
}
