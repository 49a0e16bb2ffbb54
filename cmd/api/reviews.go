package main

import (
	"errors"
	"net/http"
	"strconv"

	"venuebook/internal/accesscontrol"
	"venuebook/internal/store"

	"github.com/go-chi/chi/v5"
)

type createReviewPayload struct {
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,max=500"`
	EventType string `json:"event_type" validate:"omitempty,max=100"`
}

// createReviewHandler godoc
//
//	@Summary		Review a venue
//	@Description	One review per customer per venue. The venue's rating and review count are recomputed in the same transaction.
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Param			venueID	path		int					true	"Venue ID"
//	@Param			payload	body		createReviewPayload	true	"Review"
//	@Success		201		{object}	store.Review
//	@Failure		404		{object}	error	"Venue not found"
//	@Failure		409		{object}	error	"Already reviewed"
//	@Security		ApiKeyAuth
//	@Router			/venues/{venueID}/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	var payload createReviewPayload
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

	if _, err := app.store.Venues.GetByID(ctx, venueID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	review := &store.Review{
		VenueID:      venueID,
		CustomerID:   user.ID,
		CustomerName: user.Name,
		Rating:       payload.Rating,
		Comment:      payload.Comment,
		EventType:    payload.EventType,
	}

	if err := app.store.Reviews.Create(ctx, review); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyReviewed):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getVenueReviewsHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	reviews, err := app.store.Reviews.GetByVenue(r.Context(), venueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, reviews)
}

type updateReviewPayload struct {
	Rating    *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment   *string `json:"comment" validate:"omitempty,max=500"`
	EventType *string `json:"event_type" validate:"omitempty,max=100"`
}

func (app *application) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	var payload updateReviewPayload
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

	review, err := app.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if !accesscontrol.CanEditReview(actorFor(user), review.CustomerID) {
		app.forbiddenResponse(w, r)
		return
	}

	if payload.Rating != nil {
		review.Rating = *payload.Rating
	}
	if payload.Comment != nil {
		review.Comment = *payload.Comment
	}
	if payload.EventType != nil {
		review.EventType = *payload.EventType
	}

	if err := app.store.Reviews.Update(ctx, review); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	user := getUserFromContext(r)
	ctx := r.Context()

	review, err := app.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if !accesscontrol.CanDeleteReview(actorFor(user), review.CustomerID) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Reviews.Delete(ctx, review.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "review deleted"})
}
