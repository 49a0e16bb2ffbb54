package main

import (
	"errors"
	"net/http"
	"strconv"

	"venuebook/internal/accesscontrol"
	"venuebook/internal/store"

	"github.com/go-chi/chi/v5"
)

type createVenuePayload struct {
	Name      string   `json:"name" validate:"required,max=150"`
	Location  string   `json:"location" validate:"required,max=100"`
	Address   string   `json:"address" validate:"required,max=255"`
	Capacity  int      `json:"capacity" validate:"required,min=1"`
	Price     int64    `json:"price" validate:"min=0"`
	PriceType string   `json:"price_type" validate:"required,oneof=per-day per-event per-hour"`
	Amenities []string `json:"amenities" validate:"omitempty,max=30,dive,max=50"`
}

// createVenueHandler godoc
//
//	@Summary		List a new venue
//	@Description	Venues start in pending status and become bookable once an admin approves them.
//	@Tags			Venues
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		createVenuePayload	true	"Venue details"
//	@Success		201		{object}	store.Venue
//	@Security		ApiKeyAuth
//	@Router			/venues [post]
func (app *application) createVenueHandler(w http.ResponseWriter, r *http.Request) {
	var payload createVenuePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if user.Role != string(accesscontrol.RoleOwner) && user.Role != string(accesscontrol.RoleAdmin) {
		app.forbiddenResponse(w, r)
		return
	}

	venue := &store.Venue{
		OwnerID:   user.ID,
		Name:      payload.Name,
		Location:  payload.Location,
		Address:   payload.Address,
		Capacity:  payload.Capacity,
		Price:     payload.Price,
		PriceType: payload.PriceType,
		Amenities: payload.Amenities,
	}

	if err := app.store.Venues.Create(r.Context(), venue); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, venue); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listVenuesHandler godoc
//
//	@Summary	Browse approved venues
//	@Tags		Venues
//	@Produce	json
//	@Param		location		query	string	false	"Region filter"
//	@Param		min_capacity	query	int		false	"Minimum capacity"
//	@Param		max_price		query	int		false	"Maximum price"
//	@Param		search			query	string	false	"Name/address search"
//	@Success	200				{array}	store.Venue
//	@Router		/venues [get]
func (app *application) listVenuesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.VenueFilter{
		Status:   store.VenueApproved,
		Location: q.Get("location"),
		Search:   q.Get("search"),
	}
	if v := q.Get("min_capacity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MinCapacity = n
		}
	}
	if v := q.Get("max_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MaxPrice = n
		}
	}

	venues, err := app.store.Venues.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, venues)
}

func (app *application) getVenueHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
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

	app.jsonResponse(w, http.StatusOK, venue)
}

type updateVenuePayload struct {
	Name      *string   `json:"name" validate:"omitempty,max=150"`
	Location  *string   `json:"location" validate:"omitempty,max=100"`
	Address   *string   `json:"address" validate:"omitempty,max=255"`
	Capacity  *int      `json:"capacity" validate:"omitempty,min=1"`
	Price     *int64    `json:"price" validate:"omitempty,min=0"`
	PriceType *string   `json:"price_type" validate:"omitempty,oneof=per-day per-event per-hour"`
	Amenities *[]string `json:"amenities" validate:"omitempty,max=30,dive,max=50"`
}

func (app *application) updateVenueHandler(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(chi.URLParam(r, "venueID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid venue ID"))
		return
	}

	var payload updateVenuePayload
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

	if !accesscontrol.CanManageVenue(actorFor(user), venue.OwnerID) {
		app.forbiddenResponse(w, r)
		return
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Location != nil {
		updates["location"] = *payload.Location
	}
	if payload.Address != nil {
		updates["address"] = *payload.Address
	}
	if payload.Capacity != nil {
		updates["capacity"] = *payload.Capacity
	}
	if payload.Price != nil {
		updates["price"] = *payload.Price
	}
	if payload.PriceType != nil {
		updates["price_type"] = *payload.PriceType
	}
	if payload.Amenities != nil {
		updates["amenities"] = *payload.Amenities
	}

	if err := app.store.Venues.Update(ctx, venueID, updates); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	updated, err := app.store.Venues.GetByID(ctx, venueID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, updated)
}

func (app *application) deleteVenueHandler(w http.ResponseWriter, r *http.Request) {
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

	if !accesscontrol.CanManageVenue(actorFor(user), venue.OwnerID) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Venues.Delete(ctx, venueID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "venue deleted"})
}
