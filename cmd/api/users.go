package main

import (
	"errors"
	"net/http"

	"venuebook/internal/store"
)

// getMeHandler godoc
//
//	@Summary	Current user profile
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	store.User
//	@Security	ApiKeyAuth
//	@Router		/users/me [get]
func (app *application) getMeHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	app.jsonResponse(w, http.StatusOK, user)
}

type updateUserPayload struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
}

func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload updateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Phone != nil {
		updates["phone"] = *payload.Phone
	}
	if payload.Email != nil {
		updates["email"] = *payload.Email
	}

	if err := app.store.Users.Update(r.Context(), user.ID, updates); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			app.conflictResponse(w, r, err)
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	updated, err := app.store.Users.GetByID(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, updated)
}

// logoutHandler revokes the stored refresh token. The access token stays
// valid until it expires; clients are expected to drop it.
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := app.store.Users.DeleteRefreshToken(r.Context(), user.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

type pushTokenPayload struct {
	Token string `json:"token" validate:"required,max=255"`
}

func (app *application) addPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload pushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	if err := app.store.PushTokens.AddOrUpdate(r.Context(), user.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "push token registered"})
}

func (app *application) removePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload pushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)

	if err := app.store.PushTokens.Remove(r.Context(), user.ID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "push token removed"})
}
