package main

import (
	"net/http"

	"venuebook/internal/store"
)

type createContactMessagePayload struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"required,max=150"`
	Message string `json:"message" validate:"required,max=2000"`
}

// createContactMessageHandler godoc
//
//	@Summary	Send a message to the platform team
//	@Tags		Contact
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		createContactMessagePayload	true	"Message"
//	@Success	201		{object}	store.ContactMessage
//	@Router		/contact [post]
func (app *application) createContactMessageHandler(w http.ResponseWriter, r *http.Request) {
	var payload createContactMessagePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	msg := &store.ContactMessage{
		Name:    payload.Name,
		Email:   payload.Email,
		Subject: payload.Subject,
		Message: payload.Message,
	}

	if err := app.store.Contacts.Create(r.Context(), msg); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, msg); err != nil {
		app.internalServerError(w, r, err)
	}
}
