package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"venuebook/internal/accesscontrol"
	"venuebook/internal/mailer"
	"venuebook/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type RegisterUserPayload struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=customer owner"`
}

// registerUserHandler godoc
//
//	@Summary		Register a user
//	@Description	Creates a customer or owner account. Admin accounts are provisioned out of band.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RegisterUserPayload	true	"User credentials"
//	@Success		201		{object}	store.User
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error	"Email already registered"
//	@Router			/authentication/user [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	role := payload.Role
	if role == "" {
		role = string(accesscontrol.RoleCustomer)
	}

	user := &store.User{
		Name:  payload.Name,
		Email: payload.Email,
		Phone: payload.Phone,
		Role:  role,
	}
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Welcome mail is best effort; registration already succeeded.
	go func() {
		_, err := app.mailer.Send(mailer.UserWelcomeTemplate, user.Name, user.Email, map[string]any{
			"Username": user.Name,
		})
		if err != nil {
			app.logger.Errorw("failed to send welcome email", "email", user.Email, "error", err)
		}
	}()

	if err := app.jsonResponse(w, http.StatusCreated, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateUserTokenPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// createTokenHandler godoc
//
//	@Summary	Log in
//	@Tags		Authentication
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		CreateUserTokenPayload	true	"Credentials"
//	@Success	200		{object}	TokenResponse
//	@Failure	401		{object}	error
//	@Router		/authentication/token [post]
func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, errors.New("invalid credentials"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := user.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid credentials"))
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(user.ID, user.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshToken(r.Context(), user.ID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

type RefreshTokenPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// refreshTokenHandler exchanges a valid refresh token for a new token pair.
// The stored token is rotated, so a refresh token can only be used once.
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload RefreshTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil || !token.Valid {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid refresh token"))
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid refresh token"))
		return
	}

	userID, err := strconv.ParseInt(fmt.Sprintf("%.f", claims["sub"]), 10, 64)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid refresh token"))
		return
	}

	stored, err := app.store.Users.GetRefreshToken(r.Context(), userID)
	if err != nil || stored != payload.RefreshToken {
		app.unauthorizedErrorResponse(w, r, errors.New("refresh token revoked"))
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid refresh token"))
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(user.ID, user.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshToken(r.Context(), user.ID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

type ForgotPasswordPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// forgotPasswordHandler always answers 200 so the endpoint cannot be used
// to probe which emails are registered.
func (app *application) forgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload ForgotPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	resetToken := uuid.New().String()
	expires := time.Now().Add(app.config.mail.resetExp)

	err := app.store.Users.UpdateResetToken(r.Context(), payload.Email, resetToken, expires)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		app.internalServerError(w, r, err)
		return
	}

	if err == nil {
		resetURL := fmt.Sprintf("%s/reset-password?token=%s", app.config.frontendURL, resetToken)
		go func() {
			_, err := app.mailer.Send(mailer.ResetPasswordTemplate, "", payload.Email, map[string]any{
				"ResetURL": resetURL,
			})
			if err != nil {
				app.logger.Errorw("failed to send reset email", "email", payload.Email, "error", err)
			}
		}()
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "if that account exists, a reset link has been sent",
	})
}

type ResetPasswordPayload struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (app *application) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload ResetPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByResetToken(r.Context(), payload.Token)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.badRequestResponse(w, r, errors.New("invalid or expired reset token"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	var newPassword store.User
	if err := newPassword.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.UpdatePassword(r.Context(), user.ID, newPassword.Password.Hash()); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
