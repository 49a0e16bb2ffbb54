package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"venuebook/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestApplication() *application {
	app := newTestApplication()
	app.authenticator = auth.NewJWTAuthenticator(
		"test-secret", "test-refresh-secret", "venuebook", "venuebook",
		time.Minute, time.Hour,
	)
	return app
}

func TestRegisterUser(t *testing.T) {
	register := func(app *application, body string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/v1/authentication/user", bytes.NewBufferString(body))
		return execute(app.registerUserHandler, r)
	}

	t.Run("registers a customer by default", func(t *testing.T) {
		app := newAuthTestApplication()

		rr := register(app, `{"name":"Asha","email":"asha@example.com","password":"s3cretpass"}`)
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			Data struct {
				Role string `json:"role"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "customer", resp.Data.Role)
		assert.NotContains(t, rr.Body.String(), "s3cretpass")
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		app := newAuthTestApplication()

		rr := register(app, `{"name":"Asha","email":"asha@example.com","password":"s3cretpass"}`)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = register(app, `{"name":"Other","email":"asha@example.com","password":"differentpass"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("rejects registering as admin", func(t *testing.T) {
		app := newAuthTestApplication()

		rr := register(app, `{"name":"Mallory","email":"m@example.com","password":"s3cretpass","role":"admin"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		app := newAuthTestApplication()

		rr := register(app, `{"name":"Asha","email":"asha@example.com","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCreateToken(t *testing.T) {
	app := newAuthTestApplication()

	registerBody := `{"name":"Asha","email":"asha@example.com","password":"s3cretpass","role":"owner"}`
	rr := execute(app.registerUserHandler,
		httptest.NewRequest(http.MethodPost, "/v1/authentication/user", bytes.NewBufferString(registerBody)))
	require.Equal(t, http.StatusCreated, rr.Code)

	t.Run("valid credentials yield a token pair", func(t *testing.T) {
		body := `{"email":"asha@example.com","password":"s3cretpass"}`
		rr := execute(app.createTokenHandler,
			httptest.NewRequest(http.MethodPost, "/v1/authentication/token", bytes.NewBufferString(body)))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data TokenResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Data.AccessToken)
		assert.NotEmpty(t, resp.Data.RefreshToken)

		token, err := app.authenticator.ValidateAccessToken(resp.Data.AccessToken)
		require.NoError(t, err)
		assert.True(t, token.Valid)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		body := `{"email":"asha@example.com","password":"wrongpassword"}`
		rr := execute(app.createTokenHandler,
			httptest.NewRequest(http.MethodPost, "/v1/authentication/token", bytes.NewBufferString(body)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown email is unauthorized, not 404", func(t *testing.T) {
		body := `{"email":"nobody@example.com","password":"s3cretpass"}`
		rr := execute(app.createTokenHandler,
			httptest.NewRequest(http.MethodPost, "/v1/authentication/token", bytes.NewBufferString(body)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRefreshToken(t *testing.T) {
	app := newAuthTestApplication()

	registerBody := `{"name":"Asha","email":"asha@example.com","password":"s3cretpass"}`
	rr := execute(app.registerUserHandler,
		httptest.NewRequest(http.MethodPost, "/v1/authentication/user", bytes.NewBufferString(registerBody)))
	require.Equal(t, http.StatusCreated, rr.Code)

	loginBody := `{"email":"asha@example.com","password":"s3cretpass"}`
	rr = execute(app.createTokenHandler,
		httptest.NewRequest(http.MethodPost, "/v1/authentication/token", bytes.NewBufferString(loginBody)))
	require.Equal(t, http.StatusOK, rr.Code)

	var login struct {
		Data TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))

	refresh := func(token string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(RefreshTokenPayload{RefreshToken: token})
		return execute(app.refreshTokenHandler,
			httptest.NewRequest(http.MethodPost, "/v1/authentication/refresh", bytes.NewBuffer(body)))
	}

	t.Run("a stored refresh token rotates into a new pair", func(t *testing.T) {
		rr := refresh(login.Data.RefreshToken)
		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("a rotated-out token is rejected", func(t *testing.T) {
		// first call above rotated the stored token
		rr := refresh(login.Data.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		rr := refresh("not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
