package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuebook/docs" // required to register the swagger spec
	"venuebook/internal/auth"
	"venuebook/internal/cache"
	"venuebook/internal/mailer"
	"venuebook/internal/notifications"
	"venuebook/internal/ratelimiter"
	"venuebook/internal/refcode"
	"venuebook/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	mailer        mailer.Client
	push          notifications.PushSender
	cache         *cache.AvailabilityCache
	authenticator auth.Authenticator
	rateLimiter   *ratelimiter.FixedWindowLimiter
	refs          *refcode.Generator
}

type config struct {
	addr        string
	env         string
	apiURL      string
	frontendURL string
	db          dbConfig
	redis       redisConfig
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type redisConfig struct {
	addr    string
	enabled bool
	ttl     time.Duration
}

type mailConfig struct {
	fromEmail string
	host      string
	port      int
	username  string
	password  string
	resetExp  time.Duration
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret          string
	refreshSecret   string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.Post("/forgot-password", app.forgotPasswordHandler)
			r.Post("/reset-password", app.resetPasswordHandler)
		})

		r.Post("/contact", app.createContactMessageHandler)

		r.Route("/venues", func(r chi.Router) {
			r.Get("/", app.listVenuesHandler)
			r.With(app.AuthTokenMiddleware).Post("/", app.createVenueHandler)

			r.Route("/{venueID}", func(r chi.Router) {
				r.Get("/", app.getVenueHandler)
				r.With(app.AuthTokenMiddleware).Patch("/", app.updateVenueHandler)
				r.With(app.AuthTokenMiddleware).Delete("/", app.deleteVenueHandler)

				r.Get("/reserved-dates", app.reservedDatesHandler)
				r.With(app.AuthTokenMiddleware).Post("/bookings", app.createBookingHandler)
				r.With(app.AuthTokenMiddleware).Get("/bookings", app.getVenueBookingsHandler)

				r.Get("/reviews", app.getVenueReviewsHandler)
				r.With(app.AuthTokenMiddleware).Post("/reviews", app.createReviewHandler)

				r.Post("/inquiries", app.createInquiryHandler)
				r.With(app.AuthTokenMiddleware).Get("/inquiries", app.getVenueInquiriesHandler)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/mine", app.getMyBookingsHandler)
			r.Patch("/{bookingID}/status", app.updateBookingStatusHandler)
			r.Post("/{bookingID}/cancel", app.cancelBookingHandler)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Patch("/{reviewID}", app.updateReviewHandler)
			r.Delete("/{reviewID}", app.deleteReviewHandler)
		})

		r.Route("/inquiries", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Patch("/{inquiryID}/status", app.updateInquiryStatusHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getMeHandler)
			r.Patch("/", app.updateUserHandler)
			r.Post("/logout", app.logoutHandler)
			r.Post("/push-tokens", app.addPushTokenHandler)
			r.Delete("/push-tokens", app.removePushTokenHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireAdmin)
			r.Get("/bookings", app.getAllBookingsHandler)
			r.Get("/venues", app.adminListVenuesHandler)
			r.Patch("/venues/{venueID}/status", app.updateVenueStatusHandler)
			r.Get("/contact-messages", app.listContactMessagesHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
