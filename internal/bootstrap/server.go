package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"skybook/api"
	"skybook/config"
	"skybook/internal/service/auth"
	"skybook/internal/service/booking"
	"skybook/internal/service/flights"
	"skybook/internal/service/wizard"
)

// Run assembles the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	flightSvc flights.FlightUseCase,
	bookingSvc booking.BookingUseCase,
	wizardSvc *wizard.Service,
	authSvc *auth.AuthService,
) error {
	router := NewRouter(cfg, flightSvc, bookingSvc, wizardSvc, authSvc)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires the gin engine: CORS for the SPA origin, rate limiting on
// the auth group, token auth on the account-scoped booking endpoints.
func NewRouter(
	cfg *config.Config,
	flightSvc flights.FlightUseCase,
	bookingSvc booking.BookingUseCase,
	wizardSvc *wizard.Service,
	authSvc *auth.AuthService,
) *gin.Engine {
	router := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	requireAuth := api.RequireAuth(authSvc)

	authGroup := router.Group("/api/auth")
	if cfg.Auth.LoginRatePerMinute > 0 {
		authGroup.Use(api.RateLimit(cfg.Auth.LoginRatePerMinute))
	}
	api.NewAuthHandler(authSvc).Register(authGroup, requireAuth)

	flightGroup := router.Group("/api/flight_reservation")
	api.NewFlightHandler(flightSvc).Register(flightGroup)

	bookingGroup := router.Group("/api/booking")
	api.NewWizardHandler(wizardSvc).Register(bookingGroup)

	accountGroup := router.Group("/api/booking")
	accountGroup.Use(requireAuth)
	api.NewBookingHandler(bookingSvc).Register(accountGroup)

	return router
}
