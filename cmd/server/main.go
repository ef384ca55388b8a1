package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ochen1/immich/internal/auth/handler"
	"github.com/ochen1/immich/internal/auth/metrics"
	"github.com/ochen1/immich/internal/auth/oidc"
	"github.com/ochen1/immich/internal/auth/service"
	"github.com/ochen1/immich/internal/auth/store/oauthstate"
	"github.com/ochen1/immich/internal/auth/store/user"
	"github.com/ochen1/immich/internal/auth/token"
	"github.com/ochen1/immich/internal/platform/config"
	"github.com/ochen1/immich/internal/platform/database"
	"github.com/ochen1/immich/internal/platform/health"
	"github.com/ochen1/immich/internal/platform/logger"
	"github.com/ochen1/immich/internal/platform/middleware"
	"github.com/ochen1/immich/internal/platform/tracer"
	"github.com/ochen1/immich/internal/systemconfig"
	"github.com/ochen1/immich/pkg/secrets"
)

const stateSweepInterval = 5 * time.Minute

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	log.Info("initializing auth server", "addr", cfg.Addr)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		return err
	}

	var users service.UserStore
	if pool != nil {
		users = user.NewPostgres(pool.DB())
		log.Info("using postgres user store")
	} else {
		users = user.New()
		log.Info("no database configured, using in-memory user store")
	}

	states := oauthstate.New()
	configStore := systemconfig.NewInMemoryStore(systemconfig.FromEnv())
	tokens := token.NewManager(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	hasher := secrets.NewHasher(0)
	m := metrics.New()
	idp := oidc.New(oidc.WithTracer(tracer.NewOTel()))

	authService, err := service.New(
		users,
		configStore,
		hasher,
		tokens,
		states,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithIdentityProvider(idp),
	)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))

	healthHandler := health.New(os.Getenv("IMMICH_ENV"))
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})
	}
	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())

	authHandler := handler.New(authService, log)
	router.Group(func(r chi.Router) {
		authHandler.Register(r)
	})
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessionValidator{authService}, token.FromRequest, log))
		authHandler.RegisterProtected(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Expired oauth states accumulate in memory when flows are abandoned.
	g.Go(func() error {
		ticker := time.NewTicker(stateSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-ticker.C:
				if n, err := states.DeleteExpired(ctx, now); err == nil && n > 0 {
					log.Debug("swept expired oauth states", "count", n)
				}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if pool != nil {
			pool.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// sessionValidator adapts the auth service to the middleware contract.
type sessionValidator struct {
	auth *service.Service
}

func (v sessionValidator) Validate(ctx context.Context, tok string) (middleware.Principal, error) {
	authUser, err := v.auth.Validate(ctx, tok)
	if err != nil {
		return middleware.Principal{}, err
	}
	return middleware.Principal{
		ID:      authUser.ID.String(),
		Email:   authUser.Email,
		IsAdmin: authUser.IsAdmin,
	}, nil
}
