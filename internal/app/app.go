package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/darkbyte-app/darkbyte-server/internal/boost"
	"github.com/darkbyte-app/darkbyte-server/internal/config"
	"github.com/darkbyte-app/darkbyte-server/internal/db"
	"github.com/darkbyte-app/darkbyte-server/internal/http/api/admin"
	"github.com/darkbyte-app/darkbyte-server/internal/http/api/front"
	"github.com/darkbyte-app/darkbyte-server/internal/membership"
	"github.com/darkbyte-app/darkbyte-server/internal/ratelimit"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// shutdownTimeout bounds how long in-flight requests may run during shutdown.
const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server with database-backed components and blocks
// until the context is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	engine, errBuild := buildEngine(cfg, conn)
	if errBuild != nil {
		return errBuild
	}

	if port <= 0 {
		port = 8318
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if errServe := srv.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			return fmt.Errorf("shutdown: %w", errShutdown)
		}
		return <-errCh
	case errServe := <-errCh:
		return errServe
	}
}

// openDatabase resolves the DSN from config and opens the connection.
func openDatabase(cfg config.AppConfig) (*gorm.DB, error) {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return nil, err
	}
	return db.Open(dsn)
}

// buildEngine assembles the gin engine with all services and routes.
func buildEngine(cfg config.AppConfig, conn *gorm.DB) (*gin.Engine, error) {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	jwtCfg, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return nil, errJWT
	}
	if jwtCfg.Secret == "" {
		return nil, errors.New("missing jwt secret (set `jwt.secret` in config file or JWT_SECRET)")
	}

	rlCfg, errRL := config.LoadRateLimitConfig(configPath)
	if errRL != nil {
		return nil, errRL
	}

	boostService := boost.NewService(conn)
	membershipService := membership.NewService(conn, boostService)
	limiter := ratelimit.NewManager(rlCfg, nil, nil)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	front.RegisterFrontRoutes(engine, conn, jwtCfg, rlCfg, boostService, membershipService, limiter)
	admin.RegisterAdminRoutes(engine, conn, jwtCfg)

	return engine, nil
}
