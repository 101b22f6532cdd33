package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/arjoma/scheinfirmen-at/config"
	"github.com/arjoma/scheinfirmen-at/internal/api"
	"github.com/arjoma/scheinfirmen-at/internal/service"
	"github.com/arjoma/scheinfirmen-at/internal/storage"
)

// InitializeApp sets up all api-mode dependencies and returns a fully
// configured Gin router, a cleanup function for graceful shutdown, and any
// error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL and applies pending migrations.
//   - Initializes the repository layer (SnapshotRepository).
//   - Creates the service and HTTP handler layers.
//   - Configures the Gin router and the health/readiness probes.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	repo := storage.NewSnapshotRepository(db)
	svc := service.NewSnapshotService(repo)
	handler := api.NewHandler(svc)
	router := api.NewRouter(handler)

	healthHandler := api.NewHealthHandler(db.Ping)
	healthHandler.Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
