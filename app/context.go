package app

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"sync"

	"github.com/nrtkbb/fnbundle/config"
	"github.com/nrtkbb/fnbundle/db"
)

// AppContext carries what one command invocation needs: resolved config,
// the diagnostics writer and an optional catalog connection.
type AppContext struct {
	Config  *config.Config
	DB      *sql.DB
	Stdout  io.Writer
	Context context.Context
	Cleanup sync.Once
}

func NewAppContext(parentCtx context.Context, cfg *config.Config) *AppContext {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &AppContext{
		Config:  cfg,
		Stdout:  os.Stdout,
		Context: parentCtx,
	}
}

// OpenCatalog connects to the configured catalog. It is a no-op when no
// catalog is configured or it is already open.
func (app *AppContext) OpenCatalog() error {
	if app.DB != nil || app.Config.DBPath == "" {
		return nil
	}
	database, err := db.SetupDatabase(app.Config.DBPath)
	if err != nil {
		return err
	}
	app.DB = database
	return nil
}

// PerformCleanup checkpoints and closes the catalog. Safe to call more than once.
func (app *AppContext) PerformCleanup() {
	app.Cleanup.Do(func() {
		if app.DB == nil {
			return
		}

		// Force WAL checkpoint before closing
		if _, err := app.DB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			log.Printf("Error executing WAL checkpoint: %v", err)
		}
		if err := app.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
		app.DB = nil
	})
}
