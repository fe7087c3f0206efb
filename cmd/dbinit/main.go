// Command dbinit creates the application database and brings its schema
// up to date, then exits. The server performs the same steps lazily on
// first use, so this is only needed when provisioning ahead of time.
package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/llave/internal/logging"
	"github.com/dmitrijs2005/llave/internal/server/bootstrap"
	"github.com/dmitrijs2005/llave/internal/server/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	init := bootstrap.NewInitializer(cfg, db, logger)

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := init.Ensure(ctx); err != nil {
		log.Fatalf("%v", err)
	}

	version, err := init.Check(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger.Info(ctx, "database ready", "version", version)
}
