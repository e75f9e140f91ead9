package river

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
)

// Options configures the River client.
type Options struct {
	// Workers is the default queue's concurrency; values below 1 mean 1.
	Workers int
	Logger  *slog.Logger
}

// Setup runs River's own migrations on db and returns a client with the
// moderation worker registered. The caller starts and stops the client.
func Setup(ctx context.Context, db *sql.DB, opts Options) (*Client, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	driver := riversqlite.New(db)

	// River's tables (river_job, river_leader, ...) live beside the goose-managed schema.
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewModerationWorker(opts.Logger))

	client, err := river.NewClient(driver, &river.Config{
		Logger: opts.Logger,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: opts.Workers},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
