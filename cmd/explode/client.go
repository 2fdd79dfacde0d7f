package main

import (
	"fmt"
	"log/slog"

	"github.com/helixml/explode"
	"github.com/helixml/explode/internal/config"
)

// newClient creates a Client from cfg. The database is opened only when
// withDB is set.
func newClient(cfg config.AppConfig, logger *slog.Logger, withDB bool) (*explode.Client, error) {
	opts := []explode.Option{
		explode.WithLogger(logger),
		explode.WithFunctionName(cfg.FunctionName()),
		explode.WithQueryTimeout(cfg.QueryTimeout()),
	}
	if withDB {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		opts = append(opts, explode.WithDatabaseURL(cfg.DBURL()))
	}

	client, err := explode.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create explode client: %w", err)
	}
	return client, nil
}

func closeClient(client *explode.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("failed to close explode client", slog.Any("error", err))
	}
}
