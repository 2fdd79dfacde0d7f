package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/explode/internal/log"
	"github.com/helixml/explode/internal/mcp"
)

func stdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants list and evaluate table functions and run SQL.
Logs are written to stderr so stdout carries only protocol messages.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := log.FromConfig(cfg)

			logger.Info("starting MCP server",
				slog.String("version", version),
				slog.String("db_url", cfg.DBURL()),
			)

			client, err := newClient(cfg, logger, true)
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			return mcp.NewServer(client.Functions, client, client, version, logger).ServeStdio()
		},
	}
}
