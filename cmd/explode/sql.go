package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helixml/explode/internal/log"
)

func sqlCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sql <statement> [arg]...",
		Short: "Run a SQL statement with the table functions registered",
		Long: `Run a SQL statement against DB_URL (default: an in-memory database).
Extra arguments are bound to ? placeholders as integers, or null.
Negative integers are arguments, not flags. -- ends flag parsing.

  explode sql "SELECT value FROM explode_times(1, 10, 3)"
  explode sql "SELECT sum(value) AS total FROM explode_times(?, ?)" -10 10

Table functions in SQL require a build with -tags sqlite_vtable.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, err := parseFlags(cmd, args)
			if err != nil {
				return err
			}
			if helpRequested(cmd) {
				return cmd.Help()
			}
			if len(args) < 1 {
				return fmt.Errorf("requires a SQL statement")
			}

			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			params, err := parseArgs(args[1:])
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := log.FromConfig(cfg)

			client, err := newClient(cfg, logger, true)
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			rows, err := client.Query(cmd.Context(), args[0], params...)
			if err != nil {
				return err
			}

			var t table
			for i, row := range rows {
				if i == 0 {
					t.columns = row.Columns()
				}
				t.rows = append(t.rows, row.Values())
			}
			return writeTable(cmd.OutOrStdout(), format, t)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(outputTable), "Output format: table, json, yaml")

	return cmd
}
