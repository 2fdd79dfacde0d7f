package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixml/explode/internal/log"
)

func rowsCmd() *cobra.Command {
	var (
		name   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "rows <arg>...",
		Short: "Evaluate a table function in process",
		Long: `Evaluate a table function and print the rows it produces.

  explode rows 5           1 2 3 4 5
  explode rows 3 6         3 4 5 6
  explode rows 1 10 3      1 4 7 10

Negative integers are arguments, not flags: explode rows -5 -1.
The literal argument null passes a null value. -- ends flag parsing.`,
		Example:            "  explode rows --output json 1 10 3",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, err := parseFlags(cmd, args)
			if err != nil {
				return err
			}
			if helpRequested(cmd) {
				return cmd.Help()
			}

			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			values, err := parseArgs(args)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := log.FromConfig(cfg)

			client, err := newClient(cfg, logger, false)
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			if name == "" {
				name = cfg.FunctionName()
			}
			rows, err := client.Rows(cmd.Context(), name, values...)
			if err != nil {
				return err
			}

			t := table{columns: []string{"value"}, rows: make([][]any, len(rows))}
			for i, v := range rows {
				t.rows[i] = []any{v}
			}
			return writeTable(cmd.OutOrStdout(), format, t)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Function name (default: FUNCTION_NAME or explode_times)")
	cmd.Flags().StringVarP(&output, "output", "o", string(outputTable), "Output format: table, json, yaml")

	return cmd
}

// parseArgs converts command line arguments to int64 values, with null
// mapped to nil.
func parseArgs(args []string) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		if strings.EqualFold(a, "null") {
			continue
		}
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %q is not an integer", i, a)
		}
		out[i] = n
	}
	return out, nil
}
