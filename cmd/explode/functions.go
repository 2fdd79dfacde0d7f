package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixml/explode/internal/log"
)

func functionsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "functions",
		Short: "List the registered table functions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(output)
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

			t := table{columns: []string{"name", "args", "summary"}}
			for _, fn := range client.Functions.All() {
				sig := fn.Signature()
				summary, _, _ := strings.Cut(fn.Description(), "\n")
				t.rows = append(t.rows, []any{fn.Name(), fmt.Sprintf("%d-%d", sig.Min, sig.Max), summary})
			}
			return writeTable(cmd.OutOrStdout(), format, t)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(outputTable), "Output format: table, json, yaml")

	return cmd
}
