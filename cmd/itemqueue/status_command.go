package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"itemqueue/internal/config"
	"itemqueue/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration summary and readiness checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report := newStatusReport(out)

			configPath := ctx.configPath
			if !ctx.configSeen {
				configPath += " (not found, defaults in use)"
			}
			report.section("Configuration")
			report.value("Config", configPath)
			report.value("Backend", string(cfg.Queue.Backend))
			report.value("Mode", string(cfg.Queue.Mode))
			report.value("Store", storeLocation(cfg))
			report.value("Item template", describeTemplate(cfg.Queue.ItemTemplate))
			report.value("Lock file", cfg.Server.LockPath)

			report.section("Checks")
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				report.check(r.Name, r.Passed, r.Detail)
			}

			fmt.Fprintln(out, report.String())
			if preflight.AnyFailed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

func storeLocation(cfg *config.Config) string {
	switch cfg.Queue.Backend {
	case config.BackendMemory:
		return fmt.Sprintf("in-process (put=%s, %d seed item(s))", yesNo(cfg.Memory.Put), len(cfg.Memory.Items))
	case config.BackendJSON, config.BackendCSV:
		return cfg.Files.TemplatesDir
	case config.BackendSheets:
		id := cfg.Sheets.SpreadsheetID
		if id == "" {
			id = "from credentials"
		}
		return fmt.Sprintf("spreadsheet %s (%s)", id, cfg.Sheets.CredentialsPath)
	case config.BackendSQLite:
		return cfg.SQLite.Path
	default:
		return "unknown"
	}
}

func describeTemplate(fields map[string]string) string {
	if len(fields) == 0 {
		return "inferred from first load"
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+fields[name])
	}
	return strings.Join(parts, ", ")
}
