package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"itemqueue/internal/item"
	"itemqueue/internal/loader"
	"itemqueue/internal/logging"
	"itemqueue/internal/queue"
)

func newTemplatesCommand(ctx *commandContext) *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the templates available to load",
	}

	templatesCmd.AddCommand(newTemplatesListCommand(ctx))
	templatesCmd.AddCommand(newTemplatesShowCommand(ctx))

	return templatesCmd
}

func newTemplatesListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List template ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, manager *queue.Manager) error {
				ids, err := manager.Templates(c)
				if err != nil {
					return err
				}
				if asJSON {
					if ids == nil {
						ids = []string{}
					}
					return writeJSON(cmd, ids)
				}
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No templates found")
					return nil
				}
				rows := make([][]string, 0, len(ids))
				for i, id := range ids {
					rows = append(rows, []string{strconv.Itoa(i + 1), id})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "template"}, rows, []columnAlignment{alignRight, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newTemplatesShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <template>",
		Short: "Print a template's items without loading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			templateID := strings.TrimSpace(args[0])

			l, err := loader.New(cfg, logging.NewNop())
			if err != nil {
				return describeError(err)
			}
			defer l.Close()

			c := cmd.Context()
			if c == nil {
				c = context.Background()
			}
			if err := l.Initialize(c); err != nil {
				return describeError(err)
			}
			items, err := l.LoadTemplate(c, templateID)
			if err != nil {
				return describeError(err)
			}

			if asJSON {
				if items == nil {
					items = []item.Item{}
				}
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Template %s is empty\n", templateID)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderItems(items))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
