package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"itemqueue/internal/item"
	"itemqueue/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and modify the queue directly",
	}

	queueCmd.AddCommand(newQueueGetCommand(ctx))
	queueCmd.AddCommand(newQueuePushCommand(ctx))
	queueCmd.AddCommand(newQueueLoadCommand(ctx))
	queueCmd.AddCommand(newQueuePeekCommand(ctx))

	return queueCmd
}

func newQueueGetCommand(ctx *commandContext) *cobra.Command {
	var back bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Remove and print the item at the front (or back) of the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, manager *queue.Manager) error {
				get := manager.GetFront
				if back {
					get = manager.GetBack
				}
				it, ok, err := get(c)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				warnCached(cmd.ErrOrStderr(), manager)
				return writeJSON(cmd, it)
			})
		},
	}

	cmd.Flags().BoolVar(&back, "back", false, "Take from the back of the queue")
	return cmd
}

func newQueuePushCommand(ctx *commandContext) *cobra.Command {
	var front bool

	cmd := &cobra.Command{
		Use:   "push <item-json>",
		Short: "Validate a JSON object and add it to the back (or front) of the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var it item.Item
			if err := it.UnmarshalJSON([]byte(strings.TrimSpace(args[0]))); err != nil {
				return fmt.Errorf("parse item: %w", err)
			}
			return ctx.withManager(cmd, func(c context.Context, manager *queue.Manager) error {
				push, end := manager.PushBack, "back"
				if front {
					push, end = manager.PushFront, "front"
				}
				if err := push(c, it); err != nil {
					return err
				}
				warnCached(cmd.ErrOrStderr(), manager)
				fmt.Fprintf(cmd.OutOrStdout(), "Pushed item to the %s of the queue\n", end)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&front, "front", false, "Insert at the front of the queue")
	return cmd
}

func newQueueLoadCommand(ctx *commandContext) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "load <template>",
		Short: "Load a template into the queue",
		Long: "Load a named template. --mode replace makes the queue equal to the template;\n" +
			"front and back splice the template's items onto that end as one block.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateID := strings.TrimSpace(args[0])
			return ctx.withManager(cmd, func(c context.Context, manager *queue.Manager) error {
				var load func(context.Context, string) (int, error)
				switch strings.ToLower(strings.TrimSpace(mode)) {
				case "", "replace":
					load = manager.ReplaceFromTemplate
				case "front":
					load = manager.AddFrontFromTemplate
				case "back":
					load = manager.AddBackFromTemplate
				default:
					return fmt.Errorf("invalid --mode %q (want replace, front or back)", mode)
				}
				count, err := load(c, templateID)
				if err != nil {
					return err
				}
				warnCached(cmd.ErrOrStderr(), manager)
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d item(s) from template %s\n", count, templateID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "replace", "How to apply the template: replace, front or back")
	return cmd
}

func newQueuePeekCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "peek",
		Short: "Show the queue without modifying it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, manager *queue.Manager) error {
				items, err := manager.Items(c)
				if err != nil {
					return err
				}
				if asJSON {
					if items == nil {
						items = []item.Item{}
					}
					return writeJSON(cmd, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderItems(items))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
