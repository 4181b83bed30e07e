package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wellnest/wellnest/internal/model"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wellnest",
		Short:         "Inspect and maintain the local wellness data store.",
		Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addMigrate(cmd)
	addStats(cmd)
	addTasks(cmd)
	addJournal(cmd)
	addSettings(cmd)
	addErrors(cmd)
	addState(cmd)
	return cmd
}

// withApp opens the stores for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func addMigrate(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and print the schema version.",
		Example: `
wellnest migrate
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				v, err := a.db.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, a.cfg.Driver)
				return err
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func addStats(topLevel *cobra.Command) {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Meditation, focus and journaling statistics.",
		Example: `
wellnest stats --days 7
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				now := time.Now().In(a.cfg.Location)
				end := model.DayRange(now).End
				start := end.AddDate(0, 0, -days)
				focus, err := a.focus.Statistics(ctx, start, end)
				if err != nil {
					return err
				}
				p := printer{w: cmd.OutOrStdout()}
				p.stats(days, a.meditation.Stats(), focus, a.journal.WritingStreak(now).Current)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of days, ending today, to aggregate focus sessions over")
	topLevel.AddCommand(cmd)
}

func addTasks(topLevel *cobra.Command) {
	var filter, sort string
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks.",
		Example: `
wellnest tasks --filter active --sort priority
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, s := model.TaskFilter(filter), model.TaskSort(sort)
			switch f {
			case model.FilterAll, model.FilterActive, model.FilterCompleted:
			default:
				return fmt.Errorf("unknown filter %q", filter)
			}
			switch s {
			case model.SortDate, model.SortPriority, model.SortAlphabetical:
			default:
				return fmt.Errorf("unknown sort %q", sort)
			}
			return withApp(cmd, func(_ context.Context, a *app) error {
				printer{w: cmd.OutOrStdout()}.tasks(a.tasks.Filtered(f, s), time.Now())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(model.FilterAll), "all, active or completed")
	cmd.Flags().StringVar(&sort, "sort", string(model.SortDate), "date, priority or alphabetical")
	topLevel.AddCommand(cmd)
}

func addJournal(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Journal queries.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	search := &cobra.Command{
		Use:   "search <term>",
		Short: "Search journal entries by content.",
		Example: `
wellnest journal search gratitude
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				found, err := a.journal.Search(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				printer{w: cmd.OutOrStdout()}.journal(found, a.cfg.Location)
				return nil
			})
		},
	}
	cmd.AddCommand(search)
	topLevel.AddCommand(cmd)
}

func addSettings(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or reset settings.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, a *app) error {
				printer{w: cmd.OutOrStdout()}.settings(a.settings.Current())
				return nil
			})
		},
	}
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				st, err := a.settings.Reset(ctx)
				if err != nil {
					return err
				}
				printer{w: cmd.OutOrStdout()}.settings(st)
				return nil
			})
		},
	}
	cmd.AddCommand(show, reset)
	topLevel.AddCommand(cmd)
}

func addErrors(topLevel *cobra.Command) {
	var limit int
	cmd := &cobra.Command{
		Use:   "errors",
		Short: "Show the most recent entries of the error log.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				recs, err := a.errorLog.Recent(ctx, limit)
				if err != nil {
					return err
				}
				printer{w: cmd.OutOrStdout()}.errors(recs)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of records")
	topLevel.AddCommand(cmd)
}

func addState(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "List the key-value records, such as settings and the in-progress meditation.",
		Example: `
wellnest state
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				keys := a.kv.Keys(ctx)
				values := make([]string, len(keys))
				for i, k := range keys {
					raw, err := a.kv.Get(ctx, k)
					if err != nil {
						return err
					}
					values[i] = string(raw)
				}
				printer{w: cmd.OutOrStdout()}.state(keys, values)
				return nil
			})
		},
	}
	topLevel.AddCommand(cmd)
}
