package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/errors"
	"github.com/hpungsan/fittrack/internal/logger"
	"github.com/hpungsan/fittrack/internal/mcp"
	"github.com/hpungsan/fittrack/internal/ops"
	"github.com/hpungsan/fittrack/internal/storage"
	"github.com/hpungsan/fittrack/internal/tracker"
	"github.com/hpungsan/fittrack/internal/web"
)

// appEnv carries what commands need. The tracker is opened on first use so
// that --ephemeral can pick the backend and help never touches storage.
type appEnv struct {
	baseDir string
	cfg     *config.Config
	log     logger.Logger

	tr    *tracker.Tracker
	store *storage.Adapter
}

func (e *appEnv) config() *config.Config {
	if e.cfg == nil {
		e.cfg = config.DefaultConfig()
	}
	return e.cfg
}

func (e *appEnv) logger() logger.Logger {
	if e.log == nil {
		e.log = logger.Nop()
	}
	return e.log
}

// tracker opens storage and loads the snapshot once.
func (e *appEnv) tracker(ctx context.Context, ephemeral bool) (*tracker.Tracker, error) {
	if e.tr != nil {
		return e.tr, nil
	}

	cfg := e.config()
	if ephemeral {
		c := *cfg
		c.Backend = config.BackendMemory
		cfg = &c
	}

	store, err := storage.Open(ctx, cfg, e.baseDir, e.logger())
	if err != nil {
		return nil, err
	}
	tr, err := tracker.Open(ctx, store, tracker.WithLogger(e.logger()))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	e.store, e.tr = store, tr
	return tr, nil
}

// open is tracker() for a command context.
func (e *appEnv) open(c *cli.Context) (*tracker.Tracker, error) {
	tr, err := e.tracker(c.Context, c.Bool("ephemeral"))
	if err != nil {
		return nil, outputError(errors.NewInternal(err))
	}
	return tr, nil
}

func (e *appEnv) close() {
	if e.store != nil {
		_ = e.store.Close()
		e.store = nil
	}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "fittrack",
		Usage:   "Track fitness goals and daily activities",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "ephemeral", Usage: "Keep data in memory only; nothing is persisted"},
		},
		Commands: []*cli.Command{
			goalCmd(env),
			activityCmd(env),
			dashboardCmd(env),
			chartCmd(env),
			clearCmd(env),
			sampleCmd(env),
			reportCmd(env),
			exportCmd(env),
			importCmd(env),
			serveCmd(env),
			mcpCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// goalCmd groups the goal subcommands.
func goalCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "goal",
		Usage: "Manage goals",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a goal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Goal title; its first word is the matching keyword"},
					&cli.Float64Flag{Name: "target", Required: true, Usage: "Target quantity"},
					&cli.StringFlag{Name: "unit", Aliases: []string{"u"}, Usage: "Unit of measure (default \"un\")"},
				},
				Action: func(c *cli.Context) error {
					tr, err := env.open(c)
					if err != nil {
						return err
					}
					output, err := ops.AddGoal(c.Context, tr, ops.AddGoalInput{
						Title:  c.String("title"),
						Target: c.Float64("target"),
						Unit:   c.String("unit"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a goal (activities are kept)",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					tr, err := env.open(c)
					if err != nil {
						return err
					}
					output, err := ops.RemoveGoal(c.Context, tr, ops.RemoveGoalInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "rename",
				Usage:     "Replace a goal's title",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title (may be empty)"},
				},
				Action: func(c *cli.Context) error {
					tr, err := env.open(c)
					if err != nil {
						return err
					}
					input := ops.RenameGoalInput{ID: c.Args().First()}
					if c.IsSet("title") {
						title := c.String("title")
						input.Title = &title
					}
					output, err := ops.RenameGoal(c.Context, tr, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:  "list",
				Usage: "List goals with live progress",
				Flags: []cli.Flag{policyFlag()},
				Action: func(c *cli.Context) error {
					tr, err := env.open(c)
					if err != nil {
						return err
					}
					output, err := ops.ListGoals(tr, env.config(), ops.ListGoalsInput{Policy: c.String("policy")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "progress",
				Usage:     "Show one goal's progress and the activities counted toward it",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{policyFlag()},
				Action: func(c *cli.Context) error {
					tr, err := env.open(c)
					if err != nil {
						return err
					}
					output, err := ops.GoalProgress(tr, env.config(), ops.GoalProgressInput{
						ID:     c.Args().First(),
						Policy: c.String("policy"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
		},
	}
}

// activityCmd groups the activity subcommands.
func activityCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "activity",
		Usage: "Log and inspect activities",
		Subcommands: []*cli.Command{
			{
				Name:  "log",
				Usage: "Log an activity",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Required: true, Usage: "Activity type, e.g. Corrida"},
					&cli.Float64Flag{Name: "amount", Aliases: []string{"a"}, Required: true, Usage: "Quantity"},
					&cli.StringFlag{Name: "unit", Aliases: []string{"u"}, Usage: "Unit of measure (default \"un\")"},
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "YYYY-MM-DD (default today, UTC)"},
				},
				Action: func(c *cli.Context) error {
					tr, err := env.open(c)
					if err != nil {
						return err
					}
					output, err := ops.LogActivity(c.Context, tr, ops.LogActivityInput{
						Type:   c.String("type"),
						Amount: c.Float64("amount"),
						Unit:   c.String("unit"),
						Date:   c.String("date"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete an activity",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					tr, err := env.open(c)
					if err != nil {
						return err
					}
					output, err := ops.RemoveActivity(c.Context, tr, ops.RemoveActivityInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:  "list",
				Usage: "List all activities, newest first",
				Action: func(c *cli.Context) error {
					tr, err := env.open(c)
					if err != nil {
						return err
					}
					return outputJSON(c, ops.ListActivities(tr))
				},
			},
			{
				Name:  "recent",
				Usage: "List the most recent activities",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum items (default from config, 6)"},
				},
				Action: func(c *cli.Context) error {
					tr, err := env.open(c)
					if err != nil {
						return err
					}
					output, err := ops.RecentActivities(tr, env.config(), ops.RecentActivitiesInput{Limit: c.Int("limit")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
		},
	}
}

// dashboardCmd creates the dashboard command.
func dashboardCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Print goals, recent activities, the activity table and the daily series",
		Flags: []cli.Flag{
			policyFlag(),
			&cli.IntFlag{Name: "recent", Usage: "Length of the recent list (default from config, 6)"},
		},
		Action: func(c *cli.Context) error {
			tr, err := env.open(c)
			if err != nil {
				return err
			}
			output, err := ops.Dashboard(tr, env.config(), ops.DashboardInput{
				Policy:      c.String("policy"),
				RecentLimit: c.Int("recent"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// chartCmd creates the chart command.
func chartCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "Print the per-day totals, oldest first",
		Action: func(c *cli.Context) error {
			tr, err := env.open(c)
			if err != nil {
				return err
			}
			return outputJSON(c, ops.Chart(tr))
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all goals and activities",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the irreversible clear"},
		},
		Action: func(c *cli.Context) error {
			tr, err := env.open(c)
			if err != nil {
				return err
			}
			output, err := ops.Clear(c.Context, tr, ops.ClearInput{Confirm: c.Bool("yes")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// sampleCmd creates the sample command.
func sampleCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "sample",
		Usage: "Append a sample goal and three sample activities",
		Action: func(c *cli.Context) error {
			tr, err := env.open(c)
			if err != nil {
				return err
			}
			output, err := ops.Sample(c.Context, tr)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// reportCmd creates the report command. It prints Markdown, not JSON.
func reportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print the dashboard as a Markdown report",
		Flags: []cli.Flag{policyFlag()},
		Action: func(c *cli.Context) error {
			tr, err := env.open(c)
			if err != nil {
				return err
			}
			output, err := ops.Report(tr, env.config(), ops.ReportInput{Policy: c.String("policy")})
			if err != nil {
				return outputError(err)
			}
			_, err = fmt.Fprint(c.App.Writer, output.Markdown)
			return err
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write all goals and activities to a JSON or YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.fittrack/exports/fittrack-<timestamp>.json)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json|yaml (default: from the path extension)"},
		},
		Action: func(c *cli.Context) error {
			tr, err := env.open(c)
			if err != nil {
				return err
			}
			output, err := ops.Export(c.Context, tr, env.config(), env.baseDir, ops.ExportInput{
				Path:   c.String("path"),
				Format: ops.ExportFormat(c.String("format")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Load goals and activities from an export file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(ops.ImportModeReplace), Usage: "replace|merge"},
		},
		Action: func(c *cli.Context) error {
			tr, err := env.open(c)
			if err != nil {
				return err
			}
			output, err := ops.Import(c.Context, tr, env.config(), env.baseDir, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (default from config, 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (default from config, 8787)"},
			&cli.BoolFlag{Name: "mcp", Usage: "Also serve MCP over stdio, sharing the same data"},
		},
		Action: func(c *cli.Context) error {
			tr, err := env.open(c)
			if err != nil {
				return err
			}

			cfg := *env.config()
			if c.IsSet("bind") {
				cfg.WebBind = c.String("bind")
			}
			if c.IsSet("port") {
				cfg.WebPort = c.Int("port")
			}
			log := env.logger()

			srv, err := web.NewServer(tr, &cfg, Version, log)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return web.Run(gctx, srv, log)
			})
			if c.Bool("mcp") {
				g.Go(func() error {
					// The session ends the process when the client hangs up.
					defer stop()
					return mcp.Serve(gctx, tr, &cfg, env.baseDir, Version, log)
				})
			}
			if err := g.Wait(); err != nil && !stderrors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve MCP over stdio (the default when stdin is piped)",
		Action: func(c *cli.Context) error {
			tr, err := env.open(c)
			if err != nil {
				return err
			}
			return mcp.Run(tr, env.config(), env.baseDir, Version, env.logger())
		},
	}
}

// Helper functions

func policyFlag() cli.Flag {
	return &cli.StringFlag{Name: "policy", Usage: "Matching policy override: unit|keyword"}
}

// outputJSON marshals result to the app writer as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var fitErr *errors.FitError
	if stderrors.As(err, &fitErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", fitErr.Code, fitErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
