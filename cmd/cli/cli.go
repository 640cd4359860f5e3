package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli-altsrc/v3"
	clitoml "github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	"github.com/D-Marc1/Simple-MySQLi/internal/config"
	"github.com/D-Marc1/Simple-MySQLi/internal/db"
	"github.com/D-Marc1/Simple-MySQLi/internal/db/sqlscan"
	"github.com/D-Marc1/Simple-MySQLi/internal/export"
	"github.com/D-Marc1/Simple-MySQLi/internal/fetch"
	"github.com/D-Marc1/Simple-MySQLi/internal/locale"
)

var environments = []string{"production", "replica", "staging"}

// errDryRun signals WithinTx to roll back a statement that ran without
// --commit.
var errDryRun = errors.New("dry run, rolling back")

func validateOutputFormat(format string, l *locale.Locale) error {
	if !slices.Contains(export.Formats, strings.ToLower(format)) {
		return fmt.Errorf(l.Errors.OutputFormatNotImpl, format)
	}
	return nil
}

func Run(cfg *config.Config) {
	var environment string
	var configPath string
	var outputFormat string
	var output string
	var mode string
	var noSingleSheet bool
	var noSingleFile bool
	var connections []string
	var commit bool
	var noCache bool

	l, err := locale.Load(cfg.Locale)
	if err != nil {
		log.Fatal(err)
	}

	cmd := &cli.Command{
		Name:        "simple-mysqli",
		Description: l.CLI.Description,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Value:       "./config/config.toml",
				Usage:       l.CLI.Flags.Config,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "environment",
				Aliases:     []string{"e"},
				Value:       "replica",
				Usage:       l.CLI.Flags.Environment,
				Destination: &environment,
				Sources:     cli.NewValueSourceChain(clitoml.TOML("", altsrc.StringSourcer("path"))),
				Action: func(ctx context.Context, c *cli.Command, s string) error {
					if !slices.Contains(environments, strings.ToLower(s)) {
						return errors.New(l.Errors.InvalidEnvironment)
					}
					return nil
				},
			},
			&cli.StringSliceFlag{
				Name:    "connections",
				Aliases: []string{"c"},
				Usage:   l.CLI.Flags.Connections,
				Sources: cli.NewValueSourceChain(
					clitoml.TOML("", altsrc.NewStringPtrSourcer(&configPath))),
				Destination: &connections,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     l.CLI.Commands.Query,
				ArgsUsage: l.CLI.Args.Query,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "mode",
						Aliases:     []string{"m"},
						Usage:       l.CLI.Flags.Mode,
						Destination: &mode,
						Action: func(ctx context.Context, c *cli.Command, s string) error {
							if _, ok := fetch.ParseMode(s); !ok {
								return fmt.Errorf("unknown fetch mode %q", s)
							}
							return nil
						},
					},
					&cli.StringFlag{
						Name:        "output",
						Aliases:     []string{"o"},
						Value:       "table",
						Usage:       l.CLI.Flags.Output,
						Destination: &output,
					},
					&cli.BoolFlag{
						Name:        "no-cache",
						Usage:       l.CLI.Flags.NoCache,
						Destination: &noCache,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					query := c.Args().First()
					if query == "" {
						return errors.New("no query given")
					}
					return runQuery(ctx, cfg, environment, connections, query,
						argsOf(c), modeOrDefault(mode, cfg), output, !noCache)
				},
			},
			{
				Name:      "exec",
				Usage:     l.CLI.Commands.Exec,
				ArgsUsage: l.CLI.Args.Exec,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "commit",
						Usage:       "Commit the statement instead of rolling back",
						Destination: &commit,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					stmt := c.Args().First()
					if stmt == "" {
						return errors.New("no statement given")
					}
					return runExec(ctx, cfg, environment, connections, stmt, argsOf(c), commit)
				},
			},
			{
				Name:      "script",
				Usage:     l.CLI.Commands.Script,
				ArgsUsage: l.CLI.Args.Script,
				Action: func(ctx context.Context, c *cli.Command) error {
					path := c.Args().First()
					if path == "" {
						return errors.New("no script file given")
					}
					return runScript(ctx, cfg, environment, connections, path)
				},
			},
			{
				Name:      "export",
				Usage:     l.CLI.Commands.Export,
				ArgsUsage: l.CLI.Args.Export,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output-format",
						Usage: l.CLI.Flags.OutputFormat,
						Action: func(ctx context.Context, c *cli.Command, s string) error {
							return validateOutputFormat(s, l)
						},
						Destination: &outputFormat,
					},
					&cli.BoolFlag{
						Name:        "no-cache",
						Usage:       l.CLI.Flags.NoCache,
						Destination: &noCache,
					},
				},
				MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{{
					Flags: [][]cli.Flag{
						{
							&cli.BoolFlag{
								Name:        "no-single-sheet",
								Usage:       l.CLI.Flags.SingleSheet,
								Destination: &noSingleSheet,
							},
						},
						{
							&cli.BoolFlag{
								Name:        "no-single-file",
								Usage:       l.CLI.Flags.SingleFile,
								Destination: &noSingleFile,
							},
						},
					},
				}},
				Action: func(ctx context.Context, c *cli.Command) error {
					query := c.Args().Get(0)
					savePath := c.Args().Get(1)
					if query == "" || savePath == "" {
						return errors.New("need a query and an output file")
					}

					if outputFormat == "" {
						outputFormat = strings.TrimPrefix(filepath.Ext(savePath), ".")
						if outputFormat == "" {
							return errors.New(l.Errors.OutputFormatEmpty)
						}
					}
					if err := validateOutputFormat(outputFormat, l); err != nil {
						return err
					}

					opts := export.Options{
						Format:           outputFormat,
						SingleFile:       !noSingleFile,
						SingleSheet:      !noSingleSheet,
						ConnectionColumn: cfg.ConnectionColumnName,
					}
					return runExport(ctx, cfg, environment, connections, query, savePath, opts, !noCache)
				},
			},
			{
				Name:  "check",
				Usage: l.CLI.Commands.Check,
				Action: func(ctx context.Context, c *cli.Command) error {
					return runCheck(cfg, environment)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func argsOf(c *cli.Command) []any {
	tail := c.Args().Tail()
	params := make([]any, len(tail))
	for i, p := range tail {
		params[i] = p
	}
	return params
}

func modeOrDefault(mode string, cfg *config.Config) string {
	if mode != "" {
		return mode
	}
	return cfg.Fetch.DefaultMode
}

func loadManager(cfg *config.Config, environment string) *db.Manager {
	manager := db.NewManager()
	manager.LoadConnections(cfg, environment)
	return manager
}

func warnUnsafe(ctx context.Context, query string) {
	class, err := sqlscan.Classify(query)
	if err != nil {
		slog.WarnContext(ctx, locale.L.Logs.UnableIdentifyQueryType)
		return
	}
	slog.InfoContext(ctx, locale.L.Logs.IdentifiedQueryType, "query_type", class.String())
}

func runQuery(
	ctx context.Context, cfg *config.Config, environment string,
	connections []string, query string, params []any,
	mode string, output string, useCache bool,
) error {
	manager := loadManager(cfg, environment)
	defer manager.Close()

	warnUnsafe(ctx, query)

	var cache *db.Cache
	if cfg.Cache.UseCache {
		cache = db.NewCache(cfg.Cache.MaxAge)
	}
	executor := db.NewExecutor(manager, cache)

	results, failures := executor.ParallelQuery(ctx, cfg.MaxWorkers, query, params, connections, useCache)

	shaper := fetch.NewShaper()
	for name, set := range results {
		shaped, err := shaper.FetchAll(set.Result(), mode)
		if err != nil {
			return err
		}
		if err := printResult(name, set, shaped, output); err != nil {
			return err
		}
	}

	return firstFailure(failures)
}

func runExec(
	ctx context.Context, cfg *config.Config, environment string,
	connections []string, stmt string, params []any, commit bool,
) error {
	manager := loadManager(cfg, environment)
	defer manager.Close()

	warnUnsafe(ctx, stmt)

	for name, conn := range manager.GetConnections() {
		if len(connections) > 0 && !slices.Contains(connections, name) {
			continue
		}
		if conn.Err() != nil {
			slog.ErrorContext(ctx, locale.L.Logs.SkippingConnectionError, "connection", name, "error", conn.Err())
			continue
		}

		err := conn.WithinTx(ctx, func(tx db.Tx) error {
			res, err := tx.Exec(stmt, params...)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s (last insert id: %d)\n", name, res.Info(), res.LastInsertID())
			if !commit {
				return errDryRun
			}
			return nil
		})
		if err != nil && !errors.Is(err, errDryRun) {
			return err
		}
		if err != nil {
			slog.InfoContext(ctx, "Statement rolled back, re-run with --commit to apply", "connection", name)
		}
	}
	return nil
}

type scriptFile struct {
	Statement []db.ScriptStmt `toml:"statement"`
}

func runScript(
	ctx context.Context, cfg *config.Config, environment string,
	connections []string, path string,
) error {
	var script scriptFile
	if _, err := toml.DecodeFile(path, &script); err != nil {
		return fmt.Errorf("error loading script TOML: %w", err)
	}
	if len(script.Statement) == 0 {
		return errors.New("script has no statements")
	}

	manager := loadManager(cfg, environment)
	defer manager.Close()

	for name, conn := range manager.GetConnections() {
		if len(connections) > 0 && !slices.Contains(connections, name) {
			continue
		}
		if conn.Err() != nil {
			slog.ErrorContext(ctx, locale.L.Logs.SkippingConnectionError, "connection", name, "error", conn.Err())
			continue
		}

		if err := conn.RunScript(ctx, script.Statement); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		slog.InfoContext(ctx, "Script committed", "connection", name, "statements", len(script.Statement))
	}
	return nil
}

func runExport(
	ctx context.Context, cfg *config.Config, environment string,
	connections []string, query string, savePath string,
	opts export.Options, useCache bool,
) error {
	manager := loadManager(cfg, environment)
	defer manager.Close()

	var cache *db.Cache
	if cfg.Cache.UseCache {
		cache = db.NewCache(cfg.Cache.MaxAge)
	}
	executor := db.NewExecutor(manager, cache)

	results, failures := executor.ParallelQuery(ctx, cfg.MaxWorkers, query, nil, connections, useCache)
	if len(results) == 0 {
		if err := firstFailure(failures); err != nil {
			return err
		}
		return errors.New(locale.L.Errors.NoDataReturned)
	}

	if err := export.Write(ctx, results, savePath, opts); err != nil {
		return err
	}
	return firstFailure(failures)
}

func runCheck(cfg *config.Config, environment string) error {
	manager := loadManager(cfg, environment)
	defer manager.Close()

	failed := 0
	for name, conn := range manager.GetConnections() {
		if conn.Err() != nil {
			fmt.Printf("%s: %v\n", name, conn.Err())
			failed++
			continue
		}
		if conn.TestConnection(name, cfg.MaxRetries) {
			fmt.Printf("%s: ok\n", name)
		} else {
			fmt.Printf("%s: unreachable\n", name)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d connection(s) failed", failed)
	}
	return nil
}

// printResult renders one connection's shaped output. Positional and
// name-keyed shapes go to a table; everything else is JSON.
func printResult(name string, set *db.ResultSet, shaped any, output string) error {
	fmt.Printf("-- %s (%d rows in %s)\n", name, set.RowCount, set.Duration)

	if output == "table" {
		switch rows := shaped.(type) {
		case []fetch.Row:
			printTable(columnNames(set), rows)
			return nil
		case []fetch.Record:
			raw := make([]fetch.Row, len(rows))
			for i, rec := range rows {
				raw[i] = recordValues(rec)
			}
			printTable(columnNames(set), raw)
			return nil
		}
	}

	out, err := json.MarshalIndent(shaped, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func columnNames(set *db.ResultSet) []string {
	names := make([]string, len(set.Columns))
	for i, c := range set.Columns {
		names[i] = c.Name
	}
	return names
}

func recordValues(rec fetch.Record) fetch.Row {
	values := make(fetch.Row, 0, rec.Len())
	rec.Each(func(_ string, v any) bool {
		values = append(values, v)
		return true
	})
	return values
}

func printTable(headers []string, rows []fetch.Row) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = fmt.Sprintf("%v", v)
			}
		}
		table.Append(cells)
	}

	table.Render()
}

func firstFailure(failures map[string]error) error {
	for name, err := range failures {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
