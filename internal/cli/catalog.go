package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oscarbenjamin/txt2bb/internal/config"
	"github.com/oscarbenjamin/txt2bb/internal/duckdb"
	"github.com/oscarbenjamin/txt2bb/internal/runner"
)

// runCatalog builds the handler for the catalog command.
func runCatalog(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := newFlagSet(cmd.Name, stderr)
		var opts commonOptions
		opts.register(fs)
		dbPath := fs.String("db", "", "Path to the DuckDB catalog file")
		if code, ok := parseArgs(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if *dbPath == "" {
			fmt.Fprintln(stderr, "--db is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		inputs := fs.Args()
		if err := checkInputs(inputs); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		st, err := loadSettings(fs, opts, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Configuration error:\n%v\n", err)
			return ExitError
		}
		params := st.baseParams(inputs)
		params.Observer = runner.LogObserver{Logger: st.logger}

		ctx := context.Background()
		results, err := runner.Check(ctx, params)
		if err != nil && !errors.Is(err, runner.ErrFilesFailed) {
			fmt.Fprintf(stderr, "Catalog failed: %v\n", err)
			return exitCodeFor(err)
		}
		failed := err != nil
		if failed && params.OnError == config.OnErrorAbort {
			printRunSummary(stdout, results, isTerminal(stdout))
			fmt.Fprintln(stderr, "Nothing catalogued; fix the failing files or pass --keep-going")
			return ExitError
		}

		db, err := duckdb.Open(ctx, *dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "Catalog failed: %v\n", err)
			return ExitError
		}
		defer db.Close()

		for _, file := range results.Files {
			if file.Status != runner.StatusValid {
				fmt.Fprintf(stdout, "%s %s\n", statusLabel(file.Status, isTerminal(stdout)), describeFile(file))
				continue
			}
			record, err := duckdb.UpsertSource(ctx, db, duckdb.SourceInput{
				Set:       file.Set,
				Blocks:    file.Stats.Blocks,
				UpdatedAt: results.FinishedAt,
			})
			if err != nil {
				fmt.Fprintf(stderr, "Catalog failed for %s: %v\n", file.Path, err)
				return ExitError
			}
			st.logger.Debug().Str("file", file.Path).Str("source_id", record.SourceID).Int("replaced", record.Replaced).Msg("catalogued")
			fmt.Fprintf(stdout, "catalogued %s: %d questions (replaced %d)\n", file.Path, record.Inserted, record.Replaced)
		}

		totals, err := duckdb.Totals(ctx, db)
		if err != nil {
			fmt.Fprintf(stderr, "Catalog failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Catalog %s: %d sources, %d questions, %d answers\n", *dbPath, totals.Sources, totals.Questions, totals.Answers)
		if failed {
			return ExitError
		}
		return ExitOK
	}
}
