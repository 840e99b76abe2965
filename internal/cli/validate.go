package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oscarbenjamin/txt2bb/internal/runner"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := newFlagSet(cmd.Name, stderr)
		var opts commonOptions
		opts.register(fs)
		if code, ok := parseArgs(cmd, fs, args, stdout, stderr); !ok {
			return code
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
		if opts.verbose {
			params.Observer = runner.LogObserver{Logger: st.logger}
		}

		results, err := runner.Check(context.Background(), params)
		if err != nil && !errors.Is(err, runner.ErrFilesFailed) {
			fmt.Fprintf(stderr, "Validation failed: %v\n", err)
			return exitCodeFor(err)
		}
		printRunSummary(stdout, results, isTerminal(stdout))
		if err != nil {
			return ExitError
		}
		return ExitOK
	}
}
