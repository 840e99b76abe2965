package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/oscarbenjamin/txt2bb/internal/config"
)

// runInit builds the handler for the init command.
func runInit(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := newFlagSet(cmd.Name, stderr)
		dir := fs.String("dir", ".", "Directory to scaffold into")
		if code, ok := parseArgs(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		written, err := config.Scaffold(*dir)
		if err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}
		for _, path := range written {
			fmt.Fprintf(stdout, "Created %s\n", path)
		}
		sample := filepath.Join(*dir, config.SampleBankName)
		fmt.Fprintf(stdout, "Next: txt2bb convert %s\n", sample)
		return ExitOK
	}
}
