package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil && impliesConvert(args[0]) {
		return findCommand("convert").Run(args, stdout, stderr)
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

// impliesConvert reports whether a leading argument that names no command
// is a flag or an input file, as in "txt2bb --bb questions.txt".
func impliesConvert(arg string) bool {
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && info.Mode().IsRegular()
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  txt2bb <command> [options]")
	fmt.Fprintln(w, "  txt2bb [convert options] FILE...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"txt2bb <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("convert", "Convert question banks to LaTeX and Blackboard files", []string{
		"txt2bb convert [--latex] [--bb] [--html] [--all] [--randomise] [--seed N] FILE...",
		"txt2bb convert --bb --output - FILE",
		"txt2bb convert --output-dir DIR --keep-going FILE...",
	}, runConvert),
	command("validate", "Parse and expand question banks without writing output", []string{
		"txt2bb validate FILE...",
	}, runValidate),
	command("catalog", "Store expanded questions in a DuckDB catalog", []string{
		"txt2bb catalog --db PATH FILE...",
	}, runCatalog),
	command("init", "Scaffold .txt2bb.yml and a sample question bank", []string{
		"txt2bb init [--dir DIR]",
	}, runInit),
}
