package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/oscarbenjamin/txt2bb/internal/config"
	"github.com/oscarbenjamin/txt2bb/internal/render/latex"
	"github.com/oscarbenjamin/txt2bb/internal/runner"
	"github.com/oscarbenjamin/txt2bb/internal/ui/live"
)

var (
	runConversion = runner.Run
	startLiveUI   = live.Start
)

// runConvert builds the handler for the convert command.
func runConvert(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			fs := newFlagSet(cmd.Name, stdout)
			registerConvertFlags(fs, &commonOptions{})
			fs.PrintDefaults()
			return ExitOK
		}

		fs := newFlagSet(cmd.Name, stderr)
		var opts commonOptions
		flags := registerConvertFlags(fs, &opts)
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
		params.Modes = selectModes(flags, st.cfg.Output.Modes)
		params.OutputDir = st.cfg.Output.Dir
		if fs.Changed("output-dir") {
			params.OutputDir = *flags.outputDir
		}
		params.Output = *flags.output
		params.Randomise = *flags.randomise || st.cfg.Randomise.Enabled || fs.Changed("seed")
		params.Seed = st.cfg.Randomise.Seed
		if fs.Changed("seed") {
			seed := *flags.seed
			params.Seed = &seed
		}
		params.Latex = latex.Options{Packages: st.cfg.Latex.Packages, Title: st.cfg.Latex.Title}
		params.Stdout = stdout

		streaming := params.Output == runner.StdoutPath
		report := stdout
		uiMode := st.cfg.Run.UI
		if fs.Changed("ui") {
			uiMode = *flags.ui
		}
		if streaming {
			report = stderr
		}
		decision, err := resolveUIMode(uiMode, opts.verbose, streaming, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		var controller *live.Controller
		if decision.useLive {
			controller = startLiveUI(stdout, live.Options{})
			params.Observer = controller
		} else {
			params.Observer = runner.LogObserver{Logger: st.logger}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		results, err := runConversion(ctx, params)
		if controller != nil {
			controller.Close()
			controller.Wait()
		}
		var usageErr *runner.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "%v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if err != nil && !errors.Is(err, runner.ErrFilesFailed) {
			fmt.Fprintf(stderr, "Conversion failed: %v\n", err)
			return ExitError
		}

		if *flags.summary != "" {
			if werr := runner.WriteSummary(*flags.summary, results); werr != nil {
				fmt.Fprintf(stderr, "Failed to write summary: %v\n", werr)
				return ExitError
			}
		}
		printRunSummary(report, results, isTerminal(report))
		if err != nil {
			return ExitError
		}
		return ExitOK
	}
}

// convertFlags holds the flags specific to convert.
type convertFlags struct {
	latex     *bool
	bb        *bool
	html      *bool
	all       *bool
	randomise *bool
	seed      *uint64
	output    *string
	outputDir *string
	ui        *string
	summary   *string
}

func registerConvertFlags(fs *pflag.FlagSet, opts *commonOptions) convertFlags {
	flags := convertFlags{
		latex:     fs.Bool("latex", false, "Write the LaTeX document (<base>.tex)"),
		bb:        fs.Bool("bb", false, "Write the Blackboard upload file (<base>_bb.txt)"),
		html:      fs.Bool("html", false, "Write the HTML proofreading preview (<base>.html)"),
		all:       fs.Bool("all", false, "Write the LaTeX document and the Blackboard upload file"),
		randomise: fs.Bool("randomise", false, "Shuffle answers of MC, MA and JUMBLED_SENTENCE questions"),
		seed:      fs.Uint64("seed", 0, "Shuffle seed; implies --randomise"),
		output:    fs.StringP("output", "o", "", "Output path for a single input; - writes one mode to stdout"),
		outputDir: fs.String("output-dir", "", "Directory for every artifact (default: next to each input)"),
		ui:        fs.String("ui", uiAuto, "Progress display: auto|live|plain"),
		summary:   fs.String("summary", "", "Write the run summary JSON to this path"),
	}
	opts.register(fs)
	return flags
}

// selectModes resolves the renderer flags. Without any mode flag the
// configured modes apply.
func selectModes(flags convertFlags, configured []string) []string {
	var modes []string
	if *flags.latex || *flags.all {
		modes = append(modes, config.ModeLatex)
	}
	if *flags.bb || *flags.all {
		modes = append(modes, config.ModeBB)
	}
	if *flags.html {
		modes = append(modes, config.ModeHTML)
	}
	if len(modes) == 0 {
		return append([]string(nil), configured...)
	}
	return modes
}
