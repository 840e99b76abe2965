package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/oscarbenjamin/txt2bb/internal/config"
	"github.com/oscarbenjamin/txt2bb/internal/logging"
	"github.com/oscarbenjamin/txt2bb/internal/parser"
	"github.com/oscarbenjamin/txt2bb/internal/runner"
)

// commonOptions holds the flags shared by every pipeline command.
type commonOptions struct {
	configPath    string
	verbose       bool
	logFormat     string
	workers       int
	keepGoing     bool
	strictMarkers bool
}

func (o *commonOptions) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Path to config file (default: search for "+config.ConfigFileName+")")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Log every pipeline stage at debug level")
	fs.StringVar(&o.logFormat, "log-format", "", "Log format: pretty|json")
	fs.IntVar(&o.workers, "workers", 0, "Files processed in parallel (default: number of CPUs)")
	fs.BoolVar(&o.keepGoing, "keep-going", false, "Write every file that parses even when others fail")
	fs.BoolVar(&o.strictMarkers, "strict-markers", false, "Require the word Question in block marker lines")
}

// newFlagSet builds a flag set in the GNU style, accepting flags after
// file arguments and the American spelling of randomise.
func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(true)
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "randomize", "randomise"))
	})
	return fs
}

// parseArgs parses flags and reports the exit code to use when parsing
// did not succeed.
func parseArgs(cmd *Command, fs *pflag.FlagSet, args []string, stdout, stderr io.Writer) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printCommandUsage(cmd, stdout)
			return ExitOK, false
		}
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	return ExitOK, true
}

// settings is the resolved configuration of one command invocation.
type settings struct {
	cfg        config.Config
	configPath string
	logger     zerolog.Logger
}

// loadSettings layers defaults, the config file, the environment, and
// flags, in increasing precedence.
func loadSettings(fs *pflag.FlagSet, opts commonOptions, stderr io.Writer) (settings, error) {
	cfg, path, err := config.Resolve(opts.configPath)
	if err != nil {
		return settings{}, err
	}
	envDir := "."
	if path != "" {
		envDir = filepath.Dir(path)
	}
	if err := config.LoadEnvFile(filepath.Join(envDir, config.EnvFileName)); err != nil {
		return settings{}, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return settings{}, err
	}

	if opts.verbose {
		cfg.Log.Level = zerolog.LevelDebugValue
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if fs.Changed("workers") {
		cfg.Run.Workers = opts.workers
	}
	if opts.keepGoing {
		cfg.Run.OnError = config.OnErrorContinue
	}
	if opts.strictMarkers {
		loose := false
		cfg.Parser.LooseMarkers = &loose
	}
	if err := config.Validate(&cfg); err != nil {
		return settings{}, err
	}

	workers := cfg.Run.Workers
	logger, err := logging.Setup(runner.SyncWriter(workers, stderr), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return settings{}, err
	}
	if path != "" {
		logger.Debug().Str("config", path).Msg("config loaded")
	}
	return settings{cfg: cfg, configPath: path, logger: logger}, nil
}

// baseParams fills the run parameters every command shares.
func (s settings) baseParams(inputs []string) runner.Params {
	return runner.Params{
		Inputs:  inputs,
		Workers: s.cfg.Run.Workers,
		OnError: s.cfg.Run.OnError,
		Parser:  parser.Options{LooseMarkers: s.cfg.LooseMarkers()},
		Logger:  s.logger,
	}
}

// exitCodeFor maps a run error onto an exit status.
func exitCodeFor(err error) int {
	var usageErr *runner.UsageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}
	return ExitError
}

// checkInputs rejects input arguments that can never be read as a bank.
func checkInputs(inputs []string) error {
	if len(inputs) == 0 {
		return &runner.UsageError{Message: "at least one input file is required"}
	}
	for _, input := range inputs {
		if input == runner.StdoutPath {
			return &runner.UsageError{Message: "reading a question bank from stdin is not supported"}
		}
		info, err := os.Stat(input)
		if err == nil && info.IsDir() {
			return &runner.UsageError{Message: fmt.Sprintf("%s is a directory", input)}
		}
	}
	return nil
}
