package config

// Output modes selectable in config and on the command line.
const (
	ModeLatex = "latex"
	ModeBB    = "bb"
	ModeHTML  = "html"
)

// Failure policies for multi-file runs.
const (
	OnErrorAbort    = "abort"
	OnErrorContinue = "continue"
)

// Config is the decoded .txt2bb.yml file.
type Config struct {
	Version   int             `yaml:"version"`
	Output    OutputConfig    `yaml:"output"`
	Randomise RandomiseConfig `yaml:"randomise"`
	Run       RunConfig       `yaml:"run"`
	Latex     LatexConfig     `yaml:"latex"`
	Parser    ParserConfig    `yaml:"parser"`
	Log       LogConfig       `yaml:"log"`
}

type OutputConfig struct {
	// Dir is where artifacts are written. Empty means next to each input.
	Dir   string   `yaml:"dir"`
	Modes []string `yaml:"modes"`
}

type RandomiseConfig struct {
	Enabled bool    `yaml:"enabled"`
	Seed    *uint64 `yaml:"seed"`
}

type RunConfig struct {
	Workers int    `yaml:"workers"`
	OnError string `yaml:"on_error"`
	UI      string `yaml:"ui"`
}

type LatexConfig struct {
	Packages []string `yaml:"packages"`
	Title    string   `yaml:"title"`
}

type ParserConfig struct {
	LooseMarkers *bool `yaml:"loose_markers"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	cfg := Config{Version: 1}
	Normalize(&cfg)
	return cfg
}

// LooseMarkers reports whether bare dashed lines start a block.
func (cfg Config) LooseMarkers() bool {
	return cfg.Parser.LooseMarkers == nil || *cfg.Parser.LooseMarkers
}
