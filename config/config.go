package config

import (
	"fmt"
	"os"

	"hexagent/searcher"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Strategy    string  `yaml:"strategy"`
	Trials      int     `yaml:"trials"`
	Threads     int     `yaml:"threads"`
	Exploration float64 `yaml:"exploration"`
	TieBreak    bool    `yaml:"tie_break"`
	Seed        uint64  `yaml:"seed"` // 0 seeds from the clock
	BoardSize   int     `yaml:"board_size"`
	Games       int     `yaml:"games"`
	OutputDir   string  `yaml:"output_dir"`
	LogLevel    string  `yaml:"log_level"`
	Pretty      bool    `yaml:"pretty"`
}

func Default() Config {
	return Config{
		Strategy:    searcher.KindParallel.String(),
		Trials:      searcher.DefaultTrials,
		Threads:     searcher.DefaultThreads,
		Exploration: searcher.DefaultExploration,
		TieBreak:    true,
		BoardSize:   5,
		Games:       10,
		OutputDir:   "experiments",
		LogLevel:    "info",
		Pretty:      true,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if _, err := searcher.ParseKind(c.Strategy); err != nil {
		return err
	}
	if c.Trials < 1 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be positive, got %d", c.Threads)
	}
	if c.Exploration < 0 {
		return fmt.Errorf("exploration must not be negative, got %g", c.Exploration)
	}
	if c.BoardSize < 1 {
		return fmt.Errorf("board size must be positive, got %d", c.BoardSize)
	}
	if c.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

func (c Config) Kind() (searcher.Kind, error) {
	return searcher.ParseKind(c.Strategy)
}

// Options turns the search settings into searcher options.
func (c Config) Options() []searcher.Option {
	return []searcher.Option{
		searcher.WithTrials(c.Trials),
		searcher.WithThreads(c.Threads),
		searcher.WithExploration(c.Exploration),
		searcher.WithTieBreak(c.TieBreak),
		searcher.WithSeed(c.Seed),
		searcher.WithMetrics(),
	}
}

func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
