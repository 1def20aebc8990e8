package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"hexagent/config"
	"hexagent/engine"
	"hexagent/experiments"
	"hexagent/experiments/metrics"
	"hexagent/game"
	"hexagent/searcher"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	mode := flag.String("mode", "play", "play a single game or run an experiment")
	experimentName := flag.String("experiment", "strategies", "experiment to run: throughput, strength or strategies")
	opponent := flag.String("opponent", "naive", "strategy playing blue in a single game")
	strategy := flag.String("strategy", "", "strategy playing red, overrides the config")
	trials := flag.Int("trials", 0, "trials per move, overrides the config")
	threads := flag.Int("threads", 0, "workers per round, overrides the config")
	size := flag.Int("size", 0, "board size, overrides the config")
	seed := flag.Uint64("seed", 0, "random seed, overrides the config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *strategy != "" {
		cfg.Strategy = *strategy
	}
	if *trials > 0 {
		cfg.Trials = *trials
	}
	if *threads > 0 {
		cfg.Threads = *threads
	}
	if *size > 0 {
		cfg.BoardSize = *size
	}
	if *seed > 0 {
		cfg.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	setupLogging(cfg)
	ctx := log.Logger.WithContext(context.Background())

	switch *mode {
	case "play":
		err = play(ctx, cfg, *opponent)
	case "experiment":
		err = experiment(ctx, cfg, *experimentName)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func setupLogging(cfg config.Config) {
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}

func play(ctx context.Context, cfg config.Config, opponent string) error {
	kind, err := cfg.Kind()
	if err != nil {
		return err
	}
	red, err := searcher.New(kind, game.Red, cfg.Options()...)
	if err != nil {
		return err
	}
	opponentKind, err := searcher.ParseKind(opponent)
	if err != nil {
		return err
	}
	blueOptions := cfg.Options()
	if cfg.Seed != 0 {
		blueOptions = append(blueOptions, searcher.WithSeed(cfg.Seed+1))
	}
	blue, err := searcher.New(opponentKind, game.Blue, blueOptions...)
	if err != nil {
		return err
	}

	e := engine.LocalEngine(cfg.BoardSize, red, blue, game.Red)
	winner, gameMetric, _, err := e.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Print(render(termenv.NewOutput(os.Stdout), e.Board))
	fmt.Printf("%s (%s) wins after %d moves in %s\n", winner, map[game.Color]string{
		game.Red:  cfg.Strategy,
		game.Blue: opponent,
	}[winner], gameMetric.TotalMoves, gameMetric.Duration.Round(time.Millisecond))
	return nil
}

func experiment(ctx context.Context, cfg config.Config, name string) error {
	exp, err := experiments.Named(name, cfg.BoardSize, cfg.Games, cfg.Trials, cfg.Threads, cfg.Seed)
	if err != nil {
		return err
	}
	writer, err := metrics.NewWriter(cfg.OutputDir, exp.Name)
	if err != nil {
		return err
	}
	_, err = experiments.Run(ctx, exp, writer)
	return err
}
