package experiments

import (
	"context"
	"fmt"

	"hexagent/engine"
	"hexagent/experiments/metrics"
	"hexagent/game"
	"hexagent/searcher"

	"github.com/rs/zerolog/log"
)

const Confidence = 95 // Percent, for win-rate bounds

// Experiment plays every match-up Games times on a BoardSize board. The two
// agents of a match-up swap colors every game so that each starts half of
// the games; red always moves first.
type Experiment struct {
	Name      string
	BoardSize int
	Games     int // Per match up
	Seed      uint64
	Configs   []metrics.AgentConfig
	MatchUps  [][2]metrics.AgentConfig
}

// Results holds everything an experiment produced.
type Results struct {
	Games     []metrics.GameRecord
	Moves     []metrics.MoveRecord
	Summaries []metrics.Summary
}

// Run plays the experiment and, when writer is not nil, stores its records.
func Run(ctx context.Context, exp Experiment, writer *metrics.Writer) (Results, error) {
	count := 0
	results := Results{}

	log.Info().Msgf("starting %s experiment...", exp.Name)

	for mi, matchup := range exp.MatchUps {
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(exp.MatchUps), matchup[0], matchup[1])

		for i := 0; i < exp.Games; i++ {
			red, blue := matchup[0], matchup[1]
			if i%2 == 1 {
				red, blue = blue, red
			}
			count++

			winner, gameMetric, moveMetrics, err := runGame(ctx, exp.BoardSize, red, blue, exp.seed(count))
			if err != nil {
				return results, fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			results.Games = append(results.Games, metrics.GameRecord{
				ID:         count,
				Red:        red.ID,
				Blue:       blue.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				results.Moves = append(results.Moves, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with winner: %s", mi+1, len(exp.MatchUps), i+1, winner)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(exp.MatchUps))
	}
	results.Summaries = metrics.Summarize(results.Games, results.Moves, Confidence)

	log.Info().Msgf("completed %s experiment", exp.Name)
	for _, s := range results.Summaries {
		log.Info().Msgf("agent %d won %d of %d games (%.2f, %.2f-%.2f), %.1f trials/s",
			s.Agent, s.Wins, s.Games, s.WinRate, s.WinRateLow, s.WinRateHigh, s.TrialsPerSecond)
	}

	if writer == nil {
		return results, nil
	}
	return results, store(writer, exp.Configs, results)
}

func store(writer *metrics.Writer, configs []metrics.AgentConfig, results Results) error {
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(results.Games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(results.Moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")

	if err := writer.WriteSummaries(results.Summaries); err != nil {
		return fmt.Errorf("failed to write summaries: %w", err)
	}
	log.Info().Msgf("stored summaries in %s", writer.Dir())
	return nil
}

// seed gives each game its own seeds, or 0 (time-based) when unseeded.
func (exp Experiment) seed(n int) uint64 {
	if exp.Seed == 0 {
		return 0
	}
	return exp.Seed + uint64(n)*2
}

// runGame executes a single game between two agents and returns the winner
func runGame(ctx context.Context, size int, red, blue metrics.AgentConfig, seed uint64) (game.Color, metrics.GameMetric, []metrics.MoveMetric, error) {
	redAgent, err := createStrategy(red, game.Red, seed)
	if err != nil {
		return game.Neutral, metrics.GameMetric{}, nil, err
	}
	var blueSeed uint64
	if seed != 0 {
		blueSeed = seed + 1
	}
	blueAgent, err := createStrategy(blue, game.Blue, blueSeed)
	if err != nil {
		return game.Neutral, metrics.GameMetric{}, nil, err
	}

	e := engine.LocalEngine(size, redAgent, blueAgent, game.Red)
	return e.Run(ctx)
}

func createStrategy(config metrics.AgentConfig, color game.Color, seed uint64) (searcher.Strategy, error) {
	kind, err := searcher.ParseKind(config.Strategy)
	if err != nil {
		return nil, err
	}

	options := []searcher.Option{
		searcher.WithTieBreak(config.TieBreak),
		searcher.WithSeed(seed),
		searcher.WithMetrics(),
	}
	if config.Trials > 0 {
		options = append(options, searcher.WithTrials(config.Trials))
	}
	if config.Threads > 0 {
		options = append(options, searcher.WithThreads(config.Threads))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExploration(config.Exploration))
	}
	return searcher.New(kind, color, options...)
}
