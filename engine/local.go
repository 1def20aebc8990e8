package engine

import (
	"context"
	"fmt"
	"time"

	"hexagent/experiments/metrics"
	"hexagent/game"
	"hexagent/searcher"

	"github.com/rs/zerolog/log"
)

var _ Engine = (*Local)(nil)

// Local alternates two strategies on one board in the same process.
type Local struct {
	Board    *game.Board
	Agents   map[game.Color]searcher.Strategy
	Starting game.Color
}

func LocalEngine(size int, red, blue searcher.Strategy, starting game.Color) *Local {
	if red == nil || blue == nil {
		panic("need an agent for each player")
	}
	if starting == game.Neutral {
		panic("starting player must be red or blue")
	}
	return &Local{
		Board:    game.NewBoard(size),
		Agents:   map[game.Color]searcher.Strategy{game.Red: red, game.Blue: blue},
		Starting: starting,
	}
}

func (e *Local) Run(ctx context.Context) (game.Color, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{StartingPlayer: e.Starting, StartTime: time.Now()}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("%s is starting on a %dx%d board", e.Starting, e.Board.Size, e.Board.Size)

	player := e.Starting
	winner := game.Neutral
	for step := 1; winner == game.Neutral && e.Board.NumberOfEmptyCells() > 0; step++ {
		agent := e.Agents[player]
		cell, err := agent.ChooseMove(ctx, e.Board)
		if err != nil {
			return game.Neutral, gameMetric, moveMetrics, fmt.Errorf("%s at step %d: %w", player, step, err)
		}
		if err := e.Board.Play(cell, player); err != nil {
			return game.Neutral, gameMetric, moveMetrics, fmt.Errorf("%s at step %d: %w", player, step, err)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Cell:         cell,
			SearchMetric: agent.Metric(),
		})
		log.Debug().Msgf("step %d: %s played %d", step, player, cell)

		winner = e.Board.Winner()
		player = player.Opponent()
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	gameMetric.Winner = winner
	log.Info().Msgf("%s won after %d moves", winner, len(moveMetrics))
	return winner, gameMetric, moveMetrics, nil
}
