package engine

import (
	"context"

	"hexagent/experiments/metrics"
	"hexagent/game"
)

type Engine interface {
	// Run plays a game until one side connects or the board is full
	Run(ctx context.Context) (winner game.Color, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
