package engine

import (
	"context"
	"testing"

	"hexagent/experiments/metrics"
	"hexagent/game"
	"hexagent/searcher"

	"github.com/stretchr/testify/require"
)

// scripted plays a fixed list of cells.
type scripted struct {
	cells []int
	next  int
}

func (s *scripted) ChooseMove(_ context.Context, _ *game.Board) (int, error) {
	cell := s.cells[s.next]
	s.next++
	return cell, nil
}

func (s *scripted) Metric() metrics.SearchMetric {
	return metrics.SearchMetric{Strategy: "scripted", Trials: s.next}
}

func TestLocalEngineRun(t *testing.T) {
	t.Run("stopping at the first connection", func(t *testing.T) {
		red := &scripted{cells: []int{4, 5, 6}}
		blue := &scripted{cells: []int{1, 2}}
		e := LocalEngine(3, red, blue, game.Red)

		winner, gameMetric, moveMetrics, err := e.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, game.Red, winner)
		require.Equal(t, 5, gameMetric.TotalMoves)
		require.Equal(t, game.Red, gameMetric.StartingPlayer)
		require.Len(t, moveMetrics, 5)
		require.Equal(t, game.Blue, moveMetrics[1].Player)
		require.Equal(t, 6, moveMetrics[4].Cell)
		require.Equal(t, "scripted", moveMetrics[0].Strategy)
	})

	t.Run("rejecting an occupied cell", func(t *testing.T) {
		red := &scripted{cells: []int{1}}
		blue := &scripted{cells: []int{1}}
		e := LocalEngine(3, red, blue, game.Red)

		_, _, _, err := e.Run(context.Background())

		require.Error(t, err)
	})

	t.Run("playing two searchers to a result", func(t *testing.T) {
		red, err := searcher.New(searcher.KindSequential, game.Red, searcher.WithTrials(64), searcher.WithSeed(1))
		require.NoError(t, err)
		blue, err := searcher.New(searcher.KindParallel, game.Blue, searcher.WithTrials(64), searcher.WithThreads(4), searcher.WithSeed(2))
		require.NoError(t, err)
		e := LocalEngine(3, red, blue, game.Blue)

		winner, gameMetric, _, err := e.Run(context.Background())

		require.NoError(t, err)
		require.NotEqual(t, game.Neutral, winner, "A hex game cannot end without a winner")
		require.Equal(t, winner, e.Board.Winner())
		require.LessOrEqual(t, gameMetric.TotalMoves, 9)
	})
}
