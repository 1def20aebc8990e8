package searcher

import (
	"context"
	"slices"

	"hexagent/game"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Naive is flat Monte Carlo: every empty cell gets an equal share of the
// trials and the cell whose playouts win most often is chosen.
type Naive struct {
	search
}

func NewNaive(subject game.Color, options ...Option) *Naive {
	return &Naive{search: newSearch(subject, options...)}
}

type candidate struct {
	cell int
	wins int
}

func (s *Naive) ChooseMove(ctx context.Context, board *game.Board) (int, error) {
	p, snapshot, err := s.prepare(board)
	if err != nil {
		return 0, err
	}
	cells := board.EmptyCells()
	playouts := max(1, s.trials/len(cells))

	s.metrics.Start(KindNaive.String(), 1)
	candidates := lo.Map(cells, func(cell int, _ int) candidate {
		c := candidate{cell: cell}
		for i := 0; i < playouts; i++ {
			remaining := slices.Clone(snapshot)
			remaining[cell] = false
			s.metrics.AddTrial()
			if p.run([]int{cell}, nil, remaining, false, s.rng) == SubjectWin {
				c.wins++
				s.metrics.AddSubjectWin()
			}
		}
		return c
	})

	best := lo.MaxBy(candidates, func(a, b candidate) bool {
		return a.wins > b.wins
	})
	value := float64(best.wins) / float64(playouts)
	s.metrics.SetTree(len(cells), 0)
	s.metrics.SetValue(value)
	s.metric = s.metrics.Complete()

	zerolog.Ctx(ctx).Debug().
		Int("move", best.cell).
		Float64("value", value).
		Msgf("%s chose a move after %d playouts per cell", s.subject, playouts)
	return best.cell, nil
}
