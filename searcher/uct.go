package searcher

import (
	"context"
	"fmt"
	"slices"

	"hexagent/game"

	"github.com/rs/zerolog"
)

// Sequential runs every trial of a search on one goroutine against a Tree.
type Sequential struct {
	search
	tree *Tree
}

func NewSequential(subject game.Color, options ...Option) *Sequential {
	return &Sequential{search: newSearch(subject, options...)}
}

func (s *Sequential) ChooseMove(ctx context.Context, board *game.Board) (int, error) {
	logger := zerolog.Ctx(ctx)
	p, snapshot, err := s.prepare(board)
	if err != nil {
		return 0, err
	}
	empty := board.NumberOfEmptyCells()

	s.tree = NewTree(s.subject.Opponent(), s.exploration, s.rng)
	s.metrics.Start(KindSequential.String(), 1)
	for i := 0; i < s.trials; i++ {
		outcome, err := s.trial(p, empty, snapshot)
		if err != nil {
			logger.Err(err).Int("trial", i).Msg("sequential search failed")
			return 0, fmt.Errorf("trial %d: %w", i, err)
		}
		s.metrics.AddTrial()
		if outcome == SubjectWin {
			s.metrics.AddSubjectWin()
		}
	}

	best, value, err := s.tree.BestMove()
	if err != nil {
		return 0, err
	}
	s.metrics.SetTree(s.tree.Len(), 0)
	s.metrics.SetValue(value)
	s.metric = s.metrics.Complete()

	move := s.tree.Position(best)
	logger.Debug().
		Int("move", move).
		Float64("value", value).
		Int("nodes", s.tree.Len()).
		Msgf("%s chose a move after %d trials", s.subject, s.trials)
	return move, nil
}

// trial runs one select, expand, rollout and backup cycle.
func (s *Sequential) trial(p *playout, empty int, snapshot []bool) (Outcome, error) {
	id, depth, err := s.tree.SelectMaxBalanceNode(empty, s.tieBreak)
	if err != nil {
		return NoResult, err
	}
	if depth < empty { // Expandable node
		if id, err = s.tree.ExpandNode(id, 0, game.Neutral); err != nil {
			return NoResult, err
		}
		depth++
	}

	remaining := slices.Clone(snapshot)
	self, opponent, err := s.tree.MovesFromTreeState(id, remaining)
	if err != nil {
		return NoResult, err
	}
	outcome := p.run(self, opponent, remaining, aligned(depth), s.rng)
	return outcome, s.tree.UpdateNodeFromSimulation(id, outcome, -1)
}

// Tree returns the tree built by the last ChooseMove.
func (s *Sequential) Tree() *Tree {
	return s.tree
}
