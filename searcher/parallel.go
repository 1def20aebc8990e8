package searcher

import (
	"context"
	"fmt"
	"slices"

	"hexagent/game"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Parallel runs trials in rounds of up to threads workers that share one
// ConcurrentTree. A round ends when all its workers have backed up.
type Parallel struct {
	search
	tree *ConcurrentTree
}

func NewParallel(subject game.Color, options ...Option) *Parallel {
	return &Parallel{search: newSearch(subject, options...)}
}

func (s *Parallel) ChooseMove(ctx context.Context, board *game.Board) (int, error) {
	logger := zerolog.Ctx(ctx)
	p, snapshot, err := s.prepare(board)
	if err != nil {
		return 0, err
	}
	empty := board.NumberOfEmptyCells()

	s.tree = NewConcurrentTree(s.subject.Opponent(), s.exploration)
	s.metrics.Start(KindParallel.String(), s.threads)
	rounds := 0
	for done := 0; done < s.trials; rounds++ {
		workers := min(s.threads, s.trials-done)
		if err := s.round(p, empty, snapshot, workers); err != nil {
			logger.Err(err).Int("round", rounds).Msg("parallel search failed")
			return 0, fmt.Errorf("round %d: %w", rounds, err)
		}
		if err := s.tree.Validate(); err != nil {
			logger.Err(err).Int("round", rounds).Msg("parallel search left an invalid tree")
			return 0, fmt.Errorf("round %d: %w", rounds, err)
		}
		done += workers
	}

	best, value, err := s.tree.BestMove()
	if err != nil {
		return 0, err
	}
	s.metrics.SetTree(s.tree.Len(), s.tree.Waits())
	s.metrics.SetValue(value)
	s.metric = s.metrics.Complete()

	move := s.tree.Position(best)
	logger.Debug().
		Int("move", move).
		Float64("value", value).
		Int("nodes", s.tree.Len()).
		Int64("waits", s.tree.Waits()).
		Msgf("%s chose a move after %d rounds of %d threads", s.subject, rounds, s.threads)
	return move, nil
}

// round starts one goroutine per worker, each with its own random source,
// and aborts the tree as soon as one of them fails so that no peer keeps
// waiting on it.
func (s *Parallel) round(p *playout, empty int, snapshot []bool, workers int) error {
	g := errgroup.Group{}
	for w := 0; w < workers; w++ {
		rng := rand.New(rand.NewSource(s.rng.Uint64()))
		g.Go(func() error {
			outcome, err := s.trial(p, empty, snapshot, rng)
			if err != nil {
				s.tree.Abort()
				return err
			}
			s.metrics.AddTrial()
			if outcome == SubjectWin {
				s.metrics.AddSubjectWin()
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Parallel) trial(p *playout, empty int, snapshot []bool, rng *rand.Rand) (Outcome, error) {
	id, depth, err := s.tree.SelectMaxBalanceNode(empty, s.tieBreak, rng)
	if err != nil {
		return NoResult, err
	}
	if depth < empty { // Claimed an expansion
		if id, err = s.tree.ExpandNode(id, 0, game.Neutral); err != nil {
			return NoResult, err
		}
		depth++
	}

	remaining := slices.Clone(snapshot)
	self, opponent, err := s.tree.MovesFromTreeState(id, remaining, rng)
	if err != nil {
		return NoResult, err
	}
	outcome := p.run(self, opponent, remaining, aligned(depth), rng)
	return outcome, s.tree.UpdateNodeFromSimulation(id, outcome, -1)
}

// Tree returns the tree built by the last ChooseMove.
func (s *Parallel) Tree() *ConcurrentTree {
	return s.tree
}
