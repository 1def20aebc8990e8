package searcher

import (
	"slices"

	"hexagent/game"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

// playout is the position every rollout of one search starts from.
type playout struct {
	board   *game.Board
	subject game.Color
	stones  []int // subject's stones already on the board
	against []int // opponent's stones already on the board
}

func newPlayout(board *game.Board, subject game.Color) *playout {
	return &playout{
		board:   board,
		subject: subject,
		stones:  board.Moves(subject),
		against: board.Moves(subject.Opponent()),
	}
}

// run fills every remaining cell at random, alternating sides, and reports
// which side connected. self and opponent are the moves already fixed by the
// tree path.
func (p *playout) run(self, opponent []int, remaining []bool, subjectToMove bool, rng *rand.Rand) Outcome {
	free := lo.Filter(lo.RangeFrom(1, len(remaining)-1), func(cell int, _ int) bool {
		return remaining[cell]
	})
	rng.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})

	mine := slices.Concat(p.stones, self)
	theirs := slices.Concat(p.against, opponent)
	for _, cell := range free {
		if subjectToMove {
			mine = append(mine, cell)
		} else {
			theirs = append(theirs, cell)
		}
		subjectToMove = !subjectToMove
	}

	switch {
	case p.board.HasWinningConnection(mine, p.subject.Orientation()):
		return SubjectWin
	case p.board.HasWinningConnection(theirs, p.subject.Opponent().Orientation()):
		return OpponentWin
	default:
		return NoResult
	}
}
