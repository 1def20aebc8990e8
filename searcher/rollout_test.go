package searcher

import (
	"testing"

	"hexagent/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestPlayoutRun(t *testing.T) {
	t.Run("a completed connection always wins", func(t *testing.T) {
		board := game.NewBoard(3)
		p := newPlayout(board, game.Red)
		remaining := board.EmptyCellSnapshot()
		for _, cell := range []int{4, 5, 6} {
			remaining[cell] = false
		}
		rng := rand.New(rand.NewSource(1))

		for i := 0; i < 20; i++ {
			outcome := p.run([]int{4, 5, 6}, nil, remaining, false, rng)
			require.Equal(t, SubjectWin, outcome)
		}
	})

	t.Run("the opponent's connection is reported as a loss", func(t *testing.T) {
		board := game.NewBoard(3)
		p := newPlayout(board, game.Red)
		remaining := board.EmptyCellSnapshot()
		for _, cell := range []int{2, 5, 8} {
			remaining[cell] = false
		}

		outcome := p.run(nil, []int{2, 5, 8}, remaining, true, rand.New(rand.NewSource(2)))

		require.Equal(t, OpponentWin, outcome)
	})

	t.Run("stones on the board count for their owner", func(t *testing.T) {
		board := game.NewBoard(2)
		require.NoError(t, board.Play(1, game.Blue))
		require.NoError(t, board.Play(3, game.Blue))
		p := newPlayout(board, game.Red)

		outcome := p.run(nil, nil, board.EmptyCellSnapshot(), true, rand.New(rand.NewSource(3)))

		require.Equal(t, OpponentWin, outcome)
	})

	t.Run("a filled board has exactly one winner", func(t *testing.T) {
		board := game.NewBoard(5)
		p := newPlayout(board, game.Blue)
		rng := rand.New(rand.NewSource(4))

		for i := 0; i < 50; i++ {
			outcome := p.run(nil, nil, board.EmptyCellSnapshot(), i%2 == 0, rng)
			require.NotEqual(t, NoResult, outcome)
		}
	})
}
