package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	t.Run("numbering cells row-major from one", func(t *testing.T) {
		b := NewBoard(3)

		require.Equal(t, 9, b.SizeOfVertices())
		require.Equal(t, 9, b.NumberOfEmptyCells())
		require.Equal(t, 1, b.ID(0, 0))
		require.Equal(t, 9, b.ID(2, 2))
		require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, b.EmptyCells())
	})

	t.Run("linking hex neighbours", func(t *testing.T) {
		b := NewBoard(3)

		// Centre cell touches six cells, the acute corners two, the obtuse ones three
		require.ElementsMatch(t, []int{2, 3, 4, 6, 7, 8}, b.Neighbors(5))
		require.ElementsMatch(t, []int{2, 4}, b.Neighbors(1))
		require.ElementsMatch(t, []int{2, 5, 6}, b.Neighbors(3))
		require.True(t, b.IsAdjacent(3, 5))
		require.True(t, b.IsAdjacent(5, 3))
		require.False(t, b.IsAdjacent(1, 5), "Diagonal of the obtuse direction is not a neighbour")
		require.False(t, b.IsAdjacent(0, 1), "Cell 0 is not on the board")
	})
}

func TestBoardPlay(t *testing.T) {
	t.Run("placing a stone on an empty cell", func(t *testing.T) {
		b := NewBoard(3)

		require.NoError(t, b.Play(5, Red))
		require.Equal(t, Red, b.Stone(5))
		require.Equal(t, 8, b.NumberOfEmptyCells())
		require.False(t, b.EmptyCellSnapshot()[5])
		require.NotContains(t, b.EmptyCells(), 5)
		require.Equal(t, []int{5}, b.Moves(Red))
	})

	t.Run("rejecting occupied, off-board and neutral moves", func(t *testing.T) {
		b := NewBoard(3)
		require.NoError(t, b.Play(1, Blue))

		require.Error(t, b.Play(1, Red))
		require.Error(t, b.Play(0, Red))
		require.Error(t, b.Play(10, Red))
		require.Error(t, b.Play(2, Neutral))
		require.Equal(t, 8, b.NumberOfEmptyCells())
	})

	t.Run("undoing a move empties the cell", func(t *testing.T) {
		b := NewBoard(3)
		require.NoError(t, b.Play(7, Blue))

		require.NoError(t, b.Undo(7))
		require.Equal(t, Neutral, b.Stone(7))
		require.Equal(t, 9, b.NumberOfEmptyCells())
		require.Error(t, b.Undo(7))
		require.Error(t, b.Undo(10))
	})

	t.Run("snapshot is not a live view", func(t *testing.T) {
		b := NewBoard(2)
		snapshot := b.EmptyCellSnapshot()
		require.NoError(t, b.Play(1, Red))

		require.True(t, snapshot[1])
		require.False(t, snapshot[0])
	})

	t.Run("copy does not share stones", func(t *testing.T) {
		b := NewBoard(3)
		c := b.Copy()
		require.NoError(t, c.Play(1, Red))

		require.Equal(t, Neutral, b.Stone(1))
		require.Equal(t, 9, b.NumberOfEmptyCells())
	})
}

func TestHasWinningConnection(t *testing.T) {
	b := NewBoard(5)

	t.Run("top row joins west and east", func(t *testing.T) {
		moves := []int{1, 2, 3, 4, 5}

		require.True(t, b.HasWinningConnection(moves, WestEast))
		require.False(t, b.HasWinningConnection(moves, NorthSouth))
	})

	t.Run("first column joins north and south", func(t *testing.T) {
		moves := []int{1, 6, 11, 16, 21}

		require.True(t, b.HasWinningConnection(moves, NorthSouth))
		require.False(t, b.HasWinningConnection(moves, WestEast))
	})

	t.Run("anti-diagonal chain uses hex adjacency", func(t *testing.T) {
		moves := []int{5, 9, 13, 17, 21}

		require.True(t, b.HasWinningConnection(moves, NorthSouth))
		require.True(t, b.HasWinningConnection(moves, WestEast))
	})

	t.Run("broken chain does not connect", func(t *testing.T) {
		moves := []int{1, 2, 4, 5}

		require.False(t, b.HasWinningConnection(moves, WestEast))
	})

	t.Run("empty move list never connects", func(t *testing.T) {
		require.False(t, b.HasWinningConnection(nil, WestEast))
	})
}

func TestBoardWinner(t *testing.T) {
	b := NewBoard(3)
	require.Equal(t, Neutral, b.Winner())

	for _, id := range []int{4, 5, 6} {
		require.NoError(t, b.Play(id, Red))
	}
	require.Equal(t, Red, b.Winner())
}

func TestColor(t *testing.T) {
	require.Equal(t, Blue, Red.Opponent())
	require.Equal(t, Red, Blue.Opponent())
	require.Equal(t, Neutral, Neutral.Opponent())
	require.Equal(t, WestEast, Red.Orientation())
	require.Equal(t, NorthSouth, Blue.Orientation())

	c, err := ParseColor("blue")
	require.NoError(t, err)
	require.Equal(t, Blue, c)
	_, err = ParseColor("green")
	require.Error(t, err)
}
