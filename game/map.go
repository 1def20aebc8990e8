package game

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Cell is one vertex of the rhombic grid. IDs start at 1; 0 means "no cell".
type Cell struct {
	ID          int
	Row         int
	Col         int
	AdjacentIDs []int // IDs of adjacent cells
}

// Board is a size x size rhombic hex board. Cells are numbered row-major from 1.
type Board struct {
	Size   int
	Cells  []*Cell // indexed by cell ID, Cells[0] is nil
	stones []Color // indexed by cell ID
	empty  int
}

// NewBoard creates an empty board with the hex adjacency of a rhombus.
func NewBoard(size int) *Board {
	if size < 1 {
		panic(fmt.Sprintf("invalid board size %d", size))
	}
	n := size * size
	b := &Board{
		Size:   size,
		Cells:  make([]*Cell, n+1),
		stones: make([]Color, n+1),
		empty:  n,
	}
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			id := b.ID(row, col)
			b.Cells[id] = &Cell{ID: id, Row: row, Col: col, AdjacentIDs: []int{}}
		}
	}

	// Each cell touches up to six others; only the forward half is listed
	// since AddBorder is symmetric.
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			id := b.ID(row, col)
			for _, d := range [][2]int{{0, 1}, {1, -1}, {1, 0}} {
				r, c := row+d[0], col+d[1]
				if r < 0 || r >= size || c < 0 || c >= size {
					continue
				}
				b.AddBorder(id, b.ID(r, c))
			}
		}
	}
	return b
}

// ID converts a zero-based row and column to a cell ID.
func (b *Board) ID(row, col int) int {
	return row*b.Size + col + 1
}

// AddBorder adds a bidirectional border between two cells.
func (b *Board) AddBorder(id1, id2 int) {
	if !lo.Contains(b.Cells[id1].AdjacentIDs, id2) {
		b.Cells[id1].AdjacentIDs = append(b.Cells[id1].AdjacentIDs, id2)
	}
	if !lo.Contains(b.Cells[id2].AdjacentIDs, id1) {
		b.Cells[id2].AdjacentIDs = append(b.Cells[id2].AdjacentIDs, id1)
	}
}

func (b *Board) valid(id int) bool {
	return id >= 1 && id < len(b.Cells)
}

// Neighbors returns the IDs of the cells adjacent to id.
func (b *Board) Neighbors(id int) []int {
	if !b.valid(id) {
		return nil
	}
	return b.Cells[id].AdjacentIDs
}

// IsAdjacent checks if two cells share a border.
func (b *Board) IsAdjacent(id1, id2 int) bool {
	if !b.valid(id1) || !b.valid(id2) {
		return false
	}
	return lo.Contains(b.Cells[id1].AdjacentIDs, id2)
}

// SizeOfVertices is the number of cells on the board.
func (b *Board) SizeOfVertices() int {
	return len(b.Cells) - 1
}

func (b *Board) NumberOfEmptyCells() int {
	return b.empty
}

// EmptyCellSnapshot returns a point-in-time copy of the empty-cell indicator,
// indexed by cell ID. Index 0 is always false.
func (b *Board) EmptyCellSnapshot() []bool {
	snapshot := make([]bool, len(b.stones))
	for id := 1; id < len(b.stones); id++ {
		snapshot[id] = b.stones[id] == Neutral
	}
	return snapshot
}

// EmptyCells lists the IDs of all empty cells in ascending order.
func (b *Board) EmptyCells() []int {
	return lo.Filter(lo.RangeFrom(1, b.SizeOfVertices()), func(id int, _ int) bool {
		return b.stones[id] == Neutral
	})
}

// Stone returns the color occupying the cell, Neutral when empty.
func (b *Board) Stone(id int) Color {
	if !b.valid(id) {
		return Neutral
	}
	return b.stones[id]
}

// Moves lists the cells occupied by color.
func (b *Board) Moves(color Color) []int {
	return lo.Filter(lo.RangeFrom(1, b.SizeOfVertices()), func(id int, _ int) bool {
		return b.stones[id] == color
	})
}

// Play places a stone of the given color on an empty cell.
func (b *Board) Play(id int, color Color) error {
	if !b.valid(id) {
		return fmt.Errorf("cannot play: cell %d is off the board", id)
	}
	if color == Neutral {
		return fmt.Errorf("cannot play: neutral is not a player")
	}
	if b.stones[id] != Neutral {
		return fmt.Errorf("cannot play: cell %d is occupied by %s", id, b.stones[id])
	}
	b.stones[id] = color
	b.empty--
	return nil
}

// Undo removes the stone on a cell.
func (b *Board) Undo(id int) error {
	if !b.valid(id) {
		return fmt.Errorf("cannot undo: cell %d is off the board", id)
	}
	if b.stones[id] == Neutral {
		return fmt.Errorf("cannot undo: cell %d is empty", id)
	}
	b.stones[id] = Neutral
	b.empty++
	return nil
}

// Copy returns a deep copy of the board stones; the adjacency is shared.
func (b *Board) Copy() *Board {
	stones := make([]Color, len(b.stones))
	copy(stones, b.stones)
	return &Board{
		Size:   b.Size,
		Cells:  b.Cells,
		stones: stones,
		empty:  b.empty,
	}
}

// Winner returns the color that has connected its sides, Neutral if none.
func (b *Board) Winner() Color {
	for _, color := range []Color{Red, Blue} {
		if b.HasWinningConnection(b.Moves(color), color.Orientation()) {
			return color
		}
	}
	return Neutral
}

// String draws the rhombus with each row shifted right by one column.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < b.Size; row++ {
		sb.WriteString(strings.Repeat(" ", row))
		for col := 0; col < b.Size; col++ {
			switch b.stones[b.ID(row, col)] {
			case Red:
				sb.WriteString("R ")
			case Blue:
				sb.WriteString("B ")
			default:
				sb.WriteString(". ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
