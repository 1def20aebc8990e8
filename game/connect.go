package game

// unionFind is a disjoint-set forest with path halving and union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

// HasWinningConnection reports whether the cells in moves form a chain joining
// the two sides named by orientation. Only the moves are considered, not the
// stones currently on the board.
func (b *Board) HasWinningConnection(moves []int, orientation Orientation) bool {
	n := b.SizeOfVertices()
	start, end := n+1, n+2 // virtual side vertices
	uf := newUnionFind(n + 3)

	owned := make([]bool, n+1)
	for _, id := range moves {
		if b.valid(id) {
			owned[id] = true
		}
	}

	for _, id := range moves {
		if !b.valid(id) {
			continue
		}
		cell := b.Cells[id]
		line := cell.Col
		if orientation == NorthSouth {
			line = cell.Row
		}
		if line == 0 {
			uf.union(id, start)
		}
		if line == b.Size-1 {
			uf.union(id, end)
		}
		for _, adj := range cell.AdjacentIDs {
			if owned[adj] {
				uf.union(id, adj)
			}
		}
	}
	return uf.find(start) == uf.find(end)
}
