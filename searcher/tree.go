package searcher

import (
	"fmt"
	"math"
	"strings"

	"hexagent/game"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

type node struct {
	id       NodeID
	parent   NodeID
	children []NodeID
	depth    int
	position int // board cell, 0 until assigned
	color    game.Color
	name     string
	policy   Policy
}

// Tree is a single-owner search tree stored as an arena of nodes addressed
// by NodeID. The root's color is the opponent of the side being searched for.
type Tree struct {
	nodes       []*node
	edges       int
	root        NodeID
	rootColor   game.Color
	exploration float64
	rng         *rand.Rand
}

func NewTree(rootColor game.Color, exploration float64, rng *rand.Rand) *Tree {
	t := &Tree{rootColor: rootColor, exploration: exploration, rng: rng}
	t.root = t.AddNode(0, rootColor)
	return t
}

func nodeName(id NodeID, position int, color game.Color) string {
	return fmt.Sprintf("%d:%d:%s", id, position, color)
}

// AddNode creates an unconnected node with zeroed statistics.
func (t *Tree) AddNode(position int, color game.Color) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, &node{
		id:       id,
		parent:   NoNode,
		position: position,
		color:    color,
		name:     nodeName(id, position, color),
		policy:   NewPolicy(t.exploration),
	})
	return id
}

// AddEdge attaches child below parent. A child that already has a parent is
// an invariant violation.
func (t *Tree) AddEdge(parent, child NodeID) error {
	p, err := t.lookup(parent)
	if err != nil {
		return err
	}
	c, err := t.lookup(child)
	if err != nil {
		return err
	}
	if lo.Contains(p.children, child) {
		return fmt.Errorf("%w: %d -> %d", ErrDuplicateEdge, parent, child)
	}
	if c.parent != NoNode || child == t.root {
		return invariantf("node %d would have in-degree 2", child)
	}
	c.parent = parent
	c.depth = p.depth + 1
	p.children = append(p.children, child)
	t.edges++
	if t.edges != len(t.nodes)-1 {
		return invariantf("%d edges for %d nodes", t.edges, len(t.nodes))
	}
	return nil
}

// ExpandNode creates one child of source. The child takes the opposite of
// the source's color, or color itself when the source is neutral.
func (t *Tree) ExpandNode(source NodeID, move int, color game.Color) (NodeID, error) {
	s, err := t.lookup(source)
	if err != nil {
		return NoNode, err
	}
	if s.color != game.Neutral {
		color = s.color.Opponent()
	}
	child := t.AddNode(move, color)
	if err := t.AddEdge(source, child); err != nil {
		return NoNode, err
	}
	return child, nil
}

// SelectMaxBalanceNode descends from the root through fully expanded nodes,
// picking the child with the highest balance, and returns the first node that
// can still be expanded (or a terminal node) together with its depth.
func (t *Tree) SelectMaxBalanceNode(emptyCount int, breakTies bool) (NodeID, int, error) {
	n := t.nodes[t.root]
	for {
		remaining := emptyCount - n.depth
		if remaining < 0 {
			return NoNode, 0, invariantf("node %d at depth %d below %d empty cells", n.id, n.depth, emptyCount)
		}
		if len(n.children) > remaining {
			return NoNode, 0, invariantf("node %d has %d children for %d remaining moves", n.id, len(n.children), remaining)
		}
		if len(n.children) < remaining || remaining == 0 {
			return n.id, n.depth, nil
		}
		n = t.nodes[t.pickChild(n, breakTies)]
	}
}

func (t *Tree) pickChild(n *node, breakTies bool) NodeID {
	best := NoNode
	bestBalance := math.Inf(-1)
	bestJitter := -1.0
	for _, id := range n.children {
		child := t.nodes[id]
		// Unvisited children come first
		if child.policy.visits == 0 {
			return id
		}
		balance := child.policy.Calculate(n.policy.visits)
		switch {
		case balance > bestBalance:
			best, bestBalance, bestJitter = id, balance, -1
		case breakTies && balance == bestBalance:
			if bestJitter < 0 {
				bestJitter = t.rng.Float64() * tieJitter
			}
			if jitter := t.rng.Float64() * tieJitter; jitter > bestJitter {
				best, bestJitter = id, jitter
			}
		}
	}
	return best
}

// MovesFromTreeState walks from id to the root and splits the positions on
// the path into the searching side's moves and the opponent's moves, clearing
// each from remaining. A node without a position is first given one drawn
// uniformly from remaining, excluding positions its siblings already hold.
func (t *Tree) MovesFromTreeState(id NodeID, remaining []bool) (self, opponent []int, err error) {
	n, err := t.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	for cur := n; cur.id != t.root; cur = t.nodes[cur.parent] {
		if cur.position == 0 {
			if cur != n {
				return nil, nil, invariantf("ancestor %d of %d has no position", cur.id, id)
			}
			continue
		}
		if err := take(remaining, cur.position); err != nil {
			return nil, nil, err
		}
		self, opponent = classify(cur.depth, cur.position, self, opponent)
	}

	if n.position == 0 && n.id != t.root {
		used := lo.Map(t.Siblings(id), func(s NodeID, _ int) int { return t.nodes[s].position })
		position, err := drawPosition(remaining, used, t.rng)
		if err != nil {
			return nil, nil, fmt.Errorf("node %d: %w", id, err)
		}
		n.position = position
		n.name = nodeName(n.id, position, n.color)
		remaining[position] = false
		self, opponent = classify(n.depth, position, self, opponent)
	}
	return self, opponent, nil
}

// aligned reports whether a node at depth sits on the root's side: even
// depths are the opponent's moves, odd depths the searching side's.
func aligned(depth int) bool {
	return depth%2 == 0
}

func classify(depth, position int, self, opponent []int) ([]int, []int) {
	if aligned(depth) {
		return self, append(opponent, position)
	}
	return append(self, position), opponent
}

func take(remaining []bool, position int) error {
	if position < 1 || position >= len(remaining) || !remaining[position] {
		return invariantf("position %d is not an empty cell", position)
	}
	remaining[position] = false
	return nil
}

func drawPosition(remaining []bool, used []int, rng *rand.Rand) (int, error) {
	candidates := lo.Filter(lo.RangeFrom(1, len(remaining)-1), func(cell int, _ int) bool {
		return remaining[cell] && !lo.Contains(used, cell)
	})
	if len(candidates) == 0 {
		return 0, invariantf("no remaining move to assign")
	}
	return candidates[rng.Intn(len(candidates))], nil
}

// delta is the win-count change applied at a node of the given depth.
// Nodes on the root's side count the searching side's wins negatively.
func delta(depth int, outcome Outcome) int {
	if outcome != SubjectWin {
		return 0
	}
	if aligned(depth) {
		return -1
	}
	return 1
}

// UpdateNodeFromSimulation records a visit and the outcome's win delta at id,
// then propagates up to level ancestors (the whole path when level < 0),
// negating the delta at every step.
func (t *Tree) UpdateNodeFromSimulation(id NodeID, outcome Outcome, level int) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	d := delta(n.depth, outcome)
	for steps := 0; ; steps++ {
		n.policy.UpdateAll(0, 1, 0, d)
		if err := checkSign(n.id, n.depth, &n.policy); err != nil {
			return err
		}
		if n.parent == NoNode || (level >= 0 && steps >= level) {
			return nil
		}
		n = t.nodes[n.parent]
		d = -d
	}
}

func checkSign(id NodeID, depth int, p *Policy) error {
	if err := p.check(); err != nil {
		return fmt.Errorf("node %d: %w", id, err)
	}
	if aligned(depth) && p.wins > 0 || !aligned(depth) && p.wins < 0 {
		return invariantf("node %d at depth %d has win count %d of the wrong sign", id, depth, p.wins)
	}
	return nil
}

// BestMove returns the root child with the highest estimate. Exploration is
// not considered.
func (t *Tree) BestMove() (NodeID, float64, error) {
	best := NoNode
	bestValue := math.Inf(-1)
	for _, id := range t.nodes[t.root].children {
		child := t.nodes[id]
		if child.policy.visits == 0 {
			continue
		}
		if v := child.policy.Estimate(); v > bestValue {
			best, bestValue = id, v
		}
	}
	if best == NoNode {
		return NoNode, 0, ErrNoChildren
	}
	return best, bestValue, nil
}

// Clear resets the tree to a fresh root of the same color.
func (t *Tree) Clear() {
	t.nodes = nil
	t.edges = 0
	t.root = t.AddNode(0, t.rootColor)
}

func (t *Tree) lookup(id NodeID) (*node, error) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return t.nodes[id], nil
}

func (t *Tree) Root() NodeID          { return t.root }
func (t *Tree) RootColor() game.Color { return t.rootColor }
func (t *Tree) Len() int              { return len(t.nodes) }
func (t *Tree) Edges() int            { return t.edges }

func (t *Tree) Depth(id NodeID) int         { return t.nodes[id].depth }
func (t *Tree) Parent(id NodeID) NodeID     { return t.nodes[id].parent }
func (t *Tree) ChildCount(id NodeID) int    { return len(t.nodes[id].children) }
func (t *Tree) Color(id NodeID) game.Color  { return t.nodes[id].color }
func (t *Tree) Position(id NodeID) int      { return t.nodes[id].position }
func (t *Tree) Name(id NodeID) string       { return t.nodes[id].name }
func (t *Tree) Children(id NodeID) []NodeID { return append([]NodeID(nil), t.nodes[id].children...) }

func (t *Tree) SetPosition(id NodeID, position int) {
	n := t.nodes[id]
	n.position = position
	n.name = nodeName(id, position, n.color)
}

// Stats returns the visit and win counters of a node.
func (t *Tree) Stats(id NodeID) (visits, wins int) {
	p := &t.nodes[id].policy
	return p.Feature(Visits), p.Feature(Wins)
}

// Siblings lists the other children of id's parent.
func (t *Tree) Siblings(id NodeID) []NodeID {
	parent := t.nodes[id].parent
	if parent == NoNode {
		return nil
	}
	return lo.Without(t.nodes[parent].children, id)
}

// String renders the tree as nested parentheses, e.g. "(0:0:N (1:1:R) (2:2:B))".
func (t *Tree) String() string {
	var sb strings.Builder
	var write func(id NodeID)
	write = func(id NodeID) {
		n := t.nodes[id]
		sb.WriteString("(")
		sb.WriteString(n.name)
		for _, c := range n.children {
			sb.WriteString(" ")
			write(c)
		}
		sb.WriteString(")")
	}
	write(t.root)
	return sb.String()
}

// Validate checks every structural and statistical invariant of the tree.
func (t *Tree) Validate() error {
	if t.edges != len(t.nodes)-1 {
		return invariantf("%d edges for %d nodes", t.edges, len(t.nodes))
	}
	for _, n := range t.nodes {
		if n.id == t.root {
			if n.parent != NoNode {
				return invariantf("root %d has a parent", n.id)
			}
		} else {
			if n.parent == NoNode {
				return invariantf("node %d has in-degree 0", n.id)
			}
			p := t.nodes[n.parent]
			if lo.Count(p.children, n.id) != 1 || n.depth != p.depth+1 {
				return invariantf("node %d is not linked once below %d", n.id, p.id)
			}
		}
		if err := checkSign(n.id, n.depth, &n.policy); err != nil {
			return err
		}
		positions := lo.Filter(lo.Map(n.children, func(c NodeID, _ int) int { return t.nodes[c].position }),
			func(p int, _ int) bool { return p != 0 })
		if len(lo.Uniq(positions)) != len(positions) {
			return invariantf("children of %d share a position", n.id)
		}
	}
	return nil
}
