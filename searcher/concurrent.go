package searcher

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"hexagent/game"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

// cnode is a node of a ConcurrentTree. The embedded lock guards policy and
// updated; children, position and name are guarded by the tree's lock.
type cnode struct {
	sync.RWMutex
	changed *sync.Cond // broadcast on the write lock when updated or nchildren changes

	id     NodeID
	parent *cnode
	depth  int
	color  game.Color

	children []*cnode
	position int
	name     string

	policy  Policy
	updated bool

	nchildren atomic.Int32
	pending   atomic.Int32 // claimed but not yet attached expansions
}

func newCNode(id NodeID, position int, color game.Color, exploration float64) *cnode {
	n := &cnode{
		id:       id,
		position: position,
		color:    color,
		name:     nodeName(id, position, color),
		policy:   NewPolicy(exploration),
	}
	n.changed = sync.NewCond(&n.RWMutex)
	return n
}

// ConcurrentTree is a search tree shared by many workers. Structural changes
// take the tree's write lock, traversals its read lock, and statistics use
// each node's own lock. Workers never block on a node condition while holding
// the tree lock.
type ConcurrentTree struct {
	mu          sync.RWMutex
	nodes       []*cnode
	edges       int
	root        *cnode
	rootColor   game.Color
	exploration float64

	aborted atomic.Bool
	waits   atomic.Int64
}

func NewConcurrentTree(rootColor game.Color, exploration float64) *ConcurrentTree {
	t := &ConcurrentTree{rootColor: rootColor, exploration: exploration}
	t.root = t.addNodeLocked(0, rootColor)
	return t
}

func (t *ConcurrentTree) addNodeLocked(position int, color game.Color) *cnode {
	n := newCNode(NodeID(len(t.nodes)), position, color, t.exploration)
	t.nodes = append(t.nodes, n)
	return n
}

func (t *ConcurrentTree) addEdgeLocked(p, c *cnode) error {
	if lo.Contains(p.children, c) {
		return fmt.Errorf("%w: %d -> %d", ErrDuplicateEdge, p.id, c.id)
	}
	if c.parent != nil || c == t.root {
		return invariantf("node %d would have in-degree 2", c.id)
	}
	c.parent = p
	c.depth = p.depth + 1
	p.children = append(p.children, c)
	p.nchildren.Add(1)
	t.edges++
	if t.edges != len(t.nodes)-1 {
		return invariantf("%d edges for %d nodes", t.edges, len(t.nodes))
	}
	return nil
}

func (t *ConcurrentTree) lookupLocked(id NodeID) (*cnode, error) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return t.nodes[id], nil
}

func (t *ConcurrentTree) lookup(id NodeID) (*cnode, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lookupLocked(id)
}

// AddNode creates an unconnected node with zeroed statistics.
func (t *ConcurrentTree) AddNode(position int, color game.Color) NodeID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addNodeLocked(position, color).id
}

func (t *ConcurrentTree) AddEdge(parent, child NodeID) error {
	t.mu.Lock()
	p, err := t.lookupLocked(parent)
	if err == nil {
		var c *cnode
		if c, err = t.lookupLocked(child); err == nil {
			err = t.addEdgeLocked(p, c)
		}
	}
	t.mu.Unlock()
	if err == nil {
		broadcast(p)
	}
	return err
}

// ExpandNode attaches a new child to source and settles one pending
// expansion claimed during selection.
func (t *ConcurrentTree) ExpandNode(source NodeID, move int, color game.Color) (NodeID, error) {
	t.mu.Lock()
	s, err := t.lookupLocked(source)
	if err != nil {
		t.mu.Unlock()
		return NoNode, err
	}
	if s.color != game.Neutral {
		color = s.color.Opponent()
	}
	child := t.addNodeLocked(move, color)
	err = t.addEdgeLocked(s, child)
	for {
		p := s.pending.Load()
		if p == 0 || s.pending.CompareAndSwap(p, p-1) {
			break
		}
	}
	t.mu.Unlock()

	broadcast(s)
	if err != nil {
		return NoNode, err
	}
	return child.id, nil
}

func broadcast(n *cnode) {
	n.Lock()
	n.changed.Broadcast()
	n.Unlock()
}

// SelectMaxBalanceNode descends like Tree.SelectMaxBalanceNode. A worker that
// finds a node with room for another child claims that expansion and returns
// the node. A worker that finds every remaining expansion claimed by others
// waits for them to attach. A worker that reaches a child whose first
// simulation has not been backed up yet waits for that too.
func (t *ConcurrentTree) SelectMaxBalanceNode(emptyCount int, breakTies bool, rng *rand.Rand) (NodeID, int, error) {
	n := t.root
	for {
		if t.aborted.Load() {
			return NoNode, 0, ErrAborted
		}
		remaining := emptyCount - n.depth
		if remaining < 0 {
			return NoNode, 0, invariantf("node %d at depth %d below %d empty cells", n.id, n.depth, emptyCount)
		}

		t.mu.RLock()
		children := append([]*cnode(nil), n.children...)
		claimed := false
		for len(children) < remaining {
			p := n.pending.Load()
			if len(children)+int(p) >= remaining {
				break
			}
			if n.pending.CompareAndSwap(p, p+1) {
				claimed = true
				break
			}
		}
		t.mu.RUnlock()

		switch {
		case len(children) > remaining:
			return NoNode, 0, invariantf("node %d has %d children for %d remaining moves", n.id, len(children), remaining)
		case claimed || remaining == 0:
			return n.id, n.depth, nil
		case len(children) < remaining:
			if err := t.awaitChildren(n, remaining); err != nil {
				return NoNode, 0, err
			}
			continue
		}

		best, err := t.pickChild(n, children, breakTies, rng)
		if err != nil {
			return NoNode, 0, err
		}
		n = best
	}
}

func (t *ConcurrentTree) awaitChildren(n *cnode, want int) error {
	n.Lock()
	defer n.Unlock()
	for int(n.nchildren.Load()) < want && !t.aborted.Load() {
		t.waits.Add(1)
		n.changed.Wait()
	}
	if t.aborted.Load() {
		return ErrAborted
	}
	return nil
}

func (t *ConcurrentTree) awaitUpdate(n *cnode) error {
	n.RLock()
	updated := n.updated
	n.RUnlock()
	if updated {
		return nil
	}

	n.Lock()
	defer n.Unlock()
	for !n.updated && !t.aborted.Load() {
		t.waits.Add(1)
		n.changed.Wait()
	}
	if !n.updated {
		return ErrAborted
	}
	return nil
}

func (t *ConcurrentTree) pickChild(n *cnode, children []*cnode, breakTies bool, rng *rand.Rand) (*cnode, error) {
	for _, c := range children {
		if err := t.awaitUpdate(c); err != nil {
			return nil, err
		}
	}
	// Every child's backup has reached n, so n has been visited
	n.RLock()
	parentVisits := n.policy.visits
	n.RUnlock()

	var best *cnode
	bestBalance := math.Inf(-1)
	bestJitter := -1.0
	for _, c := range children {
		c.RLock()
		wins, visits := c.policy.wins, c.policy.visits
		c.RUnlock()
		balance := ucb1(wins, visits, max(parentVisits, visits), t.exploration)
		switch {
		case balance > bestBalance:
			best, bestBalance, bestJitter = c, balance, -1
		case breakTies && balance == bestBalance:
			if bestJitter < 0 {
				bestJitter = rng.Float64() * tieJitter
			}
			if jitter := rng.Float64() * tieJitter; jitter > bestJitter {
				best, bestJitter = c, jitter
			}
		}
	}
	return best, nil
}

// MovesFromTreeState behaves like Tree.MovesFromTreeState. Position
// assignment takes the tree's write lock so that siblings expanded by
// different workers never share a position.
func (t *ConcurrentTree) MovesFromTreeState(id NodeID, remaining []bool, rng *rand.Rand) (self, opponent []int, err error) {
	t.mu.RLock()
	n, err := t.lookupLocked(id)
	if err == nil && (n.position != 0 || n == t.root) {
		self, opponent, err = t.walkLocked(n, remaining, rng)
		t.mu.RUnlock()
		return self, opponent, err
	}
	t.mu.RUnlock()
	if err != nil {
		return nil, nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.walkLocked(n, remaining, rng)
}

// walkLocked only assigns a position when the caller holds the write lock,
// which is the case whenever n has none yet.
func (t *ConcurrentTree) walkLocked(n *cnode, remaining []bool, rng *rand.Rand) (self, opponent []int, err error) {
	for cur := n; cur != t.root; cur = cur.parent {
		if cur.position == 0 {
			if cur != n {
				return nil, nil, invariantf("ancestor %d of %d has no position", cur.id, n.id)
			}
			continue
		}
		if err := take(remaining, cur.position); err != nil {
			return nil, nil, err
		}
		self, opponent = classify(cur.depth, cur.position, self, opponent)
	}

	if n.position == 0 && n != t.root {
		siblings := lo.Without(n.parent.children, n)
		used := lo.Map(siblings, func(s *cnode, _ int) int { return s.position })
		position, err := drawPosition(remaining, used, rng)
		if err != nil {
			return nil, nil, fmt.Errorf("node %d: %w", n.id, err)
		}
		n.position = position
		n.name = nodeName(n.id, position, n.color)
		remaining[position] = false
		self, opponent = classify(n.depth, position, self, opponent)
	}
	return self, opponent, nil
}

// UpdateNodeFromSimulation backs up one outcome like
// Tree.UpdateNodeFromSimulation, locking one node at a time. Only after the
// whole path carries the result are the nodes marked updated and waiters woken.
func (t *ConcurrentTree) UpdateNodeFromSimulation(id NodeID, outcome Outcome, level int) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}

	path := make([]*cnode, 0, n.depth+1)
	d := delta(n.depth, outcome)
	for steps := 0; n != nil && (level < 0 || steps <= level); steps++ {
		n.Lock()
		n.policy.UpdateAll(0, 1, 0, d)
		err := checkSign(n.id, n.depth, &n.policy)
		n.Unlock()
		if err != nil {
			return err
		}
		path = append(path, n)
		n = n.parent
		d = -d
	}

	for _, n := range path {
		n.Lock()
		if !n.updated {
			n.updated = true
			n.changed.Broadcast()
		}
		n.Unlock()
	}
	return nil
}

// Abort wakes every waiting worker and makes further selections fail with
// ErrAborted. It is used when one worker has failed.
func (t *ConcurrentTree) Abort() {
	t.aborted.Store(true)
	t.mu.RLock()
	nodes := append([]*cnode(nil), t.nodes...)
	t.mu.RUnlock()
	for _, n := range nodes {
		broadcast(n)
	}
}

func (t *ConcurrentTree) Aborted() bool {
	return t.aborted.Load()
}

// Waits counts how often workers blocked on another worker's expansion or
// backup.
func (t *ConcurrentTree) Waits() int64 {
	return t.waits.Load()
}

// BestMove returns the root child with the highest estimate.
func (t *ConcurrentTree) BestMove() (NodeID, float64, error) {
	t.mu.RLock()
	children := append([]*cnode(nil), t.root.children...)
	t.mu.RUnlock()

	best := NoNode
	bestValue := math.Inf(-1)
	for _, c := range children {
		c.RLock()
		visits := c.policy.visits
		var v float64
		if visits > 0 {
			v = c.policy.Estimate()
		}
		c.RUnlock()
		if visits > 0 && v > bestValue {
			best, bestValue = c.id, v
		}
	}
	if best == NoNode {
		return NoNode, 0, ErrNoChildren
	}
	return best, bestValue, nil
}

// Clear resets the tree to a fresh root of the same color. It must not race
// with a running search.
func (t *ConcurrentTree) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes = nil
	t.edges = 0
	t.root = t.addNodeLocked(0, t.rootColor)
	t.aborted.Store(false)
	t.waits.Store(0)
}

func (t *ConcurrentTree) Root() NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root.id
}

func (t *ConcurrentTree) RootColor() game.Color { return t.rootColor }

func (t *ConcurrentTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

func (t *ConcurrentTree) Edges() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.edges
}

func (t *ConcurrentTree) node(id NodeID) *cnode {
	n, err := t.lookup(id)
	if err != nil {
		panic(err)
	}
	return n
}

func (t *ConcurrentTree) Depth(id NodeID) int        { return t.node(id).depth }
func (t *ConcurrentTree) Color(id NodeID) game.Color { return t.node(id).color }

func (t *ConcurrentTree) Parent(id NodeID) NodeID {
	if p := t.node(id).parent; p != nil {
		return p.id
	}
	return NoNode
}

func (t *ConcurrentTree) ChildCount(id NodeID) int {
	return int(t.node(id).nchildren.Load())
}

func (t *ConcurrentTree) Children(id NodeID) []NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lo.Map(t.nodes[id].children, func(c *cnode, _ int) NodeID { return c.id })
}

func (t *ConcurrentTree) Position(id NodeID) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nodes[id].position
}

func (t *ConcurrentTree) SetPosition(id NodeID, position int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.nodes[id]
	n.position = position
	n.name = nodeName(id, position, n.color)
}

func (t *ConcurrentTree) Stats(id NodeID) (visits, wins int) {
	n := t.node(id)
	n.RLock()
	defer n.RUnlock()
	return n.policy.visits, n.policy.wins
}

func (t *ConcurrentTree) Updated(id NodeID) bool {
	n := t.node(id)
	n.RLock()
	defer n.RUnlock()
	return n.updated
}

// Pending counts expansions of id claimed during selection but not yet
// attached.
func (t *ConcurrentTree) Pending(id NodeID) int {
	return int(t.node(id).pending.Load())
}

// Leaves lists every node without children.
func (t *ConcurrentTree) Leaves() []NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	leaves := lo.Filter(t.nodes, func(n *cnode, _ int) bool { return len(n.children) == 0 })
	return lo.Map(leaves, func(n *cnode, _ int) NodeID { return n.id })
}

func (t *ConcurrentTree) Siblings(id NodeID) []NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := t.nodes[id]
	if n.parent == nil {
		return nil
	}
	siblings := lo.Without(n.parent.children, n)
	return lo.Map(siblings, func(c *cnode, _ int) NodeID { return c.id })
}

func (t *ConcurrentTree) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var sb strings.Builder
	var write func(n *cnode)
	write = func(n *cnode) {
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

// Validate checks every structural and statistical invariant. It takes the
// tree's write lock and so sees a consistent structure, but statistics may
// still be moving if workers are running.
func (t *ConcurrentTree) Validate() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.edges != len(t.nodes)-1 {
		return invariantf("%d edges for %d nodes", t.edges, len(t.nodes))
	}
	for _, n := range t.nodes {
		if n == t.root {
			if n.parent != nil {
				return invariantf("root %d has a parent", n.id)
			}
		} else {
			if n.parent == nil {
				return invariantf("node %d has in-degree 0", n.id)
			}
			if lo.Count(n.parent.children, n) != 1 || n.depth != n.parent.depth+1 {
				return invariantf("node %d is not linked once below %d", n.id, n.parent.id)
			}
		}
		if int(n.nchildren.Load()) != len(n.children) {
			return invariantf("node %d counts %d children but has %d", n.id, n.nchildren.Load(), len(n.children))
		}
		n.RLock()
		err := checkSign(n.id, n.depth, &n.policy)
		n.RUnlock()
		if err != nil {
			return err
		}
		positions := lo.Filter(lo.Map(n.children, func(c *cnode, _ int) int { return c.position }),
			func(p int, _ int) bool { return p != 0 })
		if len(lo.Uniq(positions)) != len(positions) {
			return invariantf("children of %d share a position", n.id)
		}
	}
	return nil
}
