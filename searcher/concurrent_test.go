package searcher

import (
	"slices"
	"sync"
	"testing"

	"hexagent/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

/**
Tests the shared search tree
sequential:
- structure and dump match the single-owner tree
- selection claims expansions until a node is full
concurrent: 4 race conditions
- shared expansion of one node: unique sibling positions
- shared selection + backup: invariants hold, every leaf updated
- waiting on a claimed expansion
- aborting wakes waiters
*/

// concurrentTrial runs one select, expand, rollout and backup cycle.
func concurrentTrial(tree *ConcurrentTree, p *playout, snapshot []bool, rng *rand.Rand) error {
	empty := lenTrue(snapshot)
	id, depth, err := tree.SelectMaxBalanceNode(empty, true, rng)
	if err != nil {
		return err
	}
	if depth < empty {
		if id, err = tree.ExpandNode(id, 0, game.Neutral); err != nil {
			return err
		}
		depth++
	}
	remaining := slices.Clone(snapshot)
	self, opponent, err := tree.MovesFromTreeState(id, remaining, rng)
	if err != nil {
		return err
	}
	outcome := p.run(self, opponent, remaining, aligned(depth), rng)
	return tree.UpdateNodeFromSimulation(id, outcome, -1)
}

func lenTrue(cells []bool) int {
	n := 0
	for _, c := range cells {
		if c {
			n++
		}
	}
	return n
}

func TestConcurrentTreeStructure(t *testing.T) {
	t.Run("expanding a neutral root on a 3x3 board", func(t *testing.T) {
		tree := NewConcurrentTree(game.Neutral, DefaultExploration)

		red, err := tree.ExpandNode(tree.Root(), 1, game.Red)
		require.NoError(t, err)
		blue, err := tree.ExpandNode(tree.Root(), 2, game.Blue)
		require.NoError(t, err)

		require.Equal(t, game.Red, tree.Color(red))
		require.Equal(t, game.Blue, tree.Color(blue))
		require.Equal(t, 2, tree.ChildCount(tree.Root()))
		require.Equal(t, 2, tree.Edges())
		require.ElementsMatch(t, []NodeID{red, blue}, tree.Leaves())
		require.Equal(t, []NodeID{blue}, tree.Siblings(red))
		require.Equal(t, "(0:0:N (1:1:R) (2:2:B))", tree.String())
		require.NoError(t, tree.Validate())
	})

	t.Run("rejecting a second parent", func(t *testing.T) {
		tree := NewConcurrentTree(game.Blue, DefaultExploration)
		a, _ := tree.ExpandNode(tree.Root(), 1, game.Neutral)
		b, _ := tree.ExpandNode(tree.Root(), 2, game.Neutral)

		require.ErrorIs(t, tree.AddEdge(a, b), ErrInvariant)
		require.ErrorIs(t, tree.AddEdge(tree.Root(), a), ErrDuplicateEdge)
		_, err := tree.ExpandNode(99, 0, game.Neutral)
		require.ErrorIs(t, err, ErrUnknownNode)
	})

	t.Run("backing up with alternating signs", func(t *testing.T) {
		tree := NewConcurrentTree(game.Blue, DefaultExploration)
		child, _ := tree.ExpandNode(tree.Root(), 1, game.Neutral)
		grandChild, _ := tree.ExpandNode(child, 2, game.Neutral)

		require.NoError(t, tree.UpdateNodeFromSimulation(grandChild, SubjectWin, -1))

		_, wins := tree.Stats(grandChild)
		require.Equal(t, -1, wins)
		_, wins = tree.Stats(child)
		require.Equal(t, 1, wins)
		visits, wins := tree.Stats(tree.Root())
		require.Equal(t, 1, visits)
		require.Equal(t, -1, wins)
		require.True(t, tree.Updated(grandChild))
		require.True(t, tree.Updated(child))
	})

	t.Run("clearing resets to a fresh root", func(t *testing.T) {
		tree := NewConcurrentTree(game.Red, DefaultExploration)
		_, _ = tree.ExpandNode(tree.Root(), 1, game.Neutral)
		tree.Abort()

		tree.Clear()

		require.Equal(t, 1, tree.Len())
		require.False(t, tree.Aborted())
		require.Equal(t, "(0:0:R)", tree.String())
	})
}

func TestConcurrentTreeSelectMaxBalanceNode(t *testing.T) {
	t.Run("claiming expansions until the node is full", func(t *testing.T) {
		tree := NewConcurrentTree(game.Blue, DefaultExploration)
		rng := rand.New(rand.NewSource(1))

		for i := 0; i < 3; i++ {
			id, depth, err := tree.SelectMaxBalanceNode(3, true, rng)
			require.NoError(t, err)
			require.Equal(t, tree.Root(), id)
			require.Equal(t, 0, depth)
		}
		require.Equal(t, 3, tree.Pending(tree.Root()))

		_, err := tree.ExpandNode(tree.Root(), 0, game.Neutral)
		require.NoError(t, err)
		require.Equal(t, 2, tree.Pending(tree.Root()), "Attaching a child should settle one claim")
	})

	t.Run("waiting for a claimed expansion to be backed up", func(t *testing.T) {
		tree := NewConcurrentTree(game.Blue, DefaultExploration)
		board := game.NewBoard(1)
		p := newPlayout(board, game.Red)
		rng := rand.New(rand.NewSource(2))

		id, _, err := tree.SelectMaxBalanceNode(1, true, rng)
		require.NoError(t, err)
		require.Equal(t, tree.Root(), id)

		selected := make(chan NodeID)
		go func() {
			id, _, err := tree.SelectMaxBalanceNode(1, true, rand.New(rand.NewSource(3)))
			if err != nil {
				selected <- NoNode
				return
			}
			selected <- id
		}()

		child, err := tree.ExpandNode(id, 0, game.Neutral)
		require.NoError(t, err)
		remaining := board.EmptyCellSnapshot()
		self, opponent, err := tree.MovesFromTreeState(child, remaining, rng)
		require.NoError(t, err)
		require.NoError(t, tree.UpdateNodeFromSimulation(child, p.run(self, opponent, remaining, false, rng), -1))

		require.Equal(t, child, <-selected, "Waiting worker should descend into the new child")
	})

	t.Run("aborting wakes waiting workers", func(t *testing.T) {
		tree := NewConcurrentTree(game.Blue, DefaultExploration)
		rng := rand.New(rand.NewSource(4))
		_, _, err := tree.SelectMaxBalanceNode(1, true, rng)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, errs[i] = tree.SelectMaxBalanceNode(1, true, rand.New(rand.NewSource(uint64(i))))
			}()
		}
		tree.Abort()
		wg.Wait()

		for _, err := range errs {
			require.ErrorIs(t, err, ErrAborted)
		}
	})
}

func TestConcurrentTreeRaceConditions(t *testing.T) {
	t.Run("shared expansion assigns unique sibling positions", func(t *testing.T) {
		board := game.NewBoard(4)
		tree := NewConcurrentTree(game.Blue, DefaultExploration)
		n := board.NumberOfEmptyCells()

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rng := rand.New(rand.NewSource(uint64(i + 1)))
				id, err := tree.ExpandNode(tree.Root(), 0, game.Neutral)
				assert.NoError(t, err)
				_, _, err = tree.MovesFromTreeState(id, board.EmptyCellSnapshot(), rng)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		positions := []int{}
		for _, id := range tree.Children(tree.Root()) {
			positions = append(positions, tree.Position(id))
		}
		require.ElementsMatch(t, board.EmptyCells(), positions)
		require.NoError(t, tree.Validate())
	})

	t.Run("shared selection and backup keep every invariant", func(t *testing.T) {
		board := game.NewBoard(3)
		require.NoError(t, board.Play(5, game.Blue))
		tree := NewConcurrentTree(game.Blue, DefaultExploration)
		p := newPlayout(board, game.Red)
		snapshot := board.EmptyCellSnapshot()
		const workers, trials = 16, 40

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rng := rand.New(rand.NewSource(uint64(w + 1)))
				for i := 0; i < trials; i++ {
					assert.NoError(t, concurrentTrial(tree, p, snapshot, rng))
				}
			}()
		}
		wg.Wait()

		require.NoError(t, tree.Validate())
		visits, _ := tree.Stats(tree.Root())
		require.Equal(t, workers*trials, visits, "Every trial should reach the root")
		require.Equal(t, 8, tree.ChildCount(tree.Root()))
		require.Equal(t, 0, tree.Pending(tree.Root()))
		for _, id := range tree.Leaves() {
			require.True(t, tree.Updated(id), "Leaf %d should be backed up", id)
		}
	})
}
