package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counting from concurrent workers", func(t *testing.T) {
		c := NewCollector()
		c.Start("parallel", 8)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					c.AddTrial()
					if j%4 == 0 {
						c.AddSubjectWin()
					}
				}
			}()
		}
		wg.Wait()
		c.SetTree(42, 7)
		c.SetValue(0.625)

		metric := c.Complete()
		require.Equal(t, "parallel", metric.Strategy)
		require.Equal(t, 8, metric.Threads)
		require.Equal(t, 800, metric.Trials)
		require.Equal(t, 200, metric.SubjectWins)
		require.Equal(t, 42, metric.Nodes)
		require.Equal(t, 7, metric.Waits)
		require.Equal(t, 0.625, metric.Value)
	})

	t.Run("starting again resets the counters", func(t *testing.T) {
		c := NewCollector()
		c.Start("sequential", 1)
		c.AddTrial()
		c.Start("sequential", 1)

		require.Equal(t, 0, c.Complete().Trials)
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start("naive", 1)
		c.AddTrial()

		require.Equal(t, SearchMetric{}, c.Complete())
	})
}
