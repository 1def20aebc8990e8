package metrics

import (
	"math"
	"sync/atomic"
	"time"

	"hexagent/game"
)

// SearchMetric summarizes one move decision.
type SearchMetric struct {
	Strategy    string
	Threads     int
	Duration    time.Duration
	Trials      int
	SubjectWins int // rollouts won by the searching side
	Nodes       int
	Waits       int // times a worker blocked on another worker's expansion or backup
	Value       float64
}

type MoveMetric struct {
	Step   int
	Player game.Color
	Cell   int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer game.Color
	Winner         game.Color
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(strategy string, threads int)
	AddTrial()
	AddSubjectWin()
	SetTree(nodes int, waits int64)
	SetValue(value float64)
	Complete() SearchMetric
}

type collector struct {
	strategy    string
	threads     int
	startTime   time.Time
	trials      atomic.Int32
	subjectWins atomic.Int32
	nodes       atomic.Int32
	waits       atomic.Int64
	value       atomic.Uint64 // float64 bits
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new search.
func (m *collector) Start(strategy string, threads int) {
	m.startTime = time.Now()
	m.strategy = strategy
	m.threads = threads
	m.trials.Store(0)
	m.subjectWins.Store(0)
	m.nodes.Store(0)
	m.waits.Store(0)
	m.value.Store(0)
}

func (m *collector) AddTrial() {
	m.trials.Add(1)
}

func (m *collector) AddSubjectWin() {
	m.subjectWins.Add(1)
}

func (m *collector) SetTree(nodes int, waits int64) {
	m.nodes.Store(int32(nodes))
	m.waits.Store(waits)
}

func (m *collector) SetValue(value float64) {
	m.value.Store(math.Float64bits(value))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Strategy:    m.strategy,
		Threads:     m.threads,
		Duration:    time.Since(m.startTime),
		Trials:      int(m.trials.Load()),
		SubjectWins: int(m.subjectWins.Load()),
		Nodes:       int(m.nodes.Load()),
		Waits:       int(m.waits.Load()),
		Value:       math.Float64frombits(m.value.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(strategy string, threads int) {}
func (m *dummyCollector) AddTrial()                          {}
func (m *dummyCollector) AddSubjectWin()                     {}
func (m *dummyCollector) SetTree(nodes int, waits int64)     {}
func (m *dummyCollector) SetValue(value float64)             {}
func (m *dummyCollector) Complete() SearchMetric             { return SearchMetric{} }
