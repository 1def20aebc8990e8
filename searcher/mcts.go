package searcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hexagent/experiments/metrics"
	"hexagent/game"

	"golang.org/x/exp/rand"
)

// Strategy picks a move for its player on the given board.
type Strategy interface {
	ChooseMove(ctx context.Context, board *game.Board) (int, error)
	// Metric describes the last ChooseMove.
	Metric() metrics.SearchMetric
}

// Kind names one of the available strategies.
type Kind int

const (
	KindNaive Kind = iota
	KindSequential
	KindParallel
)

var kindNames = map[Kind]string{
	KindNaive:      "naive",
	KindSequential: "sequential",
	KindParallel:   "parallel",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

type Option func(s *search)

// search holds the settings shared by every strategy.
type search struct {
	subject     game.Color
	trials      int
	threads     int
	exploration float64
	tieBreak    bool
	seed        uint64
	rng         *rand.Rand
	metrics     metrics.Collector
	metric      metrics.SearchMetric
}

func WithTrials(trials int) Option {
	return func(s *search) {
		if trials > 0 {
			s.trials = trials
		}
	}
}

func WithThreads(threads int) Option {
	return func(s *search) {
		if threads > 0 {
			s.threads = threads
		}
	}
}

func WithExploration(exploration float64) Option {
	return func(s *search) {
		if exploration >= 0 {
			s.exploration = exploration
		}
	}
}

// WithSeed fixes the random source. A zero seed keeps the time-based default.
func WithSeed(seed uint64) Option {
	return func(s *search) {
		if seed != 0 {
			s.seed = seed
		}
	}
}

func WithTieBreak(enabled bool) Option {
	return func(s *search) {
		s.tieBreak = enabled
	}
}

func WithMetrics() Option {
	return func(s *search) {
		s.metrics = metrics.NewCollector()
	}
}

func newSearch(subject game.Color, options ...Option) search {
	if subject == game.Neutral {
		panic("Must search for a red or blue player")
	}
	s := search{ // Default values
		subject:     subject,
		trials:      DefaultTrials,
		threads:     DefaultThreads,
		exploration: DefaultExploration,
		tieBreak:    true,
		seed:        uint64(time.Now().UnixNano()),
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(&s)
	}
	s.rng = rand.New(rand.NewSource(s.seed))
	return s
}

func (s *search) Metric() metrics.SearchMetric {
	return s.metric
}

func (s *search) Subject() game.Color {
	return s.subject
}

// prepare checks the board can be searched and captures the empty-cell
// snapshot every trial starts from.
func (s *search) prepare(board *game.Board) (*playout, []bool, error) {
	if board.NumberOfEmptyCells() == 0 {
		return nil, nil, fmt.Errorf("cannot choose a move: board is full")
	}
	if board.Winner() != game.Neutral {
		return nil, nil, fmt.Errorf("cannot choose a move: game is over")
	}
	return newPlayout(board, s.subject), board.EmptyCellSnapshot(), nil
}

// New builds the strategy of the given kind playing for subject.
func New(kind Kind, subject game.Color, options ...Option) (Strategy, error) {
	if subject == game.Neutral {
		return nil, fmt.Errorf("cannot search for %s", subject)
	}
	switch kind {
	case KindNaive:
		return NewNaive(subject, options...), nil
	case KindSequential:
		return NewSequential(subject, options...), nil
	case KindParallel:
		return NewParallel(subject, options...), nil
	default:
		return nil, fmt.Errorf("unknown strategy %s", kind)
	}
}
