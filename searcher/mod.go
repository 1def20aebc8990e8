package searcher

import "fmt"

// NodeID addresses a node in a tree arena.
type NodeID int

const NoNode NodeID = -1

// Outcome is the result of a rollout from the searching player's perspective.
type Outcome int8

const (
	// NoResult is a completed playout in which neither side connected. It is
	// a terminal state that leaves win counts unchanged.
	NoResult Outcome = iota
	SubjectWin
	OpponentWin
)

func (o Outcome) String() string {
	switch o {
	case SubjectWin:
		return "subject-win"
	case OpponentWin:
		return "opponent-win"
	default:
		return "no-result"
	}
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...)
}
