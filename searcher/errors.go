package searcher

import "errors"

var (
	// ErrInvariant marks a broken tree invariant: an in-degree other than 1,
	// an edge count other than nodes-1, a win count out of bounds or of the
	// wrong sign, or no move left to assign. It is never recoverable.
	ErrInvariant     = errors.New("tree invariant violated")
	ErrUnknownNode   = errors.New("unknown node")
	ErrDuplicateEdge = errors.New("edge already exists")
	ErrNoChildren    = errors.New("root has no evaluated children")
	ErrAborted       = errors.New("search aborted")
)
