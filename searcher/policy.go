package searcher

import (
	"fmt"
	"math"
)

// Feature names one of the two counters kept by a Policy.
type Feature int

const (
	Visits Feature = iota
	Wins
)

func (f Feature) String() string {
	if f == Wins {
		return "wins"
	}
	return "visits"
}

// Policy holds the UCB1 statistics of a single search node. It has no
// knowledge of the tree; callers supply the parent's visit count.
type Policy struct {
	visits      int
	wins        int
	value       float64 // last estimate, memoized by Calculate
	balance     float64 // last UCB1 balance, memoized by Calculate
	exploration float64
}

func NewPolicy(exploration float64) Policy {
	return Policy{exploration: exploration}
}

// Estimate is the exploitation term wins/visits.
func (p *Policy) Estimate() float64 {
	if p.visits == 0 {
		panic("cannot estimate: 0 visits")
	}
	return float64(p.wins) / float64(p.visits)
}

// Calculate computes wins/n + sqrt(c*ln(N)/n) against the parent's visit
// count N and memoizes both terms.
func (p *Policy) Calculate(parentVisits int) float64 {
	p.value = p.Estimate()
	p.balance = ucb1(p.wins, p.visits, parentVisits, p.exploration)
	return p.balance
}

// Update sets the counter to value, or adds increment to it when value is 0.
func (p *Policy) Update(kind Feature, value, increment int) {
	counter := &p.visits
	if kind == Wins {
		counter = &p.wins
	}
	if value == 0 {
		*counter += increment
	} else {
		*counter = value
	}
}

// UpdateAll applies Update to both counters in one call so that a reader
// holding the same lock never observes one counter without the other.
func (p *Policy) UpdateAll(visitValue, visitIncrement, winValue, winIncrement int) {
	p.Update(Visits, visitValue, visitIncrement)
	p.Update(Wins, winValue, winIncrement)
}

func (p *Policy) Feature(kind Feature) int {
	if kind == Wins {
		return p.wins
	}
	return p.visits
}

// Value and Balance return the terms memoized by the last Calculate.
func (p *Policy) Value() float64   { return p.value }
func (p *Policy) Balance() float64 { return p.balance }

func (p *Policy) Exploration() float64 { return p.exploration }

// check validates |wins| <= visits.
func (p *Policy) check() error {
	if p.visits < 0 || abs(p.wins) > p.visits {
		return fmt.Errorf("%w: wins %d outside [-%d, %d]", ErrInvariant, p.wins, p.visits, p.visits)
	}
	return nil
}

func (p *Policy) String() string {
	return fmt.Sprintf("%d/%d", p.wins, p.visits)
}

func ucb1(wins, visits, parentVisits int, exploration float64) float64 {
	if visits == 0 {
		panic("cannot compute UCB1: 0 visits")
	}
	if parentVisits == 0 {
		panic("cannot compute UCB1: parent has 0 visits")
	}
	n := float64(visits)
	return float64(wins)/n + math.Sqrt(exploration*math.Log(float64(parentVisits))/n)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
