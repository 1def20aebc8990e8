package metrics

import (
	"math"
	"sort"

	"hexagent/game"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary aggregates an agent's results over an experiment.
type Summary struct {
	Agent           int
	Games           int
	Wins            int
	WinRate         float64
	WinRateLow      float64 // normal-approximation confidence bounds
	WinRateHigh     float64
	MeanMoveMillis  float64
	StdMoveMillis   float64
	TrialsPerSecond float64
}

// ZVal returns the two-tailed z value of a confidence level given in percent.
func ZVal(confidence float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	return dist.Quantile((1 + confidence/100) / 2)
}

// Summarize computes one Summary per agent appearing in games, ordered by
// agent ID.
func Summarize(games []GameRecord, moves []MoveRecord, confidence float64) []Summary {
	type tally struct {
		games, wins int
		millis      []float64
		throughput  []float64
	}
	tallies := map[int]*tally{}
	agentOf := map[int]map[game.Color]int{}
	get := func(agent int) *tally {
		if tallies[agent] == nil {
			tallies[agent] = &tally{}
		}
		return tallies[agent]
	}

	for _, g := range games {
		agentOf[g.ID] = map[game.Color]int{game.Red: g.Red, game.Blue: g.Blue}
		for _, agent := range []int{g.Red, g.Blue} {
			get(agent).games++
		}
		if g.Winner != game.Neutral {
			get(agentOf[g.ID][g.Winner]).wins++
		}
	}
	for _, m := range moves {
		agents, ok := agentOf[m.Game]
		if !ok {
			continue
		}
		t := get(agents[m.Player])
		t.millis = append(t.millis, float64(m.Duration.Microseconds())/1000)
		if seconds := m.Duration.Seconds(); seconds > 0 {
			t.throughput = append(t.throughput, float64(m.Trials)/seconds)
		}
	}

	z := ZVal(confidence)
	summaries := make([]Summary, 0, len(tallies))
	for agent, t := range tallies {
		s := Summary{Agent: agent, Games: t.games, Wins: t.wins}
		if t.games > 0 {
			s.WinRate = float64(t.wins) / float64(t.games)
			margin := z * math.Sqrt(s.WinRate*(1-s.WinRate)/float64(t.games))
			s.WinRateLow = math.Max(0, s.WinRate-margin)
			s.WinRateHigh = math.Min(1, s.WinRate+margin)
		}
		if len(t.millis) > 0 {
			s.MeanMoveMillis, s.StdMoveMillis = stat.MeanStdDev(t.millis, nil)
			if len(t.millis) == 1 {
				s.StdMoveMillis = 0
			}
		}
		if len(t.throughput) > 0 {
			s.TrialsPerSecond = stat.Mean(t.throughput, nil)
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Agent < summaries[j].Agent })
	return summaries
}
