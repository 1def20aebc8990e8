package experiments

import (
	"fmt"

	"hexagent/experiments/metrics"
)

var threadCounts = []int{1, 2, 4, 8, 16, 32}

// Throughput pits each parallel configuration against itself, for the same
// playing strength and similar game length, to measure trials per second.
func Throughput(boardSize, games, trials int, seed uint64) Experiment {
	configs := []metrics.AgentConfig{}
	matchUps := [][2]metrics.AgentConfig{}
	for i, threads := range threadCounts {
		config := metrics.AgentConfig{ID: i + 1, Strategy: "parallel", Threads: threads, Trials: trials, TieBreak: true}
		configs = append(configs, config)
		matchUps = append(matchUps, [2]metrics.AgentConfig{config, config})
	}
	return Experiment{Name: "throughput", BoardSize: boardSize, Games: games, Seed: seed, Configs: configs, MatchUps: matchUps}
}

// Strength pairs each parallel configuration against the sequential
// baseline with the same trial budget.
func Strength(boardSize, games, trials int, seed uint64) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Strategy: "sequential", Threads: 1, Trials: trials, TieBreak: true}
	configs := []metrics.AgentConfig{baseline}
	matchUps := [][2]metrics.AgentConfig{}
	for i, threads := range threadCounts {
		config := metrics.AgentConfig{ID: i + 1, Strategy: "parallel", Threads: threads, Trials: trials, TieBreak: true}
		configs = append(configs, config)
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return Experiment{Name: "strength", BoardSize: boardSize, Games: games, Seed: seed, Configs: configs, MatchUps: matchUps}
}

// Strategies plays every pair of the three strategies against each other.
func Strategies(boardSize, games, trials, threads int, seed uint64) Experiment {
	configs := []metrics.AgentConfig{
		{ID: 1, Strategy: "naive", Threads: 1, Trials: trials, TieBreak: true},
		{ID: 2, Strategy: "sequential", Threads: 1, Trials: trials, TieBreak: true},
		{ID: 3, Strategy: "parallel", Threads: threads, Trials: trials, TieBreak: true},
	}
	matchUps := [][2]metrics.AgentConfig{
		{configs[0], configs[1]},
		{configs[0], configs[2]},
		{configs[1], configs[2]},
	}
	return Experiment{Name: "strategies", BoardSize: boardSize, Games: games, Seed: seed, Configs: configs, MatchUps: matchUps}
}

// Named returns the preset experiment with the given name.
func Named(name string, boardSize, games, trials, threads int, seed uint64) (Experiment, error) {
	switch name {
	case "throughput":
		return Throughput(boardSize, games, trials, seed), nil
	case "strength":
		return Strength(boardSize, games, trials, seed), nil
	case "strategies":
		return Strategies(boardSize, games, trials, threads, seed), nil
	default:
		return Experiment{}, fmt.Errorf("unknown experiment %q", name)
	}
}
