package searcher

// Hyperparameters for MCTS

const DefaultTrials = 2048 // Trials per move decision
const DefaultThreads = 8   // Workers per round in the parallel search

const DefaultExploration = 2.0 // Exploration constant C in sqrt(C*ln(N)/n)

// Maximum magnitude of the jitter used to break exact balance ties
const tieJitter = 0.01
