package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AgentConfig describes one player taking part in an experiment.
type AgentConfig struct {
	ID          int
	Strategy    string
	Threads     int
	Trials      int
	Exploration float64
	TieBreak    bool
}

type GameRecord struct {
	ID   int
	Red  int // AgentConfig.ID
	Blue int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates root/name/<timestamp> and writes every file there.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) write(file, what string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", what, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", what, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", what, err)
	}
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "strategy", "threads", "trials", "exploration", "tie_break"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Strategy,
			strconv.Itoa(config.Threads),
			strconv.Itoa(config.Trials),
			strconv.FormatFloat(config.Exploration, 'f', -1, 64),
			strconv.FormatBool(config.TieBreak),
		})
	}
	return w.write("agent_configs.csv", "agent configs", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "red", "blue", "starting_player", "winner", "start_time", "end_time", "duration", "total_moves"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Red),
			strconv.Itoa(record.Blue),
			record.StartingPlayer.String(),
			record.Winner.String(),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		})
	}
	return w.write("game_records.csv", "game records", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "cell", "strategy", "threads", "duration", "trials", "subject_wins", "nodes", "waits", "value"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			record.Player.String(),
			strconv.Itoa(record.Cell),
			record.Strategy,
			strconv.Itoa(record.Threads),
			record.Duration.String(),
			strconv.Itoa(record.Trials),
			strconv.Itoa(record.SubjectWins),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.Waits),
			strconv.FormatFloat(record.Value, 'f', 4, 64),
		})
	}
	return w.write("move_records.csv", "move records", header, rows)
}

func (w *Writer) WriteSummaries(summaries []Summary) error {
	header := []string{"agent", "games", "wins", "win_rate", "win_rate_low", "win_rate_high", "mean_move_ms", "std_move_ms", "trials_per_second"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.Agent),
			strconv.Itoa(s.Games),
			strconv.Itoa(s.Wins),
			strconv.FormatFloat(s.WinRate, 'f', 4, 64),
			strconv.FormatFloat(s.WinRateLow, 'f', 4, 64),
			strconv.FormatFloat(s.WinRateHigh, 'f', 4, 64),
			strconv.FormatFloat(s.MeanMoveMillis, 'f', 3, 64),
			strconv.FormatFloat(s.StdMoveMillis, 'f', 3, 64),
			strconv.FormatFloat(s.TrialsPerSecond, 'f', 1, 64),
		})
	}
	return w.write("summaries.csv", "summaries", header, rows)
}
