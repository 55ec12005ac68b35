package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped folder under root for one run.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, timestamp)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create directory")
	}
	return &Writer{baseDir: baseDir}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteMatchRecords(records []MatchRecord) error {
	header := []string{"id", "room", "player1", "player2", "winner", "start_time", "end_time", "duration",
		"total_actions", "p1_links", "p1_viruses", "p2_links", "p2_viruses"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.Room,
			r.Players[0],
			r.Players[1],
			r.Winner.String(),
			r.StartTime.Format(time.RFC3339),
			r.EndTime.Format(time.RFC3339),
			r.Duration.String(),
			strconv.Itoa(r.TotalActions),
			strconv.Itoa(r.LinkStacks[0]),
			strconv.Itoa(r.VirusStacks[0]),
			strconv.Itoa(r.LinkStacks[1]),
			strconv.Itoa(r.VirusStacks[1]),
		})
	}
	return w.write("match_records.csv", header, rows)
}

func (w *Writer) WriteActionRecords(records []MatchRecord) error {
	header := []string{"match", "step", "player", "action", "hash"}
	var rows [][]string
	for _, r := range records {
		for _, a := range r.Actions {
			rows = append(rows, []string{
				r.ID,
				strconv.Itoa(a.Step),
				a.Player.String(),
				strings.TrimPrefix(a.Action, "OP "),
				strconv.FormatUint(uint64(a.Hash), 16),
			})
		}
	}
	return w.write("action_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", name)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return errors.Wrapf(err, "failed to write %s header", name)
	}
	if err := writer.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "failed to write %s rows", name)
	}
	return nil
}
