// Package progress decodes the newline-delimited reading-progress stream
// produced by the crawler.
package progress

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
)

// rawEntry mirrors one crawler output line.
type rawEntry struct {
	Title    string `json:"title"`
	ISBN13   string `json:"isbn13"`
	Progress struct {
		ReadingProgress []map[string]string `json:"readingProgress"`
	} `json:"progress"`
}

// ReadEntries decodes the stream, keeping one entry per book built from the
// last readingProgress element. Entries without a start year are dropped:
// there is nothing to correct for them. Malformed lines are an error; the
// stream is machine-produced and a bad line means a truncated crawl.
func ReadEntries(r io.Reader) ([]models.ProgressEntry, error) {
	var out []models.ProgressEntry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var raw rawEntry
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid progress record on line %d: %w", line, err)
		}

		sessions := raw.Progress.ReadingProgress
		if len(sessions) == 0 {
			continue
		}
		last := sessions[len(sessions)-1]
		if last["startaa"] == "" {
			continue
		}

		out = append(out, models.ProgressEntry{
			Title:      raw.Title,
			ISBN13:     raw.ISBN13,
			StartYear:  last["startaa"],
			StartMonth: last["startmm"],
			StartDay:   last["startgg"],
			EndYear:    last["endaa"],
			EndMonth:   last["endmm"],
			EndDay:     last["endgg"],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read progress stream: %w", err)
	}
	return out, nil
}

// ReadFile reads entries from a file path.
func ReadFile(path string) ([]models.ProgressEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress file: %w", err)
	}
	defer f.Close()
	return ReadEntries(f)
}
