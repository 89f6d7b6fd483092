package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger appends activity entries to a per-day JSONL file under the
// data directory. Logging failures never interrupt the action that
// triggered them; Record is fire-and-forget.
type Logger struct {
	mu     sync.Mutex
	logDir string
}

func NewLogger(dataDir string) (*Logger, error) {
	logDir := filepath.Join(dataDir, "activity")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create activity log directory: %w", err)
	}
	return &Logger{logDir: logDir}, nil
}

// Record writes one entry, stamping it with the current time.
func (l *Logger) Record(action Action, userID, resourceID, detail string) {
	entry := Entry{
		Timestamp:  time.Now().UTC(),
		Action:     action,
		UserID:     userID,
		ResourceID: resourceID,
		Detail:     detail,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.logDir, fmt.Sprintf("activity_%s.log", entry.Timestamp.Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	f.Write(append(line, '\n'))
}

// ReadDay returns the entries logged on the given day, newest last.
func (l *Logger) ReadDay(day time.Time) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.logDir, fmt.Sprintf("activity_%s.log", day.UTC().Format("2006-01-02")))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}

	var entries []Entry
	for _, line := range splitLines(data) {
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
