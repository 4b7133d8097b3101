// Package analytics persists hook events and per-invocation savings, and
// aggregates them for the stats commands. The append-only JSONL files are
// the write path (safe under concurrent instances); SQLite is the read
// path, rebuilt on demand.
package analytics

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/pkg/filesystem"
	"github.com/benwelker/terse/internal/ports"
)

// JSONLWriter appends structured records to JSONL files under ~/.terse.
// Every write is a single O_APPEND syscall, which keeps concurrent
// instances from interleaving records.
type JSONLWriter struct {
	commandLogPath string
	eventsPath     string
}

// NewJSONLWriter builds a writer using the configured command-log path and
// the default events path.
func NewJSONLWriter(cfg domain.LoggingSettings) *JSONLWriter {
	logPath := filesystem.ExpandPath(cfg.Path)
	if logPath == "" {
		logPath = filepath.Join(filesystem.TerseDir(), "command-log.jsonl")
	}
	return &JSONLWriter{
		commandLogPath: logPath,
		eventsPath:     filepath.Join(filesystem.TerseDir(), "events.jsonl"),
	}
}

// Append implements ports.CommandLog.
func (w *JSONLWriter) Append(entry domain.CommandLogEntry) error {
	return appendJSON(w.commandLogPath, entry)
}

// RecordEvent implements ports.EventSink.
func (w *JSONLWriter) RecordEvent(event domain.HookEvent) error {
	return appendJSON(w.eventsPath, event)
}

// CommandLogPath exposes the log location for the stats importer.
func (w *JSONLWriter) CommandLogPath() string {
	return w.commandLogPath
}

func appendJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(data, '\n'))
	return err
}

// ReadCommandLog loads all entries from a JSONL command log. Malformed
// lines are skipped: a partial line from a crashed writer must not poison
// reporting.
func ReadCommandLog(path string) ([]domain.CommandLogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []domain.CommandLogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var entry domain.CommandLogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

var (
	_ ports.CommandLog = (*JSONLWriter)(nil)
	_ ports.EventSink  = (*JSONLWriter)(nil)
)
