// Package history persists orchestration run results so past runs can
// be inspected after the fact.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/X10NLUN1X/xionimus/pkg/orchestrator"
)

// Store writes run results as JSON files under a base directory,
// named timestamp__runID.json so a directory listing reads as a log.
type Store struct {
	BasePath string
}

// NewStore creates a run-history store, defaulting to
// ~/.xionimus/history.
func NewStore(basePath string) (*Store, error) {
	if basePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		basePath = filepath.Join(home, ".xionimus", "history")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, err
	}
	return &Store{BasePath: basePath}, nil
}

// Save persists a run result and returns the file path.
func (s *Store) Save(result *orchestrator.RunResult) (string, error) {
	if result == nil || result.RunID == "" {
		return "", fmt.Errorf("run result must have a run id")
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s__%s.json", time.Now().UTC().Format("20060102150405"), result.RunID)
	path := filepath.Join(s.BasePath, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Entry identifies one archived run.
type Entry struct {
	RunID     string
	Timestamp string
	Path      string
}

// List returns archived runs, newest first.
func (s *Store) List() ([]Entry, error) {
	files, err := os.ReadDir(s.BasePath)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		base := strings.TrimSuffix(name, ".json")
		timestamp, runID, ok := strings.Cut(base, "__")
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			RunID:     runID,
			Timestamp: timestamp,
			Path:      filepath.Join(s.BasePath, name),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}

// Load reads an archived run by its run id.
func (s *Store) Load(runID string) (*orchestrator.RunResult, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.RunID != runID {
			continue
		}
		data, err := os.ReadFile(entry.Path)
		if err != nil {
			return nil, err
		}
		var result orchestrator.RunResult
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
		return &result, nil
	}
	return nil, fmt.Errorf("run %s not found", runID)
}
