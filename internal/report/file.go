package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the report to path as indented JSON, creating parent
// directories.
func Save(path string, r *Report) error {
	if r == nil {
		return fmt.Errorf("nil report")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a report written by Save.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// FileName is the default file name for a report: <symbol>-<run id>.json.
func FileName(r *Report) string {
	return fmt.Sprintf("%s-%s.json", r.Symbol, r.RunID)
}
