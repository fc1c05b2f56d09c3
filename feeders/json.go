package feeders

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONFeeder reads configuration from a JSON file
type JSONFeeder struct {
	Path string
}

// NewJSONFeeder creates a new JSONFeeder that reads from the specified JSON file
func NewJSONFeeder(filePath string) JSONFeeder {
	return JSONFeeder{Path: filePath}
}

// Feed decodes the whole file into target
func (j JSONFeeder) Feed(target any) error {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFile, j.Path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON %s: %w", j.Path, err)
	}
	return nil
}

// FeedKey decodes the top-level key into target. A missing key leaves
// target untouched.
func (j JSONFeeder) FeedKey(key string, target any) error {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFile, j.Path, err)
	}

	var allData map[string]json.RawMessage
	if err := json.Unmarshal(data, &allData); err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	raw, exists := allData[key]
	if !exists {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode JSON key %s: %w", key, err)
	}
	return nil
}
