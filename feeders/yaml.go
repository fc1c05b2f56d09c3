package feeders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YamlFeeder reads configuration from a YAML file
type YamlFeeder struct {
	Path string
}

// NewYamlFeeder creates a new YamlFeeder that reads from the specified YAML file
func NewYamlFeeder(filePath string) YamlFeeder {
	return YamlFeeder{Path: filePath}
}

// Feed decodes the whole file into target
func (y YamlFeeder) Feed(target any) error {
	data, err := os.ReadFile(y.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFile, y.Path, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal YAML %s: %w", y.Path, err)
	}
	return nil
}

// FeedKey decodes the top-level key into target. A missing key leaves
// target untouched.
func (y YamlFeeder) FeedKey(key string, target any) error {
	data, err := os.ReadFile(y.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFile, y.Path, err)
	}

	var allData map[string]yaml.Node
	if err := yaml.Unmarshal(data, &allData); err != nil {
		return fmt.Errorf("failed to read YAML: %w", err)
	}

	node, exists := allData[key]
	if !exists {
		return nil
	}
	if err := node.Decode(target); err != nil {
		return fmt.Errorf("failed to decode YAML key %s: %w", key, err)
	}
	return nil
}
