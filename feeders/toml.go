package feeders

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// TomlFeeder reads configuration from a TOML file
type TomlFeeder struct {
	Path string
}

// NewTomlFeeder creates a new TomlFeeder that reads from the specified TOML file
func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{Path: filePath}
}

// Feed decodes the whole file into target
func (t TomlFeeder) Feed(target any) error {
	if _, err := toml.DecodeFile(t.Path, target); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFile, t.Path, err)
	}
	return nil
}

// FeedKey decodes the table named key into target. A missing table leaves
// target untouched.
func (t TomlFeeder) FeedKey(key string, target any) error {
	var allData map[string]toml.Primitive
	md, err := toml.DecodeFile(t.Path, &allData)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFile, t.Path, err)
	}

	value, exists := allData[key]
	if !exists {
		return nil
	}
	if err := md.PrimitiveDecode(value, target); err != nil {
		return fmt.Errorf("failed to decode TOML table %s: %w", key, err)
	}
	return nil
}
