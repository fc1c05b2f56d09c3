package feeders

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DotEnvFeeder populates `env` tagged fields from a .env file. Variables
// already set in the process environment take precedence over the file.
//
//	# fib.env
//	FIB_COMPUTER_STRATEGY=memoized
//	FIB_CACHE_ENGINE="redis"
type DotEnvFeeder struct {
	Path   string
	Prefix string
}

// NewDotEnvFeeder creates a new DotEnvFeeder reading filePath, with names
// built the same way as NewEnvFeeder(prefix).
func NewDotEnvFeeder(filePath, prefix string) *DotEnvFeeder {
	return &DotEnvFeeder{Path: filePath, Prefix: prefix}
}

// Feed populates target using only the feeder prefix
func (f *DotEnvFeeder) Feed(target any) error {
	env, err := f.envFeeder()
	if err != nil {
		return err
	}
	return env.Feed(target)
}

// FeedKey populates target using the feeder prefix followed by key
func (f *DotEnvFeeder) FeedKey(key string, target any) error {
	env, err := f.envFeeder()
	if err != nil {
		return err
	}
	return env.FeedKey(key, target)
}

func (f *DotEnvFeeder) envFeeder() (*EnvFeeder, error) {
	vars, err := parseDotEnv(f.Path)
	if err != nil {
		return nil, err
	}
	return &EnvFeeder{
		Prefix: f.Prefix,
		lookup: func(name string) (string, bool) {
			if v, ok := os.LookupEnv(name); ok {
				return v, true
			}
			v, ok := vars[name]
			return v, ok
		},
	}, nil
}

// parseDotEnv reads KEY=VALUE lines. Blank lines and lines starting with
// '#' are skipped, an optional "export " prefix is dropped and quoted values
// are unquoted.
func parseDotEnv(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFile, path, err)
	}
	defer file.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w at %s:%d: %q", ErrInvalidDotEnvLine, path, lineNum, line)
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			if value[0] == '"' {
				if unquoted, err := strconv.Unquote(value); err == nil {
					value = unquoted
				}
			} else {
				value = value[1 : len(value)-1]
			}
		}
		vars[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFile, path, err)
	}
	return vars, nil
}
