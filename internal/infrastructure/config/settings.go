package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Settings is the validated engine configuration
type Settings struct {
	Title     string
	Width     int
	Height    int
	Framerate int
	Taskbar   bool
	Visible   bool
}

// DefaultSettings returns the built-in defaults
func DefaultSettings() Settings {
	return Settings{
		Title:     "GAME",
		Width:     1280,
		Height:    720,
		Framerate: 60,
		Taskbar:   false,
		Visible:   true,
	}
}

// ParseError reports a malformed value for a recognized key.
// The field keeps its default.
type ParseError struct {
	Line  int
	Key   string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid value %q for %s: %v", e.Line, e.Value, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseErrors collects every ParseError of one settings file
type ParseErrors []*ParseError

func (pe ParseErrors) Error() string {
	parts := make([]string, len(pe))
	for i, e := range pe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

func (pe ParseErrors) Unwrap() []error {
	out := make([]error, len(pe))
	for i, e := range pe {
		out[i] = e
	}
	return out
}

// Keys returns the offending keys in file order
func (pe ParseErrors) Keys() []string {
	out := make([]string, len(pe))
	for i, e := range pe {
		out[i] = e.Key
	}
	return out
}

var errNotPositive = errors.New("must be positive")

type setter func(s *Settings, value string) error

// settingsTable maps each recognized key to the field it sets
var settingsTable = map[string]setter{
	"title":     func(s *Settings, v string) error { s.Title = v; return nil },
	"width":     positiveInt(func(s *Settings) *int { return &s.Width }),
	"height":    positiveInt(func(s *Settings) *int { return &s.Height }),
	"framerate": positiveInt(func(s *Settings) *int { return &s.Framerate }),
	"taskbar":   boolean(func(s *Settings) *bool { return &s.Taskbar }),
	"visible":   boolean(func(s *Settings) *bool { return &s.Visible }),
}

func positiveInt(field func(*Settings) *int) setter {
	return func(s *Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if n <= 0 {
			return errNotPositive
		}
		*field(s) = n
		return nil
	}
}

func boolean(field func(*Settings) *bool) setter {
	return func(s *Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(s) = b
		return nil
	}
}

// ParseSettings reads a key=value settings file.
//
// Blank lines, lines starting with '#' or ';' and lines without '=' are skipped.
// Unknown keys are ignored and absent keys keep their defaults. Malformed values are
// reported as ParseErrors while the returned Settings stay valid.
func ParseSettings(r io.Reader) (Settings, error) {
	s := DefaultSettings()
	var perrs ParseErrors

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, ";") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		set, known := settingsTable[key]
		if !known {
			continue
		}
		if err := set(&s, value); err != nil {
			perrs = append(perrs, &ParseError{Line: line, Key: key, Value: value, Err: err})
		}
	}
	if err := scanner.Err(); err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	if len(perrs) > 0 {
		return s, perrs
	}
	return s, nil
}
