// Package inputs resolves the text inputs of a screening from flags, files and form values.
package inputs

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmpty is returned when an input resolves to blank text.
var ErrEmpty = errors.New("input is empty")

// Source describes where to load an input from.
type Source struct {
	// Name is used in error messages to give more context about the input.
	Name string
	// Value is inline text provided via flags or a form field.
	Value string
	// File points to a plain text file. When set it takes precedence over Value.
	File string
}

// Load returns the resolved text from src. File takes precedence over Value.
// The result is trimmed; blank text yields an error wrapping ErrEmpty.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "input"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	text := strings.TrimSpace(src.Value)
	if text == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q: %w", name, src.File, ErrEmpty)
		}
		return "", fmt.Errorf("%s is not provided: %w", name, ErrEmpty)
	}

	return text, nil
}

// Describe returns a short label of where src points, for logs and reports.
func (s Source) Describe() string {
	if file := strings.TrimSpace(s.File); file != "" {
		return "file:" + file
	}
	if strings.TrimSpace(s.Value) != "" {
		return "inline"
	}
	return ""
}
