// Package repair turns result-file text that may hold several JSON arrays
// written back to back into a single JSON array.
package repair

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Mode names accepted by Get.
const (
	ModeLexical = "lexical"
	ModeStream  = "stream"
)

// Repairer converts raw file text into text holding exactly one JSON value.
// It does not validate; the caller parses the result.
type Repairer interface {
	Repair(text string) (string, error)
}

// Get returns the Repairer registered under mode.
func Get(mode string) (Repairer, error) {
	switch mode {
	case ModeLexical, "":
		return Lexical{}, nil
	case ModeStream:
		return Stream{}, nil
	default:
		return nil, fmt.Errorf("unknown repair mode: %s", mode)
	}
}

// Modes lists the accepted repair modes.
func Modes() []string {
	return []string{ModeLexical, ModeStream}
}

// Lexical replaces every "][" with ",". It assumes "][" never occurs inside
// string content; when it does, the string is altered.
type Lexical struct{}

// Repair trims surrounding whitespace and joins adjacent arrays.
func (Lexical) Repair(text string) (string, error) {
	return strings.ReplaceAll(strings.TrimSpace(text), "][", ","), nil
}

// Stream decodes successive top-level JSON values and merges consecutive
// arrays into one. A lone non-array value is returned unchanged so the
// caller can report it. Input that does not decode is returned as-is for
// the caller's parser to reject.
type Stream struct{}

// Repair merges a sequence of JSON arrays into one array literal.
func (Stream) Repair(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	dec := json.NewDecoder(strings.NewReader(trimmed))

	var (
		values []json.RawMessage
		arrays int
	)
	for {
		var v json.RawMessage
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return trimmed, nil
		}
		values = append(values, v)
		if isArray(v) {
			arrays++
		}
	}
	if len(values) <= 1 || arrays != len(values) {
		return trimmed, nil
	}

	var elems []json.RawMessage
	for _, v := range values {
		var part []json.RawMessage
		if err := json.Unmarshal(v, &part); err != nil {
			return "", fmt.Errorf("repair: split array: %w", err)
		}
		elems = append(elems, part...)
	}
	if elems == nil {
		elems = []json.RawMessage{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(elems); err != nil {
		return "", fmt.Errorf("repair: join arrays: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func isArray(v json.RawMessage) bool {
	b := bytes.TrimSpace(v)
	return len(b) > 0 && b[0] == '['
}
