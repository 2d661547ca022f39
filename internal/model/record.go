package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Field names the pipeline reads. All other fields are carried through untouched.
const (
	FieldMonitorID    = "monitor_id"
	FieldEntityType   = "entity_type"
	FieldConvergeTime = "converge_time"

	// EntityLogger is the entity_type value whose converge_time is aggregated.
	EntityLogger = "Logger"

	monitorPrefix = "M"
)

// Record is one testbed event entry. The original JSON bytes are retained so
// a kept record is written back with its keys and number literals unchanged.
type Record struct {
	Raw    json.RawMessage
	fields map[string]json.RawMessage
	object bool
}

// NewRecord wraps raw JSON. Values that are not JSON objects are still
// valid records; they simply expose no fields.
func NewRecord(raw json.RawMessage) Record {
	r := Record{Raw: raw}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			r.fields = fields
			r.object = true
		}
	}
	return r
}

// IsObject reports whether the record is a JSON object.
func (r Record) IsObject() bool { return r.object }

// Field returns the raw value of an exact (case-sensitive) key.
func (r Record) Field(name string) (json.RawMessage, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// String returns the value of a string field. ok is false when the key is
// absent or holds a non-string value.
func (r Record) String(name string) (string, bool) {
	v, ok := r.fields[name]
	if !ok || len(v) == 0 || v[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// MonitorIDStatus classifies a record's monitor_id field.
type MonitorIDStatus int

const (
	// MonitorIDMissing covers an absent field, a non-string value, or a
	// string without the "M" prefix.
	MonitorIDMissing MonitorIDStatus = iota
	// MonitorIDValid means the suffix parsed as an integer. Suffixes beyond
	// the int64 range are clamped, which keeps their ordering against any
	// threshold.
	MonitorIDValid
	// MonitorIDMalformed means the value starts with "M" but the suffix is not
	// a plain base-10 integer. Digit separators such as "1_0" are malformed.
	MonitorIDMalformed
)

// MonitorID extracts the numeric part of a "M<integer>" monitor identifier.
// raw is the string value as found in the record (empty when missing).
func (r Record) MonitorID() (id int64, raw string, status MonitorIDStatus) {
	s, ok := r.String(FieldMonitorID)
	if !ok || !strings.HasPrefix(s, monitorPrefix) {
		return 0, s, MonitorIDMissing
	}
	suffix := strings.TrimSpace(strings.TrimPrefix(s, monitorPrefix))
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, s, MonitorIDMalformed
	}
	return n, s, MonitorIDValid
}

// IsLogger reports whether entity_type is exactly "Logger".
func (r Record) IsLogger() bool {
	s, ok := r.String(FieldEntityType)
	return ok && s == EntityLogger
}

// ConvergeTime coerces converge_time to a float. JSON numbers and numeric
// strings are accepted; booleans, null and anything else report ok=false.
func (r Record) ConvergeTime() (float64, bool) {
	v, ok := r.fields[FieldConvergeTime]
	if !ok {
		return 0, false
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	var anyVal any
	if err := dec.Decode(&anyVal); err != nil {
		return 0, false
	}
	switch x := anyVal.(type) {
	case json.Number:
		n = x
	case string:
		n = json.Number(strings.TrimSpace(x))
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}
