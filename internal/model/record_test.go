package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitorID(t *testing.T) {
	tests := []struct {
		in         string
		wantID     int64
		wantRaw    string
		wantStatus MonitorIDStatus
	}{
		{`{"monitor_id":"M12"}`, 12, "M12", MonitorIDValid},
		{`{"monitor_id":"M007"}`, 7, "M007", MonitorIDValid},
		{`{"monitor_id":"M+4"}`, 4, "M+4", MonitorIDValid},
		{`{"monitor_id":"M 4 "}`, 4, "M 4 ", MonitorIDValid},
		{`{"monitor_id":"M-2"}`, -2, "M-2", MonitorIDValid},
		{`{"monitor_id":"M1.5"}`, 0, "M1.5", MonitorIDMalformed},
		{`{"monitor_id":"M"}`, 0, "M", MonitorIDMalformed},
		{`{"monitor_id":"M1_0"}`, 0, "M1_0", MonitorIDMalformed},
		{`{"monitor_id":"M-99999999999999999999"}`, math.MinInt64, "M-99999999999999999999", MonitorIDValid},
		{`{"monitor_id":"M99999999999999999999"}`, math.MaxInt64, "M99999999999999999999", MonitorIDValid},
		{`{"monitor_id":"X1"}`, 0, "X1", MonitorIDMissing},
		{`{"monitor_id":1}`, 0, "", MonitorIDMissing},
		{`{"monitor_id":null}`, 0, "", MonitorIDMissing},
		{`{}`, 0, "", MonitorIDMissing},
		{`"M1"`, 0, "", MonitorIDMissing},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, raw, status := NewRecord(json.RawMessage(tt.in)).MonitorID()
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantRaw, raw)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestRecordObject(t *testing.T) {
	assert.True(t, NewRecord(json.RawMessage(` {"a":1}`)).IsObject())
	assert.False(t, NewRecord(json.RawMessage(`[1]`)).IsObject())
	assert.False(t, NewRecord(json.RawMessage(`"x"`)).IsObject())
}

func TestIsLogger(t *testing.T) {
	assert.True(t, NewRecord(json.RawMessage(`{"entity_type":"Logger"}`)).IsLogger())
	assert.False(t, NewRecord(json.RawMessage(`{"entity_type":"CA"}`)).IsLogger())
	assert.False(t, NewRecord(json.RawMessage(`{"entity_type":1}`)).IsLogger())
	assert.False(t, NewRecord(json.RawMessage(`{}`)).IsLogger())
}

func TestConvergeTime(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{`{"converge_time":1.5}`, 1.5, true},
		{`{"converge_time":3}`, 3, true},
		{`{"converge_time":"2.25"}`, 2.25, true},
		{`{"converge_time":"1e3"}`, 1000, true},
		{`{"converge_time":""}`, 0, false},
		{`{"converge_time":"abc"}`, 0, false},
		{`{"converge_time":[1]}`, 0, false},
		{`{"converge_time":false}`, 0, false},
		{`{"converge_time":true}`, 0, false},
		{`{}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NewRecord(json.RawMessage(tt.in)).ConvergeTime()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReportCounts(t *testing.T) {
	r := Report{Outcomes: []FileOutcome{
		{Status: StatusProcessed},
		{Status: StatusSkipped},
		{Status: StatusProcessed},
	}}
	assert.Equal(t, 2, r.Processed())
	assert.Equal(t, 1, r.Skipped())
}
