package aggregate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/ctngresults/internal/filter"
	"github.com/crimson-sun/ctngresults/internal/model"
)

func records(t *testing.T, s string) []model.Record {
	t.Helper()
	recs, err := filter.Decode([]byte(s))
	require.NoError(t, err)
	return recs
}

func TestMaxConvergeTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"empty", `[]`, 0},
		{"single logger", `[{"entity_type":"Logger","converge_time":1.5}]`, 1.5},
		{"max of several", `[{"entity_type":"Logger","converge_time":1.5},{"entity_type":"Logger","converge_time":3.25},{"entity_type":"Logger","converge_time":2}]`, 3.25},
		{"CA ignored", `[{"entity_type":"CA","converge_time":9},{"entity_type":"Logger","converge_time":1}]`, 1},
		{"numeric string", `[{"entity_type":"Logger","converge_time":" 4.5 "}]`, 4.5},
		{"bad string ignored", `[{"entity_type":"Logger","converge_time":"fast"},{"entity_type":"Logger","converge_time":0.5}]`, 0.5},
		{"missing field ignored", `[{"entity_type":"Logger"}]`, 0},
		{"null ignored", `[{"entity_type":"Logger","converge_time":null}]`, 0},
		{"bool ignored", `[{"entity_type":"Logger","converge_time":true}]`, 0},
		{"negative never wins", `[{"entity_type":"Logger","converge_time":-3}]`, 0},
		{"nan ignored", `[{"entity_type":"Logger","converge_time":"NaN"},{"entity_type":"Logger","converge_time":0.2}]`, 0.2},
		{"lowercase entity ignored", `[{"entity_type":"logger","converge_time":5}]`, 0},
		{"non-object element", `[7,{"entity_type":"Logger","converge_time":2}]`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxConvergeTime(records(t, tt.in)))
		})
	}
}

func TestMaxConvergeTimeMonotonic(t *testing.T) {
	base := []map[string]any{
		{"entity_type": "Logger", "converge_time": 2.0},
		{"entity_type": "Logger", "converge_time": 1.0},
	}
	prev := 0.0
	for _, next := range []float64{0.5, 2.5, 1.0, 7.75} {
		base = append(base, map[string]any{"entity_type": "Logger", "converge_time": next})
		data, err := json.Marshal(base)
		require.NoError(t, err)

		got := MaxConvergeTime(records(t, string(data)))
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
	assert.Equal(t, 7.75, prev)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		return p
	}

	t.Run("cleaned file", func(t *testing.T) {
		p := write("ok.json", `[{"monitor_id":"M1","entity_type":"Logger","converge_time":1.5}]`)
		v, err := File(p)
		require.NoError(t, err)
		assert.Equal(t, 1.5, v)
	})

	t.Run("top-level object", func(t *testing.T) {
		p := write("obj.json", `{"entity_type":"Logger","converge_time":3}`)
		v, err := File(p)
		assert.ErrorIs(t, err, filter.ErrNotList)
		assert.Equal(t, 0.0, v)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		p := write("bad.json", `[1][2]`)
		v, err := File(p)
		assert.ErrorIs(t, err, filter.ErrSyntax)
		assert.Equal(t, 0.0, v)
	})

	t.Run("invalid UTF-8", func(t *testing.T) {
		p := write("latin.json", "[{\"entity_type\":\"Logger\",\"converge_time\":4,\"n\":\"\xff\"}]")
		v, err := File(p)
		assert.ErrorIs(t, err, filter.ErrEncoding)
		assert.Equal(t, 0.0, v)
	})

	t.Run("missing file", func(t *testing.T) {
		v, err := File(filepath.Join(dir, "gone.json"))
		assert.Error(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("does not modify file", func(t *testing.T) {
		content := `[{"entity_type":"Logger","converge_time":"2.5"}]`
		p := write("ro.json", content)
		_, err := File(p)
		require.NoError(t, err)
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	})
}
