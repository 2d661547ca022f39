// Package aggregate reduces a cleaned result file to the largest
// convergence time reported for Logger entities.
package aggregate

import (
	"fmt"
	"os"

	"github.com/crimson-sun/ctngresults/internal/filter"
	"github.com/crimson-sun/ctngresults/internal/model"
)

// MaxConvergeTime returns the largest usable converge_time among Logger
// records, or 0 when there is none. Negative values never win over the
// zero starting point.
func MaxConvergeTime(records []model.Record) float64 {
	max := 0.0
	for _, r := range records {
		if !r.IsLogger() {
			continue
		}
		v, ok := r.ConvergeTime()
		if ok && v > max {
			max = v
		}
	}
	return max
}

// File reads path without modifying it and returns its Logger maximum.
// Any read or parse failure yields 0 together with the cause; callers
// treat the error as advisory.
func File(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("aggregate: read %s: %w", path, err)
	}
	records, err := filter.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("aggregate: %s: %w", path, err)
	}
	return MaxConvergeTime(records), nil
}
