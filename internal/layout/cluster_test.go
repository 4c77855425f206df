package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDBSCAN1D(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		eps      float64
		minPts   int
		expected []int
	}{
		{
			name:     "empty",
			values:   nil,
			eps:      5,
			minPts:   2,
			expected: []int{},
		},
		{
			name:     "two separated clusters",
			values:   []float64{300, 10, 12, 302, 11, 301},
			eps:      5,
			minPts:   3,
			expected: []int{1, 0, 0, 1, 0, 1},
		},
		{
			name:     "isolated point is noise",
			values:   []float64{10, 11, 12, 150},
			eps:      5,
			minPts:   3,
			expected: []int{0, 0, 0, noise},
		},
		{
			name:     "border point joins nearest cluster",
			values:   []float64{10, 11, 12, 16},
			eps:      5,
			minPts:   4,
			expected: []int{0, 0, 0, 0},
		},
		{
			name:     "chain of core points forms one cluster",
			values:   []float64{0, 4, 8, 12, 16, 20},
			eps:      4,
			minPts:   2,
			expected: []int{0, 0, 0, 0, 0, 0},
		},
		{
			name:     "nothing dense enough",
			values:   []float64{0, 100, 200},
			eps:      10,
			minPts:   2,
			expected: []int{noise, noise, noise},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dbscan1D(tt.values, tt.eps, tt.minPts)
			assert.Equal(t, tt.expected, got)
		})
	}
}
