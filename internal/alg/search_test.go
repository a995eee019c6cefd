package alg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchLeft(t *testing.T) {
	t.Parallel()

	arr := []int64{1, 3, 5, 7, 9}

	tests := []struct {
		value    int64
		expected int
	}{
		{-1, -1},
		{1, 0},
		{2, 0},
		{4, 1},
		{6, 2},
		{8, 3},
		{9, 4},
		{10, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SearchLeft(arr, tt.value), "SearchLeft(%d)", tt.value)
	}
}

func TestSearchRight(t *testing.T) {
	t.Parallel()

	arr := []int64{1, 3, 5, 7, 9}

	tests := []struct {
		value    int64
		expected int
	}{
		{-1, 0},
		{1, 0},
		{2, 1},
		{4, 2},
		{6, 3},
		{8, 4},
		{9, 4},
		{10, -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SearchRight(arr, tt.value), "SearchRight(%d)", tt.value)
	}
}

func TestSearchEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, SearchLeft(nil, 5))
	assert.Equal(t, -1, SearchRight(nil, 5))
}
