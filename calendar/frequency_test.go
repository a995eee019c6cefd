package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token    string
		expected DataFrequency
	}{
		{"M1", M1},
		{"M30", M30},
		{"H1", H1},
		{"H12", H12},
		{"D", D},
		{"W", W},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()
			f, err := ParseFrequency(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
			assert.Equal(t, tt.token, f.String())
		})
	}
}

func TestParseFrequencyInvalid(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", "M3", "H5", "MN1", "daily"} {
		_, err := ParseFrequency(token)
		assert.ErrorIs(t, err, ErrInvalidFrequency, "token %q", token)
	}
}

func TestFrequencyOrdering(t *testing.T) {
	t.Parallel()

	freqs := Frequencies()
	for i := 1; i < len(freqs); i++ {
		assert.Greater(t, freqs[i], freqs[i-1])
	}

	// Coarser frequencies compare greater.
	assert.True(t, H1 > M30)
	assert.True(t, D > H12)
	assert.True(t, W > D)
}

func TestFrequencyDurations(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(60), M1.Seconds())
	assert.Equal(t, 4*time.Hour, H4.Duration())
	assert.Equal(t, int64(86400), D.Seconds())
	// A week spans five trading days.
	assert.Equal(t, 5*D.Seconds(), W.Seconds())
}

func TestFrequencyBucket(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1min", M1.Bucket())
	assert.Equal(t, "15min", M15.Bucket())
	assert.Equal(t, "4h", H4.Bucket())
	assert.Equal(t, "24h", D.Bucket())
	assert.Equal(t, "W-FRI", W.Bucket())
}
