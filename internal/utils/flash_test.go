package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashRoundTrip(t *testing.T) {
	tok, err := SignFlash("s3cret", []string{"Unknown email.", "Booking unavailable."}, time.Minute)
	require.NoError(t, err)

	msgs, err := ParseFlash("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, []string{"Unknown email.", "Booking unavailable."}, msgs)
}

func TestParseFlashRejects(t *testing.T) {
	good, err := SignFlash("s3cret", []string{"hi"}, time.Minute)
	require.NoError(t, err)
	expired, err := SignFlash("s3cret", []string{"hi"}, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", good},
		{"expired", "s3cret", expired},
		{"garbage", "s3cret", "not.a.jwt"},
		{"empty", "s3cret", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlash(tt.secret, tt.token)
			assert.ErrorIs(t, err, ErrInvalidFlash)
		})
	}
}
