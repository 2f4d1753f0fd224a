package tokengate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tokengate/tokengate"
)

func TestFormatReset(t *testing.T) {
	tests := []struct {
		until time.Duration
		want  string
	}{
		{-5 * time.Minute, "now"},
		{0, "now"},
		{30 * time.Second, "1m"},
		{time.Minute, "1m"},
		{45 * time.Minute, "45m"},
		{time.Hour, "1h 0m"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
		{26 * time.Hour, "26h 0m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tokengate.FormatReset(tt.until), "FormatReset(%s)", tt.until)
	}
}
