package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestElapsed(t *testing.T) {
	require.Equal(t, "3.2 seconds", Elapsed(3200*time.Millisecond))
	require.Equal(t, "0.0 seconds", Elapsed(0))
	require.Equal(t, "1.5 minutes", Elapsed(90*time.Second))
	require.Equal(t, "2.0 hours", Elapsed(2*time.Hour))
}

func TestCount(t *testing.T) {
	require.Equal(t, "0 videos", Count(0, "video"))
	require.Equal(t, "1 video", Count(1, "video"))
	require.Equal(t, "5 videos", Count(5, "video"))
}
