package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNow(t *testing.T) {
	now := Now()
	require.Equal(t, Location, now.Location())

	_, offset := now.Zone()
	require.Equal(t, int((time.Hour).Seconds()), offset)
	require.WithinDuration(t, time.Now(), now, time.Second)
}
