package walker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMissing(t *testing.T) {
	const base = "https://espritconnect.com"

	testCases := []struct {
		url     string
		missing bool
	}{
		{url: "https://espritconnect.com/jobs/795", missing: false},
		{url: "https://espritconnect.com/jobs/795?tab=details", missing: false},
		{url: "https://espritconnect.com", missing: true},
		{url: "https://espritconnect.com/", missing: true},
		{url: "https://espritconnect.com/feed", missing: true},
		{url: "https://espritconnect.com/en/feed", missing: true},
		{url: "https://espritconnect.com/jobs", missing: true},
		{url: "https://espritconnect.com/jobs/", missing: true},
		{url: "https://espritconnect.com/login", missing: true},
		{url: "https://espritconnect.com/jobs/795/", missing: true},
	}

	for _, test := range testCases {
		t.Run(test.url, func(t *testing.T) {
			require.Equal(t, test.missing, IsMissing(test.url, base))
			require.Equal(t, test.missing, IsMissing(test.url, base+"/"))
		})
	}
}
