package diag

import (
	"strings"
	"testing"

	"src.servo.sh/pkg/testutil"
)

func setCulpritMarkers(t *testing.T, start, end string) {
	testutil.Set(t, &culpritLineBegin, start)
	testutil.Set(t, &culpritLineEnd, end)
}

func setMessageMarkers(t *testing.T, start, end string) {
	testutil.Set(t, &messageStart, start)
	testutil.Set(t, &messageEnd, end)
}

func lines(lines ...string) string {
	return strings.Join(lines, "\n")
}
