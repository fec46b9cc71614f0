package telemetry

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedact(t *testing.T) {
	require.Equal(
		t,
		"username=someone&password=<redacted>&remember_me=false",
		redact("username=someone&password=hunter2&remember_me=false"),
	)
	require.Equal(t, "no secrets here", redact("no secrets here"))
}

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("X-Request-Token", "abc")
	headers.Add("Accept", "*/*")
	require.Equal(t, "Accept: */*\nX-Request-Token: abc", formatHeaders(headers))
}
