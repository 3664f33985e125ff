package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledTelemetry(t *testing.T) {
	var tel Telemetry
	require.False(t, tel.Enabled())
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestTransportSelection(t *testing.T) {
	kind, endpoint, err := OtlpConnConfig{GrpcEndpoint: "http://localhost:4317", HttpEndpoint: "http://localhost:4318"}.transport()
	require.NoError(t, err)
	require.Equal(t, "grpc", kind)
	require.Equal(t, "http://localhost:4317", endpoint)

	kind, _, err = OtlpConnConfig{HttpEndpoint: "http://localhost:4318"}.transport()
	require.NoError(t, err)
	require.Equal(t, "http", kind)

	_, _, err = OtlpConnConfig{}.transport()
	require.Error(t, err)
}

func TestInitSlog(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buf bytes.Buffer
	InitSlog(&buf, false)
	slog.Debug("hidden")
	slog.Info("shown", "job_id", 795)
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "job_id=795")

	buf.Reset()
	InitSlog(&buf, true)
	slog.Debug("visible")
	require.Contains(t, buf.String(), "visible")
}
