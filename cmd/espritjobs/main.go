package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"espritjobs/cmd/espritjobs/commands"
	"espritjobs/lib/serviceutil"
	"espritjobs/lib/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	telemetry.InitSlog(os.Stderr, false)

	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}

	ctx, cancel := serviceutil.SignalContext(context.Background())

	tel, err := telemetry.SetupFromEnv(ctx, "espritjobs")
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	if tel.Enabled() {
		telemetry.InstrumentPerfStats(ctx, time.Second*15)
	}

	err = commands.ExecuteContext(ctx)
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), time.Second*5)
	defer done()
	if shutdownErr := tel.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}

	if err != nil {
		serviceutil.Fatal("espritjobs failed", err)
	}
}
