package otel_test

import (
	"context"
	"testing"

	"github.com/louisbranch/landstalker-bingo/internal/platform/otel"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("BINGO_OTEL_ENDPOINT", "")
	t.Setenv("BINGO_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("BINGO_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("BINGO_OTEL_ENABLED", "FALSE")

	settings, err := otel.LoadSettings()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.Active() {
		t.Fatal("expected tracing to be disabled")
	}
	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so no actual export happens.
	t.Setenv("BINGO_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("BINGO_OTEL_ENABLED", "")
	t.Setenv("BINGO_OTEL_SAMPLE_RATIO", "0.5")

	shutdown, err := otel.Setup(context.Background(), "bingo-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Nothing was recorded, so shutdown has nothing to flush.
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestLoadSettingsRejectsBadRatio(t *testing.T) {
	for _, raw := range []string{"1.5", "-0.1", "half"} {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("BINGO_OTEL_SAMPLE_RATIO", raw)
			if _, err := otel.LoadSettings(); err == nil {
				t.Fatalf("expected error for ratio %q", raw)
			}
			if _, err := otel.Setup(context.Background(), "bingo-test"); err == nil {
				t.Fatalf("expected setup error for ratio %q", raw)
			}
		})
	}
}

func TestSetup_NoopShutdownIgnoresCancelledContext(t *testing.T) {
	t.Setenv("BINGO_OTEL_ENDPOINT", "")
	t.Setenv("BINGO_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "noop-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}
