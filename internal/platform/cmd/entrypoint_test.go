package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

func TestParseConfigRejectsNil(t *testing.T) {
	if err := ParseConfig[struct{}](nil); err == nil {
		t.Fatal("expected error for nil config target")
	}
}

func TestParseArgs(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	value := fs.String("value", "default", "")

	if err := ParseArgs(fs, []string{"-value", "override"}); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if *value != "override" {
		t.Fatalf("expected override, got %q", *value)
	}
	if err := ParseArgs(nil, nil); err == nil {
		t.Fatal("expected error for nil flag set")
	}
}

func TestRunWithTelemetryValidation(t *testing.T) {
	noop := func(context.Context) error { return nil }

	if err := RunWithTelemetry(context.Background(), "  ", noop); err == nil {
		t.Fatal("expected error for blank service name")
	}
	if err := RunWithTelemetry(context.Background(), ServiceTracker, nil); err == nil {
		t.Fatal("expected error for nil run function")
	}
}

func TestRunWithTelemetryPropagatesRunError(t *testing.T) {
	wantErr := errors.New("run failed")
	err := RunWithTelemetry(context.Background(), ServiceTracker, func(context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected run error propagated, got %v", err)
	}
}

func TestRunWithTelemetryRunsToCompletion(t *testing.T) {
	ran := false
	err := RunWithTelemetry(context.Background(), ServiceTracker, func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ran {
		t.Fatal("expected run function to execute")
	}
}
