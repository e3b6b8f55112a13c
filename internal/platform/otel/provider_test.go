package otel

import (
	"context"
	"testing"
)

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv(envEndpoint, "")

	shutdown, err := Setup(context.Background(), "tracker")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected a shutdown function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestSetupDisabledExplicitly(t *testing.T) {
	t.Setenv(envEndpoint, "http://localhost:4318")
	t.Setenv(envEnabled, "false")

	shutdown, err := Setup(context.Background(), "tracker")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestSamplerRatio(t *testing.T) {
	tests := []struct {
		name  string
		ratio string
	}{
		{name: "empty defaults to always", ratio: ""},
		{name: "invalid defaults to always", ratio: "not-a-number"},
		{name: "out of range defaults to always", ratio: "1.5"},
		{name: "valid ratio accepted", ratio: "0.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envSampleRatio, tt.ratio)
			if sampler() == nil {
				t.Fatal("expected a sampler")
			}
		})
	}
}
