// Package tracker parses tracker flags and launches the campaign tracker.
package tracker

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/louisbranch/shattered.front/internal/gateway"
	entrypoint "github.com/louisbranch/shattered.front/internal/platform/cmd"
	"github.com/louisbranch/shattered.front/internal/progression/engine"
	"github.com/louisbranch/shattered.front/internal/progression/location"
	"github.com/louisbranch/shattered.front/internal/progression/tech"
	"github.com/louisbranch/shattered.front/internal/session"
	"github.com/louisbranch/shattered.front/internal/storage"
	"github.com/louisbranch/shattered.front/internal/storage/sqlite"
	"github.com/louisbranch/shattered.front/internal/telemetry"
)

// Config holds tracker command configuration.
type Config struct {
	ServerURL string `env:"SHATTERED_FRONT_SERVER_URL" envDefault:"ws://localhost:38281"`
	Slot      string `env:"SHATTERED_FRONT_SLOT"`
	DBPath    string `env:"SHATTERED_FRONT_DB" envDefault:"tracker.db"`
	SetupPath string `env:"SHATTERED_FRONT_SETUP" envDefault:"setup.json"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "The session host websocket URL")
	fs.StringVar(&cfg.Slot, "slot", cfg.Slot, "The participant slot this tracker follows")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The tracker SQLite database path")
	fs.StringVar(&cfg.SetupPath, "setup", cfg.SetupPath, "The session setup payload path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the campaign tracker.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceTracker, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	payload, err := os.ReadFile(cfg.SetupPath)
	if err != nil {
		return fmt.Errorf("read setup payload: %w", err)
	}
	setup, err := session.Parse(payload)
	if err != nil {
		return err
	}
	hierarchy, err := setup.BuildHierarchy()
	if err != nil {
		return err
	}

	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open tracker storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close tracker storage: %v", err)
		}
	}()

	emitter := telemetry.NewEmitter(store)
	eng, err := engine.New(engine.Config{
		Hierarchy:     hierarchy,
		Catalog:       tech.DefaultCatalog(),
		Codec:         location.DefaultCodec(),
		Options:       setup.Options(),
		SchemaVersion: setup.SchemaVersion,
		Locations:     setup.LocationIDs(),
		Diagnostics: func(code, message string) {
			if err := emitter.Emit(ctx, storage.TelemetryEvent{
				Severity: string(telemetry.SeverityWarn),
				Code:     code,
				Message:  message,
			}); err != nil {
				log.Printf("emit diagnostic %s: %v", code, err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("build progression engine: %w", err)
	}

	gw, err := gateway.New(gateway.Config{
		URL:       cfg.ServerURL,
		Slot:      cfg.Slot,
		Engine:    eng,
		Events:    store,
		Locations: store,
		Emitter:   emitter,
	})
	if err != nil {
		return fmt.Errorf("build gateway: %w", err)
	}
	if err := gw.Bootstrap(ctx); err != nil {
		return err
	}
	log.Printf("tracker ready: %d missions, %d journaled items",
		hierarchy.MissionCount(), eng.ItemCount())
	return gw.Run(ctx)
}
