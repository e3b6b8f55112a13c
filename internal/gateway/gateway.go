// Package gateway connects the tracker to a session host over a websocket,
// journals what the host sends, and feeds the progression engine. The host
// stream is replayed from the journal on startup, so the engine state
// survives restarts without the host resending anything.
package gateway

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/shattered.front/internal/platform/errors"
	"github.com/louisbranch/shattered.front/internal/progression/domain"
	"github.com/louisbranch/shattered.front/internal/progression/engine"
	"github.com/louisbranch/shattered.front/internal/storage"
	"github.com/louisbranch/shattered.front/internal/telemetry"
)

var tracer trace.Tracer = otel.Tracer("github.com/louisbranch/shattered.front/internal/gateway")

const defaultReconnectDelay = 5 * time.Second

// Config assembles a gateway.
type Config struct {
	// URL is the session host websocket endpoint.
	URL string
	// Slot names the participant this tracker follows. Sent to the host
	// right after dialing; empty skips the announcement.
	Slot   string
	Engine *engine.Engine
	// Events and Locations persist the host stream; both are required.
	Events    storage.EventStore
	Locations storage.LocationStore
	// Emitter is optional; nil discards telemetry.
	Emitter *telemetry.Emitter
	// ReconnectDelay is the pause between dial attempts. Zero means the
	// default of five seconds.
	ReconnectDelay time.Duration
}

// Gateway owns the websocket session with the host.
type Gateway struct {
	url            string
	slot           string
	engine         *engine.Engine
	events         storage.EventStore
	locations      storage.LocationStore
	emitter        *telemetry.Emitter
	reconnectDelay time.Duration
}

// New validates the config and builds a gateway.
func New(cfg Config) (*Gateway, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("gateway url is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Events == nil || cfg.Locations == nil {
		return nil, fmt.Errorf("event and location stores are required")
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	return &Gateway{
		url:            cfg.URL,
		slot:           cfg.Slot,
		engine:         cfg.Engine,
		events:         cfg.Events,
		locations:      cfg.Locations,
		emitter:        cfg.Emitter,
		reconnectDelay: delay,
	}, nil
}

// Bootstrap replays the persisted journal and checked-location set into the
// engine. Call once before Run.
func (g *Gateway) Bootstrap(ctx context.Context) error {
	events, err := g.events.ListEvents(ctx, 0, 0)
	if err != nil {
		return errors.Wrap(errors.CodeStorageFailure, "replay event journal", err)
	}
	items := make([]domain.ReceivedItem, len(events))
	for i, event := range events {
		items[i] = event.Received()
	}
	g.engine.ApplyItems(items...)

	checked, err := g.locations.ListLocations(ctx)
	if err != nil {
		return errors.Wrap(errors.CodeStorageFailure, "replay checked locations", err)
	}
	g.engine.MarkLocations(checked...)
	return nil
}

// Run dials the host and processes frames until ctx is canceled,
// redialing after connection loss.
func (g *Gateway) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.serveOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("gateway: session ended: %v", err)
			_ = g.emitter.Emit(ctx, storage.TelemetryEvent{
				Severity: string(telemetry.SeverityWarn),
				Code:     string(errors.CodeGatewayDisconnected),
				Message:  err.Error(),
			})
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.reconnectDelay):
		}
	}
}

func (g *Gateway) serveOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, g.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", g.url, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	// Unblock ReadMessage on cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	if g.slot != "" {
		payload, err := encodeConnect(g.slot)
		if err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return fmt.Errorf("announce slot: %w", err)
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
		frame, err := decodeFrame(data)
		if err != nil {
			_ = g.emitter.Warn(ctx, string(errors.CodeGatewayBadFrame), err.Error())
			continue
		}
		if err := g.handleFrame(ctx, frame); err != nil {
			return err
		}
	}
}

func (g *Gateway) handleFrame(ctx context.Context, frame Frame) error {
	switch frame.Cmd {
	case CmdConnected:
		log.Printf("gateway: session established")
		return nil
	case CmdItems:
		return g.applyItemsFrame(ctx, frame)
	case CmdChecked:
		return g.applyCheckedFrame(ctx, frame)
	default:
		// Hosts ship commands this tracker does not consume.
		return nil
	}
}

// applyItemsFrame journals and applies the portion of the frame the
// tracker has not seen. Hosts replay the item stream from frame.Index on
// reconnect; entries below the local count have already been folded, so
// only the novel suffix is appended. Applying the same frame twice is a
// no-op.
func (g *Gateway) applyItemsFrame(ctx context.Context, frame Frame) error {
	ctx, span := tracer.Start(ctx, "gateway.applyItems", trace.WithAttributes(
		attribute.Int("frame.index", frame.Index),
		attribute.Int("frame.items", len(frame.Items)),
	))
	defer span.End()

	localCount := g.engine.ItemCount()
	novelStart := localCount - frame.Index
	if novelStart < 0 {
		// Gap between journal and replay start. Apply the whole frame and
		// flag it; the host is the source of truth.
		_ = g.emitter.Warn(ctx, string(errors.CodeGatewayBadFrame),
			fmt.Sprintf("item frame index %d skips ahead of local count %d", frame.Index, localCount))
		novelStart = 0
	}
	if novelStart >= len(frame.Items) {
		return nil
	}

	novel := frame.Items[novelStart:]
	events := make([]storage.ReceivedEvent, len(novel))
	items := make([]domain.ReceivedItem, len(novel))
	for i, wire := range novel {
		received := wire.Received()
		items[i] = received
		events[i] = storage.ReceivedEvent{
			Item:     received.Item,
			Sender:   received.Sender,
			Location: received.Location,
			Flags:    received.Flags,
		}
	}
	if err := g.events.AppendEvents(ctx, events); err != nil {
		return errors.Wrap(errors.CodeStorageFailure, "journal received items", err)
	}
	g.engine.ApplyItems(items...)
	span.SetAttributes(attribute.Int("frame.applied", len(items)))
	return nil
}

func (g *Gateway) applyCheckedFrame(ctx context.Context, frame Frame) error {
	if len(frame.Locations) == 0 {
		return nil
	}
	ids := make([]domain.LocationID, len(frame.Locations))
	for i, id := range frame.Locations {
		ids[i] = domain.LocationID(id)
	}
	if err := g.locations.MarkLocations(ctx, ids); err != nil {
		return errors.Wrap(errors.CodeStorageFailure, "persist checked locations", err)
	}
	g.engine.MarkLocations(ids...)
	return nil
}
