// Package extract resolves vehicle seat positions for creatures by chaining
// the client tables to the creature's model and evaluating its skeleton.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/samcharles93/seatmap/internal/archive"
	"github.com/samcharles93/seatmap/internal/datastores"
	"github.com/samcharles93/seatmap/internal/logger"
	"github.com/samcharles93/seatmap/internal/skeleton"
	"github.com/samcharles93/seatmap/internal/worlddb"
	"github.com/samcharles93/seatmap/pkg/dbc"
	"github.com/samcharles93/seatmap/pkg/m2"
)

// ErrNoVehicle is returned for a creature without a vehicle id.
var ErrNoVehicle = errors.New("extract: creature has no vehicle")

// ErrUnknownTable is returned by Table for names with no registered layout.
var ErrUnknownTable = errors.New("extract: unknown table")

type Options struct {
	// ScaleOverride replaces the display scale when non-zero.
	ScaleOverride float32
	// Evaluator options, e.g. skeleton.WithView.
	Evaluator []skeleton.Option
}

// Result is one placed seat.
type Result struct {
	Entry           uint32  `json:"entry" yaml:"entry" cbor:"entry"`
	Name            string  `json:"name" yaml:"name" cbor:"name"`
	DisplayID       uint32  `json:"display_id" yaml:"display_id" cbor:"display_id"`
	Model           string  `json:"model" yaml:"model" cbor:"model"`
	ModelHash       string  `json:"model_hash" yaml:"model_hash" cbor:"model_hash"`
	SeatIndex       int     `json:"seat_index" yaml:"seat_index" cbor:"seat_index"`
	SeatID          uint32  `json:"seat_id" yaml:"seat_id" cbor:"seat_id"`
	AttachmentID    int32   `json:"attachment_id" yaml:"attachment_id" cbor:"attachment_id"`
	ModelAttachment string  `json:"model_attachment,omitempty" yaml:"model_attachment,omitempty" cbor:"model_attachment,omitempty"`
	Override        bool    `json:"override,omitempty" yaml:"override,omitempty" cbor:"override,omitempty"`
	Fallback        bool    `json:"fallback" yaml:"fallback" cbor:"fallback"`
	X               float32 `json:"x" yaml:"x" cbor:"x"`
	Y               float32 `json:"y" yaml:"y" cbor:"y"`
	Z               float32 `json:"z" yaml:"z" cbor:"z"`
}

// Source supplies the creatures to process and their seat overrides.
type Source interface {
	Creatures(ctx context.Context) ([]worlddb.Creature, error)
	VehicleSeats(ctx context.Context, vehicleID uint32) (map[int]worlddb.Seat, error)
}

type Summary struct {
	RunID     string        `json:"run_id"`
	Creatures int           `json:"creatures"`
	Results   int           `json:"results"`
	Fallbacks int           `json:"fallbacks"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed"`
}

type loadedModel struct {
	model *m2.Model
	hash  string
}

// Tables decodes registered tables on first use and keeps them.
type Tables struct {
	provider archive.Provider
	log      logger.Logger

	mu     sync.Mutex
	tables map[string]*dbc.Table
}

func NewTables(provider archive.Provider, log logger.Logger) *Tables {
	if log == nil {
		log = logger.Discard()
	}
	return &Tables{provider: provider, log: log, tables: make(map[string]*dbc.Table)}
}

// Pipeline holds the decoded client tables. It is safe for concurrent use.
type Pipeline struct {
	*Tables
	opts Options

	Displays *dbc.Store[datastores.CreatureDisplayInfoEntry]
	Models   *dbc.Store[datastores.CreatureModelDataEntry]
	Vehicles *dbc.Store[datastores.VehicleEntry]
	Seats    *dbc.Store[datastores.VehicleSeatEntry]

	modelsMu sync.Mutex
	models   map[string]*loadedModel
}

// New loads the seat pipeline tables from provider.
func New(ctx context.Context, provider archive.Provider, log logger.Logger, opts Options) (*Pipeline, error) {
	p := &Pipeline{
		Tables: NewTables(provider, log),
		opts:   opts,
		models: make(map[string]*loadedModel),
	}

	var err error
	if p.Displays, err = loadStore[datastores.CreatureDisplayInfoEntry](ctx, p); err != nil {
		return nil, err
	}
	if p.Models, err = loadStore[datastores.CreatureModelDataEntry](ctx, p); err != nil {
		return nil, err
	}
	if p.Vehicles, err = loadStore[datastores.VehicleEntry](ctx, p); err != nil {
		return nil, err
	}
	if p.Seats, err = loadStore[datastores.VehicleSeatEntry](ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func loadStore[T any, P dbc.Entry[T]](ctx context.Context, p *Pipeline) (*dbc.Store[T], error) {
	t, err := p.Table(ctx, P(new(T)).TableName())
	if err != nil {
		return nil, err
	}
	return dbc.FromTable[T, P](t)
}

// Table decodes a registered table by canonical or short name. Decoded
// tables are kept for the life of the pipeline.
func (ts *Tables) Table(ctx context.Context, name string) (*dbc.Table, error) {
	meta, ok := dbc.Lookup(name)
	if !ok {
		meta, ok = dbc.LookupShort(name)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	key := strings.ToLower(meta.Name)

	ts.mu.Lock()
	t, ok := ts.tables[key]
	ts.mu.Unlock()
	if ok {
		return t, nil
	}

	short := dbc.ShortName(meta.Name)
	data, err := archive.ReadFile(ctx, ts.provider, meta.Name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", short, err)
	}
	t, err = dbc.Decode(meta, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", short, err)
	}

	log := ts.log.With("table", short)
	log.Debug("table loaded", "records", t.Len(), "bytes", len(data))
	if d := t.Duplicates(); d > 0 {
		log.Warn("duplicate record ids, last one kept", "duplicates", d)
	}

	ts.mu.Lock()
	if existing, ok := ts.tables[key]; ok {
		t = existing
	} else {
		ts.tables[key] = t
	}
	ts.mu.Unlock()
	return t, nil
}

// Model parses the model at path and returns it with its content digest.
func (p *Pipeline) Model(ctx context.Context, path string) (*m2.Model, string, error) {
	key := strings.ToLower(path)
	p.modelsMu.Lock()
	lm, ok := p.models[key]
	p.modelsMu.Unlock()
	if ok {
		return lm.model, lm.hash, nil
	}

	data, err := archive.ReadFile(ctx, p.provider, path)
	if err != nil {
		return nil, "", err
	}
	model, err := m2.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	lm = &loadedModel{model: model, hash: archive.Digest(data)}

	p.modelsMu.Lock()
	p.models[key] = lm
	p.modelsMu.Unlock()
	return lm.model, lm.hash, nil
}

// Creature places every seat of c's vehicle on each of its display models.
// overrides, keyed by seat index, replace the VehicleSeat placement.
func (p *Pipeline) Creature(ctx context.Context, c worlddb.Creature, overrides map[int]worlddb.Seat) ([]Result, error) {
	if c.VehicleID == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoVehicle, c.Entry)
	}
	vehicle, err := p.Vehicles.Get(c.VehicleID)
	if err != nil {
		return nil, err
	}

	var out []Result
	for _, displayID := range c.DisplayIDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := p.display(ctx, c, displayID, vehicle, overrides)
		if err != nil {
			return nil, fmt.Errorf("creature %d display %d: %w", c.Entry, displayID, err)
		}
		out = append(out, results...)
	}
	return out, nil
}

func (p *Pipeline) display(ctx context.Context, c worlddb.Creature, displayID uint32, vehicle *datastores.VehicleEntry, overrides map[int]worlddb.Seat) ([]Result, error) {
	display, err := p.Displays.Get(displayID)
	if err != nil {
		return nil, err
	}
	modelData, err := p.Models.Get(display.ModelID)
	if err != nil {
		return nil, err
	}
	path := modelData.ModelPath()
	if path == "" {
		return nil, fmt.Errorf("model data %d has no model name", modelData.ID)
	}
	model, hash, err := p.Model(ctx, path)
	if err != nil {
		return nil, err
	}
	eval, err := skeleton.NewEvaluator(model, p.opts.Evaluator...)
	if err != nil {
		return nil, err
	}

	displayScale := display.CreatureModelScale
	if p.opts.ScaleOverride != 0 {
		displayScale = p.opts.ScaleOverride
	}

	var out []Result
	for index, seatID := range vehicle.SeatID {
		req := skeleton.SeatRequest{
			ModelScale:   modelData.ModelScale,
			DisplayScale: displayScale,
		}
		override, overridden := overrides[index]
		switch {
		case overridden:
			seatID = override.SeatID
			req.AttachmentID = override.AttachmentID
			req.Offset = mgl32.Vec3(override.Offset)
		case seatID == 0:
			continue
		default:
			seat, err := p.Seats.Get(seatID)
			if err != nil {
				return nil, err
			}
			req.AttachmentID = seat.AttachmentID
			req.Offset = mgl32.Vec3(seat.AttachmentOffset)
		}

		pos, err := eval.SeatPosition(req)
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", index, err)
		}
		r := Result{
			Entry:        c.Entry,
			Name:         c.Name,
			DisplayID:    displayID,
			Model:        path,
			ModelHash:    hash,
			SeatIndex:    index,
			SeatID:       seatID,
			AttachmentID: req.AttachmentID,
			Override:     overridden,
			Fallback:     pos.Fallback,
			X:            pos.Position.X(),
			Y:            pos.Position.Y(),
			Z:            pos.Position.Z(),
		}
		if _, ok := skeleton.ModelAttachment(req.AttachmentID); ok {
			r.ModelAttachment = pos.ModelAttachment.String()
		}
		out = append(out, r)
	}
	return out, nil
}

// Run processes every creature from src and passes each result to emit.
// A creature that fails is logged and counted; the run continues.
func (p *Pipeline) Run(ctx context.Context, src Source, emit func(Result) error) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString()}
	log := p.log.With("run_id", sum.RunID)

	creatures, err := src.Creatures(ctx)
	if err != nil {
		return sum, fmt.Errorf("list creatures: %w", err)
	}
	log.Info("extract started", "creatures", len(creatures))

	for _, c := range creatures {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Creatures++

		overrides, err := src.VehicleSeats(ctx, c.VehicleID)
		if err != nil {
			return sum, fmt.Errorf("seat overrides for vehicle %d: %w", c.VehicleID, err)
		}
		results, err := p.Creature(ctx, c, overrides)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			sum.Failed++
			log.Warn("creature skipped", "entry", c.Entry, "name", c.Name, "error", err)
			continue
		}
		for _, r := range results {
			if r.Fallback {
				sum.Fallbacks++
				log.Debug("seat has no model attachment", "entry", r.Entry, "seat", r.SeatIndex, "attachment_id", r.AttachmentID)
			}
			if err := emit(r); err != nil {
				return sum, err
			}
			sum.Results++
		}
	}

	sum.Elapsed = time.Since(start)
	log.Info("extract finished",
		"results", sum.Results,
		"fallbacks", sum.Fallbacks,
		"failed", sum.Failed,
		"elapsed", sum.Elapsed,
	)
	return sum, nil
}
