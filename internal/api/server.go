// Package api serves seat positions and table records over HTTP.
package api

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/seatmap/internal/extract"
	"github.com/samcharles93/seatmap/internal/logger"
	"github.com/samcharles93/seatmap/internal/version"
	"github.com/samcharles93/seatmap/internal/webui"
	"github.com/samcharles93/seatmap/internal/worlddb"
	"github.com/samcharles93/seatmap/pkg/dbc"
)

const headerRequestID = "X-Request-Id"

// Creatures looks up creature rows and their seat overrides.
type Creatures interface {
	Creature(ctx context.Context, entry uint32) (worlddb.Creature, error)
	VehicleSeats(ctx context.Context, vehicleID uint32) (map[int]worlddb.Seat, error)
}

type Server struct {
	pipeline  *extract.Pipeline
	creatures Creatures
	log       logger.Logger
	clock     func() time.Time
	started   time.Time
}

func NewServer(pipeline *extract.Pipeline, creatures Creatures, log logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{
		pipeline:  pipeline,
		creatures: creatures,
		log:       log,
		clock:     time.Now,
	}
	s.started = s.clock()
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(s.requestID)

	e.GET("/", echo.WrapHandler(http.FileServer(webui.StaticFS())))
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/creatures/:entry/seats", s.handleCreatureSeats)
	e.GET("/v1/tables", s.handleListTables)
	e.GET("/v1/tables/:name", s.handleGetTable)
	e.GET("/v1/tables/:name/:id", s.handleGetRecord)
}

// requestID echoes or assigns X-Request-Id.
func (s *Server) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := c.Request().Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(headerRequestID, id)
		return next(c)
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: version.String(),
		Uptime:  s.clock().Sub(s.started).Round(time.Second).String(),
	})
}

type SeatsResponse struct {
	Entry uint32           `json:"entry"`
	Name  string           `json:"name"`
	Seats []extract.Result `json:"seats"`
}

func (s *Server) handleCreatureSeats(c *echo.Context) error {
	if s.creatures == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "world database not configured", "")
	}
	entry, err := parseID(c.Param("entry"), "entry")
	if err != nil {
		return writeBadRequest(c, err.Error(), "entry")
	}
	ctx := c.Request().Context()

	creature, err := s.creatures.Creature(ctx, entry)
	if err != nil {
		return writeErr(c, err)
	}
	overrides, err := s.creatures.VehicleSeats(ctx, creature.VehicleID)
	if err != nil {
		return writeErr(c, err)
	}
	results, err := s.pipeline.Creature(ctx, creature, overrides)
	if err != nil {
		s.log.Warn("seat lookup failed", "entry", entry, "error", err)
		return writeErr(c, err)
	}
	if results == nil {
		results = []extract.Result{}
	}
	return c.JSON(http.StatusOK, SeatsResponse{Entry: creature.Entry, Name: creature.Name, Seats: results})
}

type TableInfo struct {
	Name       string `json:"name"`
	File       string `json:"file"`
	Sparse     bool   `json:"sparse"`
	RecordSize uint32 `json:"record_size"`
	Columns    int    `json:"columns"`
	Format     string `json:"format"`
	Records    *int   `json:"records,omitempty"`
	Duplicates *int   `json:"duplicates,omitempty"`
}

func tableInfo(m *dbc.Meta) TableInfo {
	return TableInfo{
		Name:       dbc.ShortName(m.Name),
		File:       m.Name,
		Sparse:     m.Sparse,
		RecordSize: m.RecordSize,
		Columns:    m.Columns(),
		Format:     m.FormatString(),
	}
}

func (s *Server) handleListTables(c *echo.Context) error {
	names := dbc.Registered()
	out := make([]TableInfo, 0, len(names))
	for _, name := range names {
		out = append(out, tableInfo(dbc.MustLookup(name)))
	}
	slices.SortFunc(out, func(a, b TableInfo) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return c.JSON(http.StatusOK, map[string]any{"tables": out})
}

func (s *Server) handleGetTable(c *echo.Context) error {
	t, err := s.pipeline.Table(c.Request().Context(), c.Param("name"))
	if err != nil {
		return writeErr(c, err)
	}
	info := tableInfo(t.Meta())
	records, dups := t.Len(), t.Duplicates()
	info.Records, info.Duplicates = &records, &dups
	return c.JSON(http.StatusOK, info)
}

type RecordResponse struct {
	Table  string            `json:"table"`
	ID     uint32            `json:"id"`
	Fields map[string]string `json:"fields"`
}

func (s *Server) handleGetRecord(c *echo.Context) error {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return writeBadRequest(c, err.Error(), "id")
	}
	t, err := s.pipeline.Table(c.Request().Context(), c.Param("name"))
	if err != nil {
		return writeErr(c, err)
	}
	rec, err := t.Get(id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, RecordResponse{
		Table:  dbc.ShortName(t.Meta().Name),
		ID:     id,
		Fields: rec.Values(),
	})
}

func parseID(raw, name string) (uint32, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, newInvalidRequest("invalid " + name + " " + strconv.Quote(raw))
	}
	return uint32(v), nil
}
