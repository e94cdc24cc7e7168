package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/seatmap/internal/extract"
	"github.com/samcharles93/seatmap/internal/extract/extracttest"
	"github.com/samcharles93/seatmap/internal/worlddb"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	pipeline, err := extract.New(context.Background(), extracttest.World(), nil, extract.Options{})
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	noVehicle := worlddb.Creature{Entry: 7, Name: "Grunt", ModelIDs: [4]uint32{extracttest.DisplayID}}
	src := &extracttest.Source{List: []worlddb.Creature{extracttest.Creature, noVehicle}}

	e := echo.New()
	NewServer(pipeline, src, nil).Register(e)
	return e
}

func doGet(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]ResponseError](t, rec)["error"].Type
}

func TestHealth(t *testing.T) {
	t.Parallel()
	rec := doGet(t, newTestEcho(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if h := decode[HealthResponse](t, rec); h.Status != "ok" || h.Version == "" {
		t.Fatalf("health %+v", h)
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatal("missing request id")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got != "abc-123" {
		t.Fatalf("request id %q", got)
	}
}

func TestCreatureSeats(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doGet(t, e, "/v1/creatures/32633/seats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[SeatsResponse](t, rec)
	if resp.Entry != extracttest.CreatureEntry || len(resp.Seats) != 2 {
		t.Fatalf("response %+v", resp)
	}
	if s := resp.Seats[0]; s.X != 2 || s.Y != 0 || s.Z != 2 || s.Fallback {
		t.Fatalf("seat 0 %+v", s)
	}
	if !resp.Seats[1].Fallback {
		t.Fatalf("seat 1 should fall back: %+v", resp.Seats[1])
	}
}

func TestCreatureSeatsErrors(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	tests := []struct {
		path   string
		status int
		typ    string
	}{
		{"/v1/creatures/abc/seats", http.StatusBadRequest, "invalid_request_error"},
		{"/v1/creatures/99/seats", http.StatusNotFound, "not_found_error"},
		{"/v1/creatures/7/seats", http.StatusBadRequest, "invalid_request_error"},
	}
	for _, tc := range tests {
		rec := doGet(t, e, tc.path)
		if rec.Code != tc.status {
			t.Errorf("%s: status %d want %d", tc.path, rec.Code, tc.status)
			continue
		}
		if typ := errorType(t, rec); typ != tc.typ {
			t.Errorf("%s: type %q want %q", tc.path, typ, tc.typ)
		}
	}
}

func TestWithoutWorldDB(t *testing.T) {
	t.Parallel()
	pipeline, err := extract.New(context.Background(), extracttest.World(), nil, extract.Options{})
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	e := echo.New()
	NewServer(pipeline, nil, nil).Register(e)
	if rec := doGet(t, e, "/v1/creatures/1/seats"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestTables(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doGet(t, e, "/v1/tables")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	list := decode[map[string][]TableInfo](t, rec)["tables"]
	var found bool
	for _, info := range list {
		if info.Name == "VehicleSeat" {
			found = info.RecordSize == 232 && info.Columns == 58
		}
	}
	if !found {
		t.Fatalf("VehicleSeat missing or wrong: %+v", list)
	}

	rec = doGet(t, e, "/v1/tables/vehicle")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	info := decode[TableInfo](t, rec)
	if info.Records == nil || *info.Records != 1 || info.Duplicates == nil || *info.Duplicates != 0 {
		t.Fatalf("table info %+v", info)
	}
}

func TestGetRecord(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doGet(t, e, "/v1/tables/CreatureModelData/100")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[RecordResponse](t, rec)
	if got.Table != "CreatureModelData" || got.ID != 100 {
		t.Fatalf("record %+v", got)
	}
	if !strings.Contains(got.Fields["ModelName"], "Mammoth.mdx") {
		t.Fatalf("ModelName = %q", got.Fields["ModelName"])
	}

	for path, status := range map[string]int{
		"/v1/tables/CreatureModelData/5": http.StatusNotFound,
		"/v1/tables/CreatureModelData/x": http.StatusBadRequest,
		"/v1/tables/Spell/1":             http.StatusNotFound,
		"/v1/tables/Item/1":              http.StatusNotFound,
	} {
		if rec := doGet(t, e, path); rec.Code != status {
			t.Errorf("%s: status %d want %d", path, rec.Code, status)
		}
	}
}

func TestIndexPage(t *testing.T) {
	t.Parallel()
	rec := doGet(t, newTestEcho(t), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "/v1/creatures/") {
		t.Fatal("index page does not query the seats route")
	}
}
