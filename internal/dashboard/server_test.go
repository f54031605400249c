package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddiefleurent/wheelhouse/internal/models"
	"github.com/eddiefleurent/wheelhouse/internal/storage"
	"github.com/eddiefleurent/wheelhouse/internal/wheel"
)

// fakeStore is an in-memory storage.Interface for handler tests.
type fakeStore struct {
	latest  *storage.Snapshot
	history []wheel.Summary
}

func (f *fakeStore) Latest() *storage.Snapshot        { return f.latest }
func (f *fakeStore) SetLatest(s *storage.Snapshot) error {
	f.latest = s
	f.history = append(f.history, s.Summary)
	return nil
}
func (f *fakeStore) RunHistory() []wheel.Summary { return f.history }
func (f *fakeStore) Save() error                 { return nil }
func (f *fakeStore) Load() error                 { return nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func populatedStore() *fakeStore {
	at := time.Date(2024, 1, 26, 16, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	_ = store.SetLatest(&storage.Snapshot{
		GeneratedAt: at,
		Summary: wheel.Summary{
			GeneratedAt:     at,
			Symbols:         1,
			ActiveCycles:    1,
			CompletedCycles: 1,
			WinningCycles:   1,
			WinRate:         100,
			CycleNetProfit:  decimal.RequireFromString("946"),
		},
		Positions: map[string]models.Position{
			"AAPL": {Symbol: "AAPL", Quantity: 100, AverageCost: decimal.RequireFromString("150")},
		},
		ActiveCycles: []models.WheelCycle{
			{ID: "a1", Symbol: "AAPL", Status: models.CycleActive},
		},
		CompletedCycles: []models.WheelCycle{
			{ID: "c1", Symbol: "AAPL", Status: models.CycleCompleted, Type: models.CyclePutAssignedCallAssigned},
		},
		Warnings: []wheel.Warning{
			{Kind: wheel.WarnMalformedTrade, Symbol: "MSFT", TradeID: "T9", Message: "missing expiry"},
		},
	})
	return store
}

func get(t *testing.T, srv *Server, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	srv := NewServer(Config{Port: 9000}, &fakeStore{}, quietLogger())

	rec := get(t, srv, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestServer_NoSnapshotYet(t *testing.T) {
	srv := NewServer(Config{Port: 9000}, &fakeStore{}, quietLogger())

	for _, path := range []string{"/api/summary", "/api/positions", "/api/cycles", "/api/legs", "/api/warnings"} {
		rec := get(t, srv, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}

	// History is served even before the first run.
	rec := get(t, srv, "/api/history", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Summary(t *testing.T) {
	srv := NewServer(Config{Port: 9000}, populatedStore(), quietLogger())

	rec := get(t, srv, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got wheel.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.CompletedCycles)
	assert.Equal(t, float64(100), got.WinRate)
	assert.True(t, got.CycleNetProfit.Equal(decimal.RequireFromString("946")))
}

func TestServer_Positions(t *testing.T) {
	srv := NewServer(Config{Port: 9000}, populatedStore(), quietLogger())

	rec := get(t, srv, "/api/positions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]models.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Contains(t, got, "AAPL")
	assert.Equal(t, int64(100), got["AAPL"].Quantity)
}

func TestServer_PositionBySymbol(t *testing.T) {
	srv := NewServer(Config{Port: 9000}, populatedStore(), quietLogger())

	rec := get(t, srv, "/api/positions/AAPL", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "AAPL", got.Symbol)

	rec = get(t, srv, "/api/positions/TSLA", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CyclesFilter(t *testing.T) {
	srv := NewServer(Config{Port: 9000}, populatedStore(), quietLogger())

	var cycles []models.WheelCycle

	rec := get(t, srv, "/api/cycles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cycles))
	assert.Len(t, cycles, 2)

	rec = get(t, srv, "/api/cycles?status=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cycles))
	require.Len(t, cycles, 1)
	assert.Equal(t, "a1", cycles[0].ID)

	rec = get(t, srv, "/api/cycles?status=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cycles))
	require.Len(t, cycles, 1)
	assert.Equal(t, "c1", cycles[0].ID)

	rec = get(t, srv, "/api/cycles?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Warnings(t *testing.T) {
	srv := NewServer(Config{Port: 9000}, populatedStore(), quietLogger())

	rec := get(t, srv, "/api/warnings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []wheel.Warning
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, wheel.WarnMalformedTrade, got[0].Kind)
}

func TestServer_History(t *testing.T) {
	srv := NewServer(Config{Port: 9000}, populatedStore(), quietLogger())

	rec := get(t, srv, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []wheel.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestServer_Auth(t *testing.T) {
	srv := NewServer(Config{Port: 9000, AuthToken: "sekrit"}, populatedStore(), quietLogger())

	// Missing or wrong token rejected.
	assert.Equal(t, http.StatusUnauthorized, get(t, srv, "/api/summary", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		get(t, srv, "/api/summary", map[string]string{"X-Auth-Token": "wrong"}).Code)

	// Header token accepted.
	assert.Equal(t, http.StatusOK,
		get(t, srv, "/api/summary", map[string]string{"X-Auth-Token": "sekrit"}).Code)

	// Query token accepted.
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/summary?token=sekrit", nil).Code)

	// Health is exempt.
	assert.Equal(t, http.StatusOK, get(t, srv, "/health", nil).Code)
}
