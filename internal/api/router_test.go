package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arjoma/scheinfirmen-at/internal/domain/dto"
	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
	"github.com/arjoma/scheinfirmen-at/internal/service"
	"github.com/gin-gonic/gin"
)

// mockSnapshotServiceRouter implements service.SnapshotService for testing router wiring
type mockSnapshotServiceRouter struct {
	stand   string
	records []models.Record
	total   int
}

func (m *mockSnapshotServiceRouter) ListRecords(_ context.Context, _, _ int) (string, []models.Record, int, error) {
	return m.stand, m.records, m.total, nil
}

func (m *mockSnapshotServiceRouter) MonthlyAdditions(_ context.Context) (string, []models.MonthlyCount, error) {
	return m.stand, nil, nil
}

func (m *mockSnapshotServiceRouter) RecentAdditions(_ context.Context, _ int) (string, []models.Record, error) {
	return m.stand, m.records, nil
}

var _ service.SnapshotService = (*mockSnapshotServiceRouter)(nil)

func TestNewRouter_WiringAndMiddlewares(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &mockSnapshotServiceRouter{
		stand:   "2026-02-10",
		total:   1,
		records: []models.Record{{Name: "Alpha Bau GmbH", Anschrift: "Wien"}},
	}
	h := NewHandler(svc)
	r := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// Ensure RequestID middleware injected header
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	var out dto.RecordListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if out.Stand != "2026-02-10" || out.Total != 1 || len(out.Records) != 1 {
		t.Fatalf("unexpected body: %+v", out)
	}
}
