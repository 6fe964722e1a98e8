package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"example.com/greenpoints/internal/docstore"
	"example.com/greenpoints/internal/domain"
)

func TestLogVeganMealsAwardsPlantPower(t *testing.T) {
	mux, store := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodPost, "/api/activities", `{"username":"neo","activity_type":"vegan_meal","quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LogActivityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.InsertedID)
	require.Equal(t, 30, resp.Points)
	require.Len(t, resp.Badges, 1)
	require.Equal(t, "plant_power", resp.Badges[0].BadgeKey)
	require.Equal(t, "leaf", resp.Badges[0].Icon)
	require.NotEmpty(t, resp.Badges[0].ID)

	docs, err := store.FindMany(context.Background(), domain.CollectionActivity, nil, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestLogTreePlantingAwardsBigImpact(t *testing.T) {
	mux, _ := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodPost, "/api/activities", `{"username":"trinity","activity_type":"tree_planting"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LogActivityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 50, resp.Points)
	require.Len(t, resp.Badges, 1)
	require.Equal(t, "big_impact", resp.Badges[0].BadgeKey)
}

func TestLogWithoutBadgesReturnsEmptyArray(t *testing.T) {
	mux, _ := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodPost, "/api/activities", `{"username":"neo","activity_type":"refill","quantity":0,"notes":"office tap"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"badges":[]`)
	require.Contains(t, rec.Body.String(), `"points":6`)
}

func TestLogUnknownTypePersistsNothing(t *testing.T) {
	mux, store := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodPost, "/api/activities", `{"username":"neo","activity_type":"teleport","quantity":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"type":"invalid_activity_type","detail":"Unknown activity type"}`, rec.Body.String())

	names, err := store.(docstore.Inspector).Collections(context.Background())
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestLogRejectsOversizedQuantity(t *testing.T) {
	mux, store := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodPost, "/api/activities", `{"username":"neo","activity_type":"tree_planting","quantity":200000000000000000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"type":"validation_failed","detail":"quantity must be at most 1000000"}`, rec.Body.String())

	docs, err := store.FindMany(context.Background(), domain.CollectionActivity, nil, 0)
	require.NoError(t, err)
	require.Empty(t, docs)

	rec = do(mux, http.MethodGet, "/api/leaderboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestLogRejectsBadBodies(t *testing.T) {
	mux, _ := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodPost, "/api/activities", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_request")

	rec = do(mux, http.MethodPost, "/api/activities", `{"username":"  ","activity_type":"refill"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"type":"validation_failed","detail":"username is required"}`, rec.Body.String())

	rec = do(mux, http.MethodDelete, "/api/activities", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSeedThenLeaderboard(t *testing.T) {
	mux, _ := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodPost, "/api/seed", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var seeded SeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seeded))
	require.True(t, seeded.OK)
	require.Len(t, seeded.Created, 4)
	require.Equal(t, 30, seeded.Created[0].Points)

	rec = do(mux, http.MethodPost, "/api/activities", `{"username":"trinity","activity_type":"recycling","quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(mux, http.MethodGet, "/api/leaderboard?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"username":"neo","points":112},{"username":"trinity","points":8}]`, rec.Body.String())

	rec = do(mux, http.MethodGet, "/api/leaderboard?limit=1", "")
	require.JSONEq(t, `[{"username":"neo","points":112}]`, rec.Body.String())

	rec = do(mux, http.MethodGet, "/api/leaderboard?limit=lots", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeedHonoursUsername(t *testing.T) {
	mux, _ := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodPost, "/api/seed?username=morpheus", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(mux, http.MethodGet, "/api/activities?username=morpheus", "")
	var items []ActivityView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 4)
	require.Equal(t, "public_transport", items[0].ActivityType)
	require.Equal(t, 2, items[0].Quantity)

	rec = do(mux, http.MethodGet, "/api/activities?username=morpheus&limit=2", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
}

func TestSummary(t *testing.T) {
	mux, _ := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodPost, "/api/summary", `{"username":"ghost"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"username":"ghost",
		"total_points":0,
		"activities_logged":0,
		"badges":[],
		"share_text":"ghost earned 0 Green Points with 0 eco actions! 🌿"
	}`, rec.Body.String())

	do(mux, http.MethodPost, "/api/seed", "")
	rec = do(mux, http.MethodPost, "/api/summary", `{"username":"neo"}`)

	var summary SummaryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, 112, summary.TotalPoints)
	require.Equal(t, 4, summary.ActivitiesLogged)
	require.Len(t, summary.Badges, 1)
	require.Equal(t, "neo earned 112 Green Points with 4 eco actions! 🌿", summary.ShareText)

	rec = do(mux, http.MethodPost, "/api/summary", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBadgesFilterByUsername(t *testing.T) {
	mux, _ := newTestMux(t, docstore.NewMemoryStore())
	do(mux, http.MethodPost, "/api/activities", `{"username":"neo","activity_type":"tree_planting"}`)
	do(mux, http.MethodPost, "/api/activities", `{"username":"trinity","activity_type":"tree_planting","quantity":2}`)

	rec := do(mux, http.MethodGet, "/api/badges", "")
	var all []BadgeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 2)

	rec = do(mux, http.MethodGet, "/api/badges?username=trinity", "")
	var mine []BadgeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	require.Equal(t, "trinity", mine[0].Username)
}

func TestStorageFailureMapsToServerError(t *testing.T) {
	store := &brokenStore{Store: docstore.NewMemoryStore(), err: errors.New("connection refused")}
	mux, _ := newTestMux(t, store)

	rec := do(mux, http.MethodPost, "/api/activities", `{"username":"neo","activity_type":"bike_ride"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"type":"server_error","detail":"connection refused"}`, rec.Body.String())

	rec = do(mux, http.MethodGet, "/api/leaderboard", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRootStatusAndHealth(t *testing.T) {
	mux, _ := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodGet, "/", "")
	require.JSONEq(t, `{"message":"GreenPoints API running"}`, rec.Body.String())

	rec = do(mux, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(mux, http.MethodGet, "/healthz", "")
	require.Equal(t, "ok", rec.Body.String())

	do(mux, http.MethodPost, "/api/activities", `{"username":"neo","activity_type":"thrift"}`)
	rec = do(mux, http.MethodGet, "/test", "")
	require.JSONEq(t, `{
		"backend":"✅ Running",
		"database":"✅ Connected & Working",
		"database_url":"❌ Not Set",
		"database_name":"✅ Set",
		"connection_status":"Connected",
		"collections":["activity"]
	}`, rec.Body.String())
}

func TestStatusReportsUnreachableStore(t *testing.T) {
	service := domain.NewService(docstore.NewMemoryStore())
	inspector := unreachable{err: errors.New(strings.Repeat("x", 80))}
	handler := NewHandler(service, WithInspector(inspector))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	rec := do(mux, http.MethodGet, "/test", "")
	var view StatusView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, "⚠️ "+strings.Repeat("x", 60), view.Database)
	require.Equal(t, "Not Connected", view.ConnectionStatus)
	require.Empty(t, view.Collections)

	rec = do(mux, http.MethodGet, "/test", "")
	require.Contains(t, rec.Body.String(), `"collections":[]`)
}

func TestActivityTypes(t *testing.T) {
	mux, _ := newTestMux(t, docstore.NewMemoryStore())

	rec := do(mux, http.MethodGet, "/api/activity-types", "")
	var items []ActivityTypeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 7)
	require.Equal(t, ActivityTypeView{ActivityType: "tree_planting", PointsPerUnit: 50}, items[6])
}

func newTestMux(t *testing.T, store docstore.Store) (*http.ServeMux, docstore.Store) {
	t.Helper()
	logger, _ := test.NewNullLogger()

	opts := []Option{WithDatabaseEnv(false, true), WithLogger(logger)}
	if inspector, ok := store.(docstore.Inspector); ok {
		opts = append(opts, WithInspector(inspector))
	}

	service := domain.NewService(store, domain.WithLogger(logger))
	handler := NewHandler(service, opts...)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux, store
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

type brokenStore struct {
	docstore.Store
	err error
}

func (s *brokenStore) InsertOne(context.Context, string, docstore.Document) (string, error) {
	return "", s.err
}

func (s *brokenStore) Aggregate(context.Context, string, docstore.Pipeline) ([]docstore.Document, error) {
	return nil, s.err
}

type unreachable struct {
	err error
}

func (u unreachable) Ping(context.Context) error { return u.err }

func (u unreachable) Collections(context.Context) ([]string, error) { return nil, u.err }
