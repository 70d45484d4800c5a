package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnbattle/internal/arena"
	"turnbattle/internal/battle"
	"turnbattle/internal/data"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResults struct {
	pingErr   error
	results   []arena.Result
	listErr   error
	lastLimit int
}

func (f *fakeResults) Ping(context.Context) error { return f.pingErr }

func (f *fakeResults) ListResults(_ context.Context, limit int) ([]arena.Result, error) {
	f.lastLimit = limit
	if limit <= 0 || limit > data.MaxListLimit {
		return nil, data.ErrInvalidLimit
	}
	return f.results, f.listErr
}

func newArena(t *testing.T, name string, run bool) *arena.Arena {
	t.Helper()
	strong := battle.DefaultStats()
	strong.Attack = 100
	strong.Accuracy = 1

	a := arena.New(battle.NewBattle(name))
	require.NoError(t, a.Join(
		battle.NewPlayer("alice", battle.NewCharacter("Ash", battle.WithStats(strong))),
		battle.NewPlayer("bob", battle.NewCharacter("Brick")),
	))
	if run {
		_, err := a.Run(context.Background())
		require.NoError(t, err)
	}
	return a
}

func newRouter(t *testing.T, results Results, arenas ...*arena.Arena) *gin.Engine {
	t.Helper()
	reg := arena.NewRegistry()
	for _, a := range arenas {
		require.NoError(t, reg.Add(a))
	}
	return Setup(Deps{Registry: reg, Results: results, Gatherer: prometheus.NewRegistry()})
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) Response {
	t.Helper()
	resp := Response{Data: out}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		results  Results
		code     int
		status   string
		database string
	}{
		{"no store", nil, http.StatusOK, "healthy", "not configured"},
		{"store up", &fakeResults{}, http.StatusOK, "healthy", "ok"},
		{"store down", &fakeResults{pingErr: errors.New("refused")}, http.StatusServiceUnavailable, "unhealthy", "error: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newRouter(t, tt.results), "/health")

			assert.Equal(t, tt.code, w.Code)
			var status HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.status, status.Status)
			assert.Equal(t, tt.database, status.Components["database"])
		})
	}
}

func TestListBattles(t *testing.T) {
	router := newRouter(t, nil, newArena(t, "Pit", false), newArena(t, "Arena", false))

	w := get(router, "/api/v1/battles")

	assert.Equal(t, http.StatusOK, w.Code)
	var names []string
	resp := decode(t, w, &names)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"Arena", "Pit"}, names)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestGetBattleStats(t *testing.T) {
	router := newRouter(t, nil, newArena(t, "Arena", false))

	t.Run("known battle", func(t *testing.T) {
		w := get(router, "/api/v1/battles/Arena/stats")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Remaining Characters:\nAsh: 100.00 hp\nBrick: 100.00 hp\n\nDead Players: ", w.Body.String())
	})

	t.Run("unknown battle", func(t *testing.T) {
		w := get(router, "/api/v1/battles/Nowhere/stats")

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode(t, w, nil)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "BATTLE_NOT_FOUND", resp.Error.Code)
	})
}

func TestGetBattle(t *testing.T) {
	t.Run("finished", func(t *testing.T) {
		router := newArenaRouter(t, true)

		w := get(router, "/api/v1/battles/Arena")

		assert.Equal(t, http.StatusOK, w.Code)
		var summary BattleSummary
		decode(t, w, &summary)
		assert.Equal(t, "Arena", summary.Name)
		assert.True(t, summary.Started)
		assert.Equal(t, 1, summary.Turns)
		assert.Equal(t, []PlayerInfo{{"alice", "Ash"}, {"bob", "Brick"}}, summary.Players)
		require.NotNil(t, summary.Result)
		assert.Equal(t, "Ash", summary.Result.Winner)
		assert.Equal(t, []string{"Brick"}, summary.Result.Dead)
	})

	t.Run("not started", func(t *testing.T) {
		router := newArenaRouter(t, false)

		w := get(router, "/api/v1/battles/Arena")

		var summary BattleSummary
		decode(t, w, &summary)
		assert.False(t, summary.Started)
		assert.Nil(t, summary.Result)
	})

	t.Run("unknown", func(t *testing.T) {
		w := get(newRouter(t, nil), "/api/v1/battles/Arena")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func newArenaRouter(t *testing.T, run bool) *gin.Engine {
	return newRouter(t, nil, newArena(t, "Arena", run))
}

func TestListResults(t *testing.T) {
	t.Run("store disabled", func(t *testing.T) {
		w := get(newRouter(t, nil), "/api/v1/results")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("default limit", func(t *testing.T) {
		store := &fakeResults{results: []arena.Result{{ID: "r_1", Winner: "Ash"}}}

		w := get(newRouter(t, store), "/api/v1/results")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, data.DefaultListLimit, store.lastLimit)
		var results []arena.Result
		decode(t, w, &results)
		require.Len(t, results, 1)
		assert.Equal(t, "r_1", results[0].ID)
	})

	t.Run("bad limits", func(t *testing.T) {
		tests := []struct {
			name  string
			query string
		}{
			{"not a number", "abc"},
			{"zero", "0"},
			{"above max", "101"},
			{"huge", "1125899906842624"},
			{"overflows int", "99999999999999999999999"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := &fakeResults{}

				w := get(newRouter(t, store), "/api/v1/results?limit="+tt.query)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				resp := decode(t, w, nil)
				require.NotNil(t, resp.Error)
				assert.Equal(t, "INVALID_LIMIT", resp.Error.Code)
				assert.Zero(t, store.lastLimit)
			})
		}
	})

	t.Run("store error", func(t *testing.T) {
		w := get(newRouter(t, &fakeResults{listErr: errors.New("boom")}), "/api/v1/results")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := arena.NewMetrics(reg)
	metrics.Attacks.Inc()
	router := Setup(Deps{Registry: arena.NewRegistry(), Gatherer: reg})

	w := get(router, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "turnbattle_attacks_total 1")
}
