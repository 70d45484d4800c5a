package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turnbattle/internal/arena"
	"turnbattle/internal/data"
)

// Results is the part of the result store the API reads from.
type Results interface {
	Ping(ctx context.Context) error
	ListResults(ctx context.Context, limit int) ([]arena.Result, error)
}

type BattleHandler struct {
	registry *arena.Registry
	results  Results
	log      *zap.Logger
}

func NewBattleHandler(registry *arena.Registry, results Results, log *zap.Logger) *BattleHandler {
	return &BattleHandler{registry: registry, results: results, log: log}
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health handles GET /health
func (h *BattleHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := map[string]string{"database": "not configured"}
	status, code := "healthy", http.StatusOK
	if h.results != nil {
		if err := h.results.Ping(ctx); err != nil {
			components["database"] = "error: " + err.Error()
			status, code = "unhealthy", http.StatusServiceUnavailable
		} else {
			components["database"] = "ok"
		}
	}

	c.JSON(code, HealthStatus{Status: status, Components: components})
}

// BattleSummary describes one running or finished arena.
type BattleSummary struct {
	Name    string        `json:"name"`
	Started bool          `json:"started"`
	Turns   int           `json:"turns"`
	Report  string        `json:"report"`
	Players []PlayerInfo  `json:"players"`
	Result  *arena.Result `json:"result,omitempty"`
}

// PlayerInfo only carries fields fixed at join time; live health is in the
// stats report.
type PlayerInfo struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

// ListBattles handles GET /api/v1/battles
func (h *BattleHandler) ListBattles(c *gin.Context) {
	writeData(c, h.registry.Names())
}

// GetBattle handles GET /api/v1/battles/:name
func (h *BattleHandler) GetBattle(c *gin.Context) {
	a, ok := h.lookup(c)
	if !ok {
		return
	}

	players := a.Players()
	summary := BattleSummary{
		Name:    a.Name(),
		Started: a.Battle().Started(),
		Turns:   a.Turns(),
		Report:  a.Report(),
		Players: make([]PlayerInfo, 0, len(players)),
	}
	for _, p := range players {
		summary.Players = append(summary.Players, PlayerInfo{
			Name:      p.Name(),
			Character: p.Character().Name(),
		})
	}
	if res, done := a.Result(); done {
		summary.Result = &res
	}
	writeData(c, summary)
}

// GetBattleStats handles GET /api/v1/battles/:name/stats
func (h *BattleHandler) GetBattleStats(c *gin.Context) {
	a, ok := h.lookup(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, a.Report())
}

// ListResults handles GET /api/v1/results
func (h *BattleHandler) ListResults(c *gin.Context) {
	if h.results == nil {
		writeError(c, errStoreDisabled, "result store is not configured")
		return
	}

	limit := data.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > data.MaxListLimit {
			writeError(c, errInvalidLimit, data.ErrInvalidLimit.Error())
			return
		}
		limit = n
	}

	results, err := h.results.ListResults(c.Request.Context(), limit)
	switch {
	case errors.Is(err, data.ErrInvalidLimit):
		writeError(c, errInvalidLimit, err.Error())
	case err != nil:
		h.log.Error("Failed to list results", zap.Error(err))
		writeError(c, errInternal, "failed to list results")
	default:
		writeData(c, results)
	}
}

func (h *BattleHandler) lookup(c *gin.Context) (*arena.Arena, bool) {
	name := c.Param("name")
	a, ok := h.registry.Get(name)
	if !ok {
		writeError(c, errBattleNotFound, "no battle named "+name)
	}
	return a, ok
}
