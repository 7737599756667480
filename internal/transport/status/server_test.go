package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestBeforeFirstCycle(t *testing.T) {
	r := NewRouter(NewController(NewBoard()))

	w := get(t, r, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","cycles":0}`, w.Body.String())

	assert.Equal(t, http.StatusServiceUnavailable, get(t, r, "/snapshot").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, r, "/mood").Code)
}

func TestAfterCycle(t *testing.T) {
	board := NewBoard()
	r := NewRouter(NewController(board))

	require.NoError(t, board.Report(context.Background(), model.CycleResult{
		CycleID:    "cycle-2",
		Mood:       model.MoodLoss,
		FinishedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Snapshot: model.Snapshot{
			DayChangePct:  decimal.NewNullDecimal(decimal.RequireFromString("-1.234")),
			MissingQuotes: []string{"INFY"},
		},
		ActuatorErr: "device unreachable",
	}))

	w := get(t, r, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, float64(1), health["cycles"])
	assert.Equal(t, false, health["light_ok"])

	w = get(t, r, "/mood")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mood":"loss","day_change_pct":"-1.23%","total_return_pct":"—","missing_quotes":["INFY"]}`, w.Body.String())

	w = get(t, r, "/snapshot")
	require.Equal(t, http.StatusOK, w.Code)
	var result model.CycleResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "cycle-2", result.CycleID)
	assert.Equal(t, model.MoodLoss, result.Mood)
}
