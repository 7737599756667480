package status

import (
	"net/http"

	"github.com/KotFed0t/portfolio_mood_light/internal/report"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	board *Board
}

func NewController(board *Board) *Controller {
	return &Controller{board: board}
}

func (ctrl *Controller) Healthz(c *gin.Context) {
	result, cycles, ok := ctrl.board.Latest()

	resp := gin.H{"status": "ok", "cycles": cycles}
	if ok {
		resp["last_cycle_at"] = result.FinishedAt
		resp["degraded"] = result.Snapshot.Degraded
		resp["light_ok"] = result.ActuatorErr == ""
	}

	c.JSON(http.StatusOK, resp)
}

func (ctrl *Controller) Snapshot(c *gin.Context) {
	result, _, ok := ctrl.board.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no cycle finished yet"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ctrl *Controller) Mood(c *gin.Context) {
	result, _, ok := ctrl.board.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no cycle finished yet"})
		return
	}

	snap := result.Snapshot
	c.JSON(http.StatusOK, gin.H{
		"mood":             result.Mood,
		"day_change_pct":   report.Pct(snap.DayChangePct),
		"total_return_pct": report.Pct(snap.TotalReturnPct),
		"missing_quotes":   snap.MissingQuotes,
	})
}
