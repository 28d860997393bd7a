package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Query defaults, matching what the dashboard requests.
const (
	defaultHistoryHours = 2.0
	defaultHistoryLimit = 1500
	defaultEventLimit   = 120
	defaultRuntimeDays  = 7
)

func (h *Handler) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Status.Snapshot())
}

func (h *Handler) history(c *gin.Context) {
	hours := queryFloat(c, "hours", defaultHistoryHours)
	limit := queryInt(c, "limit", defaultHistoryLimit)

	result, err := h.services.History.History(c.Request.Context(), hours, limit)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("history_query_failed", "err", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) events(c *gin.Context) {
	limit := queryInt(c, "limit", defaultEventLimit)

	result, err := h.services.History.Events(c.Request.Context(), limit)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("events_query_failed", "err", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) runtime(c *gin.Context) {
	days := queryInt(c, "days", defaultRuntimeDays)

	result, err := h.services.History.Runtime(c.Request.Context(), days)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("runtime_query_failed", "err", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load runtime"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// queryFloat reads a float query param, falling back on absent or
// unparsable values. Bounds are enforced in the service layer.
func queryFloat(c *gin.Context, name string, fallback float64) float64 {
	s := c.Query(name)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func queryInt(c *gin.Context, name string, fallback int) int {
	s := c.Query(name)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
