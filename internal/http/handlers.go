package http

import (
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/SDWZORO/GiveAwayBot/internal/common/errors"
	"github.com/SDWZORO/GiveAwayBot/internal/http/middleware"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/SDWZORO/GiveAwayBot/internal/store"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "giveaway-bot",
	})
}

// handleListGiveaways lists giveaways, optionally filtered with ?status=.
func (s *Server) handleListGiveaways(c *gin.Context) {
	var status models.GiveawayStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseGiveawayStatus(raw)
		if err != nil {
			middleware.SendError(c, apperrors.NewValidationError("status", err.Error()))
			return
		}
		status = parsed
	}
	giveaways := s.store.GiveawaysByStatus(status)
	c.JSON(http.StatusOK, gin.H{
		"giveaways": giveaways,
		"count":     len(giveaways),
	})
}

func (s *Server) handleGetGiveaway(c *gin.Context) {
	id := c.Param("id")
	g, ok := s.store.Giveaway(id)
	if !ok {
		middleware.SendError(c, apperrors.NewGiveawayNotFoundError(id))
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleGetParticipants(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.store.Giveaway(id); !ok {
		middleware.SendError(c, apperrors.NewGiveawayNotFoundError(id))
		return
	}
	participants := s.store.Participants(id)
	c.JSON(http.StatusOK, gin.H{
		"giveaway_id":  id,
		"participants": participants,
		"count":        len(participants),
	})
}

func (s *Server) handleGetWinners(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.store.Giveaway(id); !ok {
		middleware.SendError(c, apperrors.NewGiveawayNotFoundError(id))
		return
	}
	winners := s.store.Winners(id)
	c.JSON(http.StatusOK, gin.H{
		"giveaway_id": id,
		"winners":     winners,
		"count":       len(winners),
	})
}

func (s *Server) handleGetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.SendError(c, apperrors.NewValidationError("id", "must be numeric"))
		return
	}
	stats, ok := s.store.UserStats(userID)
	if !ok {
		middleware.SendError(c, apperrors.Newf(apperrors.ErrCodeNotParticipant,
			"no records for user %d", userID))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":          stats,
		"participations": s.store.UserParticipations(userID),
		"banned":         s.store.IsBanned(userID),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"store":            s.store.Snapshot(),
		"top_participants": s.store.TopParticipants(10),
		"last_cleanup":     s.store.LastCleanup(),
	})
}

// handleLogs returns the newest audit entries. Filters: ?type=, ?user_id=,
// ?giveaway_id=, ?limit= (default 50, max 500).
func (s *Server) handleLogs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			middleware.SendError(c, apperrors.NewValidationError("limit", "must be a positive number"))
			return
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}

	filter := store.LogFilter{
		Type:       c.Query("type"),
		GiveawayID: c.Query("giveaway_id"),
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.SendError(c, apperrors.NewValidationError("user_id", "must be numeric"))
			return
		}
		filter.UserID = userID
	}

	logs := s.store.RecentLogs(limit, filter)
	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
