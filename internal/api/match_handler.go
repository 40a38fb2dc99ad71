package api

import (
	"context"
	"net/http"
	"strings"

	"OsuMatchView/internal/interfaces"
	"OsuMatchView/internal/model"
	"OsuMatchView/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MatchGetter 由 service.MatchService 实现
type MatchGetter interface {
	GetMatch(ctx context.Context, matchID string) (*model.MatchSummary, error)
}

// MatchHandler 提供给前端的比赛查询接口
type MatchHandler struct {
	matchService MatchGetter
	logger       *logrus.Logger
}

// NewMatchHandler 创建 MatchHandler
func NewMatchHandler(source interfaces.MatchSource, logger *logrus.Logger, newestFirst bool) *MatchHandler {
	return &MatchHandler{
		matchService: service.NewMatchService(source, logger, newestFirst),
		logger:       logger,
	}
}

// GetMatch 比赛视图接口
// GET /api/getMatch?url=https://osu.ppy.sh/community/matches/111534249
func (h *MatchHandler) GetMatch(c *gin.Context) {
	matchID := ParseMatchID(c.Query("url"))
	if matchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
		return
	}

	result, err := h.matchService.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"match_id":   matchID,
			"request_id": c.GetString(requestIDKey),
		}).Error("GetMatch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ParseMatchID 取 url 以 "/" 分隔后的最后一个非空段，不做其他校验
func ParseMatchID(raw string) string {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}
