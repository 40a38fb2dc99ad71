package service

import (
	"context"
	"fmt"

	"OsuMatchView/internal/interfaces"
	"OsuMatchView/internal/model"

	"github.com/sirupsen/logrus"
)

// MatchService 拉取 osu! 比赛并整理为前端视图
type MatchService struct {
	source      interfaces.MatchSource
	logger      *logrus.Logger
	newestFirst bool
}

func NewMatchService(source interfaces.MatchSource, logger *logrus.Logger, newestFirst bool) *MatchService {
	return &MatchService{
		source:      source,
		logger:      logger,
		newestFirst: newestFirst,
	}
}

// GetMatch 获取令牌 -> 拉取比赛 -> 转换视图，任一步失败立即返回
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*model.MatchSummary, error) {
	token, err := s.source.FetchToken(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.source.FetchMatch(ctx, token, matchID)
	if err != nil {
		return nil, err
	}

	summary, err := BuildMatchSummary(data, s.newestFirst)
	if err != nil {
		return nil, fmt.Errorf("整理比赛%s失败: %w", matchID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"match_id": matchID,
		"games":    len(summary.Games),
	}).Info("比赛视图生成完成")
	return summary, nil
}
