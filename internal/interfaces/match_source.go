package interfaces

import (
	"context"

	"OsuMatchView/internal/model"
)

// MatchSource 比赛数据来源（osu! API 或测试替身）
type MatchSource interface {
	// FetchToken 用 client credentials 换取一次性 bearer token
	FetchToken(ctx context.Context) (string, error)
	// FetchMatch 用 token 拉取指定比赛的原始数据
	FetchMatch(ctx context.Context, token, matchID string) (*model.OsuMatchResponse, error)
}
