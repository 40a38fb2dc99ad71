package model

// MatchSummary 返回给前端的比赛视图
type MatchSummary struct {
	ID        int64         `json:"id"`
	MatchName string        `json:"matchName"`
	Games     []GameSummary `json:"games"`
}

// GameSummary 单局视图：红蓝总分、胜方与双方玩家
type GameSummary struct {
	MapDisplay  string       `json:"mapDisplay"` // "<title> [<version>]"
	Backdrop    string       `json:"backdrop"`   // 谱面封面
	GameMode    string       `json:"gameMode"`   // Osu/Taiko/Catch/Mania
	MatchType   string       `json:"matchType"`  // Head-to-Head/Tag Co-op/Team Vs/Tag Team Vs
	Red         int64        `json:"red"`
	Blue        int64        `json:"blue"`
	Winner      string       `json:"winner"`
	RedPlayers  []PlayerView `json:"redPlayers"`
	BluePlayers []PlayerView `json:"bluePlayers"`
}

type PlayerView struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Score    int64  `json:"score"`
	Accuracy string `json:"accuracy"` // 百分比，保留两位小数，如 "95.00"
	Combo    int64  `json:"combo"`
	Grade    string `json:"grade"`
}

const (
	WinnerRed  = "Red Wins"
	WinnerBlue = "Blue Wins"
	WinnerDraw = "Draw"
)
