package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"OsuMatchView/internal/model"
)

var (
	rulesetLabels  = []string{"Osu", "Taiko", "Catch", "Mania"}
	teamModeLabels = []string{"Head-to-Head", "Tag Co-op", "Team Vs", "Tag Team Vs"}

	// 比赛标题中的队伍信息，如 "OWC2024: (Korea) vs (Japan)"
	teamContextPattern = regexp.MustCompile(`\(([^)]+)\) vs \(([^)]+)\)`)
)

const (
	defaultRulesetLabel  = "Osu"
	defaultTeamModeLabel = "Standard"
	unknownPlayerName    = "Unknown"
	defaultGrade         = "F"
	backdropURLTemplate  = "https://assets.ppy.sh/beatmaps/%d/covers/cover.jpg"
)

type userInfo struct {
	name   string
	avatar string
}

// TeamContext 从比赛标题解析出的红蓝队名（小写，用于子串匹配）
type TeamContext struct {
	Red  string
	Blue string
}

// ParseTeamContext 解析 "(<red>) vs (<blue>)"，不匹配时返回 nil
func ParseTeamContext(title string) *TeamContext {
	m := teamContextPattern.FindStringSubmatch(title)
	if m == nil {
		return nil
	}
	return &TeamContext{
		Red:  strings.ToLower(m[1]),
		Blue: strings.ToLower(m[2]),
	}
}

// RulesetLabel ruleset id 越界时返回 "Osu"
func RulesetLabel(id int) string {
	if id < 0 || id >= len(rulesetLabels) {
		return defaultRulesetLabel
	}
	return rulesetLabels[id]
}

// TeamModeLabel team mode id 越界时返回 "Standard"
func TeamModeLabel(id int) string {
	if id < 0 || id >= len(teamModeLabels) {
		return defaultTeamModeLabel
	}
	return teamModeLabels[id]
}

// WinnerLabel 分数高者胜，相等为 Draw
func WinnerLabel(red, blue int64) string {
	switch {
	case red > blue:
		return model.WinnerRed
	case blue > red:
		return model.WinnerBlue
	default:
		return model.WinnerDraw
	}
}

// FormatAccuracy 0-1 的命中率转为两位小数的百分比字符串
func FormatAccuracy(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', 2, 64)
}

// IsRedTeam 队伍分配（唯一口径）：
//  1. 显式 team=2 一律红队；
//  2. 组队模式（team mode >= 2）其余为蓝队；
//  3. 非组队模式下，标题带队名时按玩家名子串匹配，先红后蓝；
//  4. 仍无法判断时，本局第一个成绩为红队，其余为蓝队。
func IsRedTeam(teamTag, teamMode int, playerName string, idx int, ctx *TeamContext) bool {
	if teamTag == model.TeamRed {
		return true
	}
	if teamMode >= 2 {
		return false
	}
	if ctx != nil {
		name := strings.ToLower(playerName)
		if ctx.Red != "" && strings.Contains(name, ctx.Red) {
			return true
		}
		if ctx.Blue != "" && strings.Contains(name, ctx.Blue) {
			return false
		}
	}
	return idx == 0
}

// BuildMatchSummary 将上游比赛数据整理为前端视图。
// 任一局缺少谱面信息时整体失败，不返回部分结果。
func BuildMatchSummary(data *model.OsuMatchResponse, newestFirst bool) (*model.MatchSummary, error) {
	if data == nil {
		return nil, fmt.Errorf("比赛数据为空")
	}

	users := make(map[int64]userInfo, len(data.Users))
	for _, u := range data.Users {
		users[u.ID] = userInfo{name: u.Username, avatar: u.AvatarURL}
	}
	teamCtx := ParseTeamContext(data.Match.Name)

	games := make([]model.GameSummary, 0, len(data.Events))
	for _, e := range data.Events {
		if e.Game == nil {
			continue
		}
		game, err := buildGameSummary(e.Game, users, teamCtx)
		if err != nil {
			return nil, fmt.Errorf("事件%d: %w", e.ID, err)
		}
		games = append(games, game)
	}

	if newestFirst {
		reverseGames(games)
	}

	return &model.MatchSummary{
		ID:        data.Match.ID,
		MatchName: data.Match.Name,
		Games:     games,
	}, nil
}

func buildGameSummary(g *model.OsuGame, users map[int64]userInfo, teamCtx *TeamContext) (model.GameSummary, error) {
	set := g.Set()
	if g.Beatmap == nil || set == nil {
		return model.GameSummary{}, fmt.Errorf("第%d局缺少谱面信息", g.ID)
	}

	teamMode := g.TeamModeID()
	summary := model.GameSummary{
		MapDisplay:  fmt.Sprintf("%s [%s]", set.Title, g.Beatmap.Version),
		Backdrop:    fmt.Sprintf(backdropURLTemplate, set.ID),
		GameMode:    RulesetLabel(g.RulesetIndex()),
		MatchType:   TeamModeLabel(teamMode),
		RedPlayers:  []model.PlayerView{},
		BluePlayers: []model.PlayerView{},
	}

	for idx, s := range g.Scores {
		u, ok := users[s.UserID]
		if !ok {
			u = userInfo{name: unknownPlayerName}
		}
		player := buildPlayerView(s, u)

		if IsRedTeam(s.TeamTag(), teamMode, u.name, idx, teamCtx) {
			summary.Red += player.Score
			summary.RedPlayers = append(summary.RedPlayers, player)
		} else {
			summary.Blue += player.Score
			summary.BluePlayers = append(summary.BluePlayers, player)
		}
	}

	summary.Winner = WinnerLabel(summary.Red, summary.Blue)
	return summary, nil
}

func buildPlayerView(s model.OsuScore, u userInfo) model.PlayerView {
	grade := s.Rank
	if grade == "" {
		grade = defaultGrade
	}
	return model.PlayerView{
		Name:     u.name,
		Avatar:   u.avatar,
		Score:    s.Score.Int(0),
		Accuracy: FormatAccuracy(s.Accuracy),
		Combo:    s.MaxCombo.Int(0),
		Grade:    grade,
	}
}

func reverseGames(games []model.GameSummary) {
	for i, j := 0, len(games)-1; i < j; i, j = i+1, j-1 {
		games[i], games[j] = games[j], games[i]
	}
}
