package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// OsuMatchResponse GET /api/v2/matches/{id} 的响应结构
type OsuMatchResponse struct {
	Match  OsuMatch        `json:"match"`
	Users  []OsuUser       `json:"users"`
	Events []OsuMatchEvent `json:"events"`
}

// OsuMatch 比赛头信息
type OsuMatch struct {
	ID   int64  `json:"id"`
	Name string `json:"name"` // 比赛标题，如 "OWC: (Team A) vs (Team B)"
}

type OsuUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// OsuMatchEvent 比赛事件，只有打图事件带 game
type OsuMatchEvent struct {
	ID   int64    `json:"id"`
	Game *OsuGame `json:"game"`
}

// OsuGame 单局（一张图）
type OsuGame struct {
	ID         int64          `json:"id"`
	RulesetID  FlexInt        `json:"ruleset_id"`
	ModeInt    FlexInt        `json:"mode_int"`  // 旧字段，ruleset_id 缺失时使用
	TeamMode   FlexInt        `json:"team_mode"` // 0-3
	TeamType   string         `json:"team_type"` // API v2 字符串形式：head-to-head/tag-coop/team-vs/tag-team-vs
	Beatmap    *OsuBeatmap    `json:"beatmap"`
	BeatmapSet *OsuBeatmapSet `json:"beatmapset"`
	Scores     []OsuScore     `json:"scores"`
}

type OsuBeatmap struct {
	ID           int64          `json:"id"`
	Version      string         `json:"version"`
	BeatmapSetID int64          `json:"beatmapset_id"`
	BeatmapSet   *OsuBeatmapSet `json:"beatmapset"`
}

type OsuBeatmapSet struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// OsuScore 单个玩家在单局中的成绩
type OsuScore struct {
	UserID   int64          `json:"user_id"`
	Score    FlexInt        `json:"score"`
	Accuracy float64        `json:"accuracy"` // 0-1
	MaxCombo FlexInt        `json:"max_combo"`
	Rank     string         `json:"rank"`
	Team     FlexInt        `json:"team"` // 1=蓝 2=红 0/缺省=无队伍
	Match    *OsuScoreMatch `json:"match"`
}

// OsuScoreMatch API v2 中成绩所属的队伍信息
type OsuScoreMatch struct {
	Slot int    `json:"slot"`
	Team string `json:"team"` // red/blue/none
	Pass bool   `json:"pass"`
}

const (
	TeamNone = 0
	TeamBlue = 1
	TeamRed  = 2
)

var teamTypeIDs = map[string]int{
	"head-to-head": 0,
	"tag-coop":     1,
	"team-vs":      2,
	"tag-team-vs":  3,
}

// TeamTag 数字 team 优先，缺省时取 match.team 字符串
func (s OsuScore) TeamTag() int {
	if s.Team.Valid {
		return int(s.Team.Value)
	}
	if s.Match != nil {
		switch strings.ToLower(s.Match.Team) {
		case "red":
			return TeamRed
		case "blue":
			return TeamBlue
		}
	}
	return TeamNone
}

// TeamModeID 数字 team_mode 优先，缺省时按 team_type 字符串映射，未知返回 -1
func (g OsuGame) TeamModeID() int {
	if g.TeamMode.Valid {
		return int(g.TeamMode.Value)
	}
	if id, ok := teamTypeIDs[strings.ToLower(g.TeamType)]; ok {
		return id
	}
	return -1
}

// RulesetIndex ruleset_id 优先，其次 mode_int，缺省返回 -1
func (g OsuGame) RulesetIndex() int {
	if g.RulesetID.Valid {
		return int(g.RulesetID.Value)
	}
	if g.ModeInt.Valid {
		return int(g.ModeInt.Value)
	}
	return -1
}

// Set 返回谱面集，顶层 beatmapset 缺失时取 beatmap.beatmapset
func (g OsuGame) Set() *OsuBeatmapSet {
	if g.BeatmapSet != nil {
		return g.BeatmapSet
	}
	if g.Beatmap != nil {
		return g.Beatmap.BeatmapSet
	}
	return nil
}

// FlexInt 兼容 JSON 数字、数字字符串和 null；无法解析时 Valid 为 false
type FlexInt struct {
	Value int64
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		f.Value, f.Valid = n, true
		return nil
	}
	// 与 parseInt 一致：小数取整数部分
	if x, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(x) && !math.IsInf(x, 0) {
		f.Value, f.Valid = int64(x), true
	}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

// Int 取值，无效时返回 def
func (f FlexInt) Int(def int64) int64 {
	if !f.Valid {
		return def
	}
	return f.Value
}
