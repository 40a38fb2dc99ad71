package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"OsuMatchView/internal/model"
)

func decodeMatch(t *testing.T, raw string) *model.OsuMatchResponse {
	t.Helper()
	var m model.OsuMatchResponse
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &m
}

// gameJSON 生成一局的最小 JSON，scores 为原始 JSON 片段
func gameJSON(id, teamMode int, scores ...string) string {
	return fmt.Sprintf(`{"game":{"id":%d,"ruleset_id":0,"team_mode":%d,
		"beatmap":{"id":1,"version":"Insane"},
		"beatmapset":{"id":%d,"title":"Map%d"},
		"scores":[%s]}}`, id, teamMode, 100+id, id, strings.Join(scores, ","))
}

func TestBuildMatchSummary_TeamVsExample(t *testing.T) {
	data := decodeMatch(t, `{
		"match":{"id":42,"name":"Test match"},
		"users":[{"id":1,"username":"Alice","avatar_url":"a.png"},{"id":2,"username":"Bob"}],
		"events":[`+gameJSON(1, 2,
		`{"user_id":1,"team":2,"score":1000,"accuracy":0.95,"max_combo":200,"rank":"S"}`,
		`{"user_id":2,"team":1,"score":800,"accuracy":0.90,"max_combo":150,"rank":"A"}`)+`]}`)

	summary, err := BuildMatchSummary(data, true)
	if err != nil {
		t.Fatalf("BuildMatchSummary: %v", err)
	}
	if summary.ID != 42 || summary.MatchName != "Test match" || len(summary.Games) != 1 {
		t.Fatalf("unexpected header: %+v", summary)
	}

	g := summary.Games[0]
	if g.Red != 1000 || g.Blue != 800 || g.Winner != "Red Wins" {
		t.Fatalf("red=%d blue=%d winner=%q", g.Red, g.Blue, g.Winner)
	}
	if g.MatchType != "Team Vs" || g.GameMode != "Osu" {
		t.Fatalf("labels: %q %q", g.GameMode, g.MatchType)
	}
	if g.MapDisplay != "Map1 [Insane]" {
		t.Fatalf("mapDisplay = %q", g.MapDisplay)
	}
	if g.Backdrop != "https://assets.ppy.sh/beatmaps/101/covers/cover.jpg" {
		t.Fatalf("backdrop = %q", g.Backdrop)
	}

	wantRed := model.PlayerView{Name: "Alice", Avatar: "a.png", Score: 1000, Accuracy: "95.00", Combo: 200, Grade: "S"}
	wantBlue := model.PlayerView{Name: "Bob", Score: 800, Accuracy: "90.00", Combo: 150, Grade: "A"}
	if len(g.RedPlayers) != 1 || g.RedPlayers[0] != wantRed {
		t.Fatalf("redPlayers = %+v", g.RedPlayers)
	}
	if len(g.BluePlayers) != 1 || g.BluePlayers[0] != wantBlue {
		t.Fatalf("bluePlayers = %+v", g.BluePlayers)
	}
}

func TestBuildMatchSummary_HeadToHeadIndexFallback(t *testing.T) {
	data := decodeMatch(t, `{
		"match":{"id":1,"name":"no context here"},
		"users":[{"id":1,"username":"A"},{"id":2,"username":"B"},{"id":3,"username":"C"}],
		"events":[`+gameJSON(1, 0,
		`{"user_id":1,"score":10}`,
		`{"user_id":2,"score":20}`,
		`{"user_id":3,"score":30}`)+`]}`)

	summary, err := BuildMatchSummary(data, false)
	if err != nil {
		t.Fatalf("BuildMatchSummary: %v", err)
	}
	g := summary.Games[0]
	if len(g.RedPlayers) != 1 || g.RedPlayers[0].Name != "A" {
		t.Fatalf("redPlayers = %+v", g.RedPlayers)
	}
	if len(g.BluePlayers) != 2 || g.BluePlayers[0].Name != "B" || g.BluePlayers[1].Name != "C" {
		t.Fatalf("bluePlayers = %+v", g.BluePlayers)
	}
	if g.Red != 10 || g.Blue != 50 || g.Winner != "Blue Wins" {
		t.Fatalf("red=%d blue=%d winner=%q", g.Red, g.Blue, g.Winner)
	}
	if g.MatchType != "Head-to-Head" {
		t.Fatalf("matchType = %q", g.MatchType)
	}
}

func TestBuildMatchSummary_HeadToHeadTitleContext(t *testing.T) {
	data := decodeMatch(t, `{
		"match":{"id":1,"name":"OWC: (Korea) vs (Japan)"},
		"users":[{"id":1,"username":"JAPAN_ace"},{"id":2,"username":"korea_star"}],
		"events":[`+gameJSON(1, 1,
		`{"user_id":1,"score":500}`,
		`{"user_id":2,"score":400}`)+`]}`)

	summary, err := BuildMatchSummary(data, false)
	if err != nil {
		t.Fatalf("BuildMatchSummary: %v", err)
	}
	g := summary.Games[0]
	// 名字匹配优先于 idx==0
	if len(g.RedPlayers) != 1 || g.RedPlayers[0].Name != "korea_star" {
		t.Fatalf("redPlayers = %+v", g.RedPlayers)
	}
	if len(g.BluePlayers) != 1 || g.BluePlayers[0].Name != "JAPAN_ace" {
		t.Fatalf("bluePlayers = %+v", g.BluePlayers)
	}
	if g.Winner != "Blue Wins" {
		t.Fatalf("winner = %q", g.Winner)
	}
}

func TestBuildMatchSummary_ReversesGames(t *testing.T) {
	data := decodeMatch(t, `{
		"match":{"id":1,"name":"m"},
		"users":[],
		"events":[{"id":1},`+gameJSON(1, 2)+`,{"id":3},`+gameJSON(2, 2)+`,`+gameJSON(3, 2)+`]}`)

	reversed, err := BuildMatchSummary(data, true)
	if err != nil {
		t.Fatalf("BuildMatchSummary: %v", err)
	}
	upstream, err := BuildMatchSummary(data, false)
	if err != nil {
		t.Fatalf("BuildMatchSummary: %v", err)
	}

	if len(reversed.Games) != 3 || len(upstream.Games) != 3 {
		t.Fatalf("want 3 games, got %d / %d", len(reversed.Games), len(upstream.Games))
	}
	for i := range upstream.Games {
		if upstream.Games[i].MapDisplay != fmt.Sprintf("Map%d [Insane]", i+1) {
			t.Fatalf("upstream order broken at %d: %q", i, upstream.Games[i].MapDisplay)
		}
		if reversed.Games[i].MapDisplay != upstream.Games[len(upstream.Games)-1-i].MapDisplay {
			t.Fatalf("games[%d] = %q, not reversed", i, reversed.Games[i].MapDisplay)
		}
	}
}

func TestBuildMatchSummary_Defaults(t *testing.T) {
	data := decodeMatch(t, `{
		"match":{"id":1,"name":"m"},
		"users":[],
		"events":[{"game":{"id":9,"ruleset_id":7,"team_mode":9,
			"beatmap":{"version":"Hard"},"beatmapset":{"id":5,"title":"T"},
			"scores":[{"user_id":99,"score":"not a number","accuracy":0.5}]}}]}`)

	summary, err := BuildMatchSummary(data, true)
	if err != nil {
		t.Fatalf("BuildMatchSummary: %v", err)
	}
	g := summary.Games[0]
	if g.GameMode != "Osu" || g.MatchType != "Standard" {
		t.Fatalf("labels: %q %q", g.GameMode, g.MatchType)
	}
	// team mode 9 >= 2 且 team 缺省 => 蓝队
	if len(g.BluePlayers) != 1 {
		t.Fatalf("bluePlayers = %+v", g.BluePlayers)
	}
	p := g.BluePlayers[0]
	want := model.PlayerView{Name: "Unknown", Avatar: "", Score: 0, Accuracy: "50.00", Combo: 0, Grade: "F"}
	if p != want {
		t.Fatalf("player = %+v, want %+v", p, want)
	}
	if g.Winner != "Draw" {
		t.Fatalf("winner = %q", g.Winner)
	}
}

func TestBuildMatchSummary_APIv2Fields(t *testing.T) {
	data := decodeMatch(t, `{
		"match":{"id":7,"name":"v2"},
		"users":[{"id":1,"username":"r"},{"id":2,"username":"b"}],
		"events":[{"id":1,"game":{"id":1,"mode_int":3,"team_type":"team-vs",
			"beatmap":{"version":"4K","beatmapset":{"id":77,"title":"Nested"}},
			"scores":[
				{"user_id":2,"score":300,"accuracy":1,"match":{"slot":0,"team":"blue","pass":true}},
				{"user_id":1,"score":"200","accuracy":0.987654,"match":{"slot":1,"team":"red","pass":true}}
			]}}]}`)

	summary, err := BuildMatchSummary(data, true)
	if err != nil {
		t.Fatalf("BuildMatchSummary: %v", err)
	}
	g := summary.Games[0]
	if g.GameMode != "Mania" || g.MatchType != "Team Vs" {
		t.Fatalf("labels: %q %q", g.GameMode, g.MatchType)
	}
	if g.MapDisplay != "Nested [4K]" || g.Backdrop != "https://assets.ppy.sh/beatmaps/77/covers/cover.jpg" {
		t.Fatalf("map: %q %q", g.MapDisplay, g.Backdrop)
	}
	if g.Red != 200 || g.Blue != 300 {
		t.Fatalf("red=%d blue=%d", g.Red, g.Blue)
	}
	if g.RedPlayers[0].Accuracy != "98.77" || g.BluePlayers[0].Accuracy != "100.00" {
		t.Fatalf("accuracy: %q %q", g.RedPlayers[0].Accuracy, g.BluePlayers[0].Accuracy)
	}
}

func TestBuildMatchSummary_MissingBeatmapFailsWholeMatch(t *testing.T) {
	data := decodeMatch(t, `{
		"match":{"id":1,"name":"m"},
		"users":[],
		"events":[`+gameJSON(1, 2)+`,{"id":2,"game":{"id":2,"team_mode":2,"beatmap":null,"scores":[]}}]}`)

	if _, err := BuildMatchSummary(data, true); err == nil {
		t.Fatal("want error for game without beatmap")
	}
	if _, err := BuildMatchSummary(nil, true); err == nil {
		t.Fatal("want error for nil payload")
	}
}

func TestBuildMatchSummary_TotalsEqualPlayerSum(t *testing.T) {
	for _, mode := range []int{0, 1, 2, 3} {
		data := decodeMatch(t, `{
			"match":{"id":1,"name":"(Red) vs (Blue)"},
			"users":[{"id":1,"username":"redfox"},{"id":2,"username":"bluejay"},{"id":3,"username":"x"}],
			"events":[`+gameJSON(1, mode,
			`{"user_id":1,"team":1,"score":111}`,
			`{"user_id":2,"team":2,"score":222}`,
			`{"user_id":3,"score":333}`,
			`{"user_id":4,"team":2,"score":444}`)+`]}`)

		summary, err := BuildMatchSummary(data, true)
		if err != nil {
			t.Fatalf("mode %d: %v", mode, err)
		}
		g := summary.Games[0]
		var sum int64
		for _, p := range append(append([]model.PlayerView{}, g.RedPlayers...), g.BluePlayers...) {
			sum += p.Score
		}
		if g.Red+g.Blue != sum || sum != 1110 {
			t.Fatalf("mode %d: red+blue=%d players=%d", mode, g.Red+g.Blue, sum)
		}
		if len(g.RedPlayers)+len(g.BluePlayers) != 4 {
			t.Fatalf("mode %d: every score must land on exactly one side", mode)
		}
		// team=2 一律红队
		for _, name := range []string{"bluejay", "Unknown"} {
			found := false
			for _, p := range g.RedPlayers {
				if p.Name == name {
					found = true
				}
			}
			if !found {
				t.Fatalf("mode %d: %s (team=2) should be red, red=%+v", mode, name, g.RedPlayers)
			}
		}
	}
}

func TestIsRedTeam(t *testing.T) {
	ctx := &TeamContext{Red: "korea", Blue: "japan"}
	cases := []struct {
		name     string
		teamTag  int
		teamMode int
		player   string
		idx      int
		ctx      *TeamContext
		want     bool
	}{
		{"team vs red tag", 2, 2, "x", 3, nil, true},
		{"team vs blue tag", 1, 2, "x", 0, nil, false},
		{"team vs no tag idx0", 0, 3, "x", 0, nil, false},
		{"h2h red tag wins over blue name", 2, 0, "japan1", 1, ctx, true},
		{"h2h idx0 no ctx", 0, 0, "x", 0, nil, true},
		{"h2h idx1 no ctx", 0, 0, "x", 1, nil, false},
		{"h2h red name", 0, 1, "KOREA_1", 4, ctx, true},
		{"h2h blue name at idx0", 0, 0, "Japan_1", 0, ctx, false},
		{"h2h no name match idx0", 0, 0, "someone", 0, ctx, true},
		{"h2h no name match idx2", 0, 0, "someone", 2, ctx, false},
		{"unknown mode treated as h2h", 0, -1, "x", 0, nil, true},
	}
	for _, tc := range cases {
		if got := IsRedTeam(tc.teamTag, tc.teamMode, tc.player, tc.idx, tc.ctx); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseTeamContext(t *testing.T) {
	ctx := ParseTeamContext("OWC2024: (South Korea) vs (United States)")
	if ctx == nil || ctx.Red != "south korea" || ctx.Blue != "united states" {
		t.Fatalf("ctx = %+v", ctx)
	}
	for _, title := range []string{"", "Korea vs Japan", "(Korea) VS (Japan)", "(Korea) v (Japan)"} {
		if ParseTeamContext(title) != nil {
			t.Fatalf("%q should not yield a context", title)
		}
	}
}

func TestLabels(t *testing.T) {
	want := []string{"Osu", "Taiko", "Catch", "Mania"}
	for i, w := range want {
		if got := RulesetLabel(i); got != w {
			t.Errorf("RulesetLabel(%d) = %q, want %q", i, got, w)
		}
	}
	if RulesetLabel(-1) != "Osu" || RulesetLabel(4) != "Osu" {
		t.Error("out-of-range ruleset should default to Osu")
	}

	modes := []string{"Head-to-Head", "Tag Co-op", "Team Vs", "Tag Team Vs"}
	for i, w := range modes {
		if got := TeamModeLabel(i); got != w {
			t.Errorf("TeamModeLabel(%d) = %q, want %q", i, got, w)
		}
	}
	if TeamModeLabel(-1) != "Standard" || TeamModeLabel(4) != "Standard" {
		t.Error("out-of-range team mode should default to Standard")
	}
}

func TestWinnerLabel(t *testing.T) {
	if WinnerLabel(2, 1) != "Red Wins" || WinnerLabel(1, 2) != "Blue Wins" || WinnerLabel(3, 3) != "Draw" {
		t.Fatal("winner labels mismatch")
	}
	if WinnerLabel(0, 0) != "Draw" {
		t.Fatal("0-0 should be a draw")
	}
}

func TestFormatAccuracy_TwoDecimals(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		got := FormatAccuracy(float64(i) / 1000)
		dot := strings.IndexByte(got, '.')
		if dot < 0 || len(got)-dot-1 != 2 {
			t.Fatalf("FormatAccuracy(%v) = %q, want 2 decimals", float64(i)/1000, got)
		}
	}
	if FormatAccuracy(0.95) != "95.00" || FormatAccuracy(1) != "100.00" || FormatAccuracy(0) != "0.00" {
		t.Fatal("unexpected accuracy formatting")
	}
}
