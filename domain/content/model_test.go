package content

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeamsRoundTrip(t *testing.T) {
	teams := []Team{
		{Name: "Alpha", Members: "Jordan, Sam"},
		{Name: "Beta", Members: "Riley"},
		{Name: "Gamma", Members: ""},
	}

	raw := SerializeTeams(teams)
	parsed := ParseTeams(raw)

	require.Equal(t, teams, parsed, "round-trip should preserve order and values")
}

func TestParseLeaderboardRoundTrip(t *testing.T) {
	entries := []LeaderboardEntry{
		{TeamName: "Alpha", Score: 12},
		{TeamName: "Beta", Score: 0},
		{TeamName: "Gamma", Score: -3},
	}

	raw := SerializeLeaderboard(entries)
	parsed := ParseLeaderboard(raw)

	require.Equal(t, entries, parsed)
}

func TestParseTeamsDefensive(t *testing.T) {
	assert.Nil(t, ParseTeams(""))
	assert.Nil(t, ParseTeams("not json"))
	assert.Nil(t, ParseTeams(`{"name":"not an array"}`))
	assert.Empty(t, ParseTeams("[]"))
}

func TestParseLeaderboardDefensive(t *testing.T) {
	assert.Nil(t, ParseLeaderboard("garbage"))
	assert.Nil(t, ParseLeaderboard(`[{"teamName":"A","score":"not a number"}]`))
}

func TestEffectiveSection(t *testing.T) {
	item := ContentItem{Section: "News"}
	assert.Equal(t, "News", item.EffectiveSection())

	custom := "Workshops"
	item = ContentItem{Section: "new", NewSectionName: &custom}
	assert.Equal(t, "Workshops", item.EffectiveSection())

	empty := ""
	item = ContentItem{Section: "Challenges", NewSectionName: &empty}
	assert.Equal(t, "Challenges", item.EffectiveSection())
}

func TestSlug(t *testing.T) {
	slug := "acct-101"
	item := ContentItem{ID: "123-abc", InternalURL: &slug}
	assert.Equal(t, "acct-101", item.Slug())

	item = ContentItem{ID: "123-abc"}
	assert.Equal(t, "123-abc", item.Slug())
}

func TestParsedItemReplacesBlobs(t *testing.T) {
	item := ContentItem{
		ID:                 "1-a",
		Section:            "News",
		ItemName:           "Sample",
		LinkType:           LinkTypeExternal,
		IncludeLeaderboard: true,
		LeaderboardContent: `[{"teamName":"A","score":0}]`,
		TeamsContent:       "broken json",
	}

	data, err := json.Marshal(item.Parsed())
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	leaderboard, ok := out["leaderboardContent"].([]interface{})
	require.True(t, ok, "leaderboardContent should marshal as an array, got %T", out["leaderboardContent"])
	require.Len(t, leaderboard, 1)

	entry := leaderboard[0].(map[string]interface{})
	assert.Equal(t, "A", entry["teamName"])
	assert.Equal(t, float64(0), entry["score"])

	// Unparseable blob degrades to an empty array, not an error
	teams, ok := out["teamsContent"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, teams)
}

func TestGroupedContentMarshalPreservesOrder(t *testing.T) {
	grouped := GroupedContent{
		{Name: "News", Items: []ContentItem{}},
		{Name: "Challenges", Items: []ContentItem{}},
		{Name: "Competitions", Items: []ContentItem{}},
		{Name: "Workshops", Items: []ContentItem{}},
	}

	data, err := json.Marshal(grouped)
	require.NoError(t, err)

	body := string(data)
	newsIdx := indexOf(t, body, `"News"`)
	challengesIdx := indexOf(t, body, `"Challenges"`)
	competitionsIdx := indexOf(t, body, `"Competitions"`)
	workshopsIdx := indexOf(t, body, `"Workshops"`)

	assert.Less(t, newsIdx, challengesIdx)
	assert.Less(t, challengesIdx, competitionsIdx)
	assert.Less(t, competitionsIdx, workshopsIdx)
}

func indexOf(t *testing.T, s, substr string) int {
	t.Helper()
	idx := strings.Index(s, substr)
	require.GreaterOrEqual(t, idx, 0, "expected %q in %q", substr, s)
	return idx
}
