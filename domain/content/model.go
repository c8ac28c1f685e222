package content

import "encoding/json"

// Link types for a content item. Exactly one of the URL fields is
// authoritative, dictated by the link type.
const (
	LinkTypeExternal = "external"
	LinkTypeInternal = "internal"
)

// FixedSections are the always-present dashboard categories, in display order.
var FixedSections = []string{"News", "Challenges", "Competitions"}

// Vertical identifies one of the two content domains. Both share the same
// row shape and service code; only the table and URL prefix differ.
type Vertical struct {
	Name  string // URL segment, e.g. "corporate-finance"
	Table string
}

var (
	CorporateFinance = Vertical{Name: "corporate-finance", Table: "corporate_finance_content"}
	PersonalFinance  = Vertical{Name: "personal-finance", Table: "personal_finance_content"}
)

// ContentItem is one row of a vertical's content table. The teams and
// leaderboard blobs are stored verbatim as JSON text; readers parse them
// defensively.
type ContentItem struct {
	ID                  string  `db:"id" json:"id"`
	Section             string  `db:"section" json:"section"`
	NewSectionName      *string `db:"new_section_name" json:"newSectionName,omitempty"`
	ItemName            string  `db:"item_name" json:"itemName"`
	LinkType            string  `db:"link_type" json:"linkType"`
	ExternalURL         *string `db:"external_url" json:"externalUrl,omitempty"`
	InternalURL         *string `db:"internal_url" json:"internalUrl,omitempty"`
	IncludeTitle        bool    `db:"include_title" json:"includeTitle"`
	IncludeInstructions bool    `db:"include_instructions" json:"includeInstructions"`
	IncludeTeams        bool    `db:"include_teams" json:"includeTeams"`
	IncludeMainActivity bool    `db:"include_main_activity" json:"includeMainActivity"`
	IncludeLeaderboard  bool    `db:"include_leaderboard" json:"includeLeaderboard"`
	TitleContent        string  `db:"title_content" json:"titleContent"`
	InstructionsContent string  `db:"instructions_content" json:"instructionsContent"`
	TeamsContent        string  `db:"teams_content" json:"teamsContent"`
	MainActivityContent string  `db:"main_activity_content" json:"mainActivityContent"`
	LeaderboardContent  string  `db:"leaderboard_content" json:"leaderboardContent"`
	TemplatePath        *string `db:"template_path" json:"templatePath,omitempty"`
	CreatedAt           string  `db:"created_at" json:"createdAt"`
}

// EffectiveSection returns the section a row is displayed under: the custom
// name when one was supplied at creation, otherwise the section itself.
func (i *ContentItem) EffectiveSection() string {
	if i.NewSectionName != nil && *i.NewSectionName != "" {
		return *i.NewSectionName
	}
	return i.Section
}

// Slug returns the path segment a generated page lives at.
func (i *ContentItem) Slug() string {
	if i.InternalURL != nil && *i.InternalURL != "" {
		return *i.InternalURL
	}
	return i.ID
}

// Team is one entry of a parsed teams blob. Members is a free-text
// comma-separated string.
type Team struct {
	Name    string `json:"name"`
	Members string `json:"members"`
}

// LeaderboardEntry is one entry of a parsed leaderboard blob. Entries are
// expected to match teams 1:1 by name when both features are enabled, but
// that is a UI convention the service does not enforce.
type LeaderboardEntry struct {
	TeamName string `json:"teamName"`
	Score    int    `json:"score"`
}

// ParseTeams decodes a teams blob. A missing or unparseable blob degrades
// to nil rather than an error so a bad blob reads as "feature disabled".
func ParseTeams(raw string) []Team {
	if raw == "" {
		return nil
	}
	var teams []Team
	if err := json.Unmarshal([]byte(raw), &teams); err != nil {
		return nil
	}
	return teams
}

// ParseLeaderboard decodes a leaderboard blob with the same defensive
// semantics as ParseTeams.
func ParseLeaderboard(raw string) []LeaderboardEntry {
	if raw == "" {
		return nil
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

// SerializeTeams encodes teams into their stored form.
func SerializeTeams(teams []Team) string {
	b, err := json.Marshal(teams)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// SerializeLeaderboard encodes leaderboard entries into their stored form.
func SerializeLeaderboard(entries []LeaderboardEntry) string {
	b, err := json.Marshal(entries)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// CreateContentRequest is the POST payload for new content.
type CreateContentRequest struct {
	Section             string `json:"section"`
	NewSectionName      string `json:"newSectionName"`
	ItemName            string `json:"itemName"`
	LinkType            string `json:"linkType"`
	ExternalURL         string `json:"externalUrl"`
	InternalURL         string `json:"internalUrl"`
	IncludeTitle        bool   `json:"includeTitle"`
	IncludeInstructions bool   `json:"includeInstructions"`
	IncludeTeams        bool   `json:"includeTeams"`
	IncludeMainActivity bool   `json:"includeMainActivity"`
	IncludeLeaderboard  bool   `json:"includeLeaderboard"`
	TitleContent        string `json:"titleContent"`
	InstructionsContent string `json:"instructionsContent"`
	TeamsContent        string `json:"teamsContent"`
	MainActivityContent string `json:"mainActivityContent"`
	LeaderboardContent  string `json:"leaderboardContent"`
}

// UpdateContentRequest is a merge-patch: only fields present in the JSON
// body overwrite, and a present-but-falsy value (empty string, false) still
// overwrites. Absent fields stay nil and keep their stored value.
type UpdateContentRequest struct {
	Section             *string `json:"section"`
	NewSectionName      *string `json:"newSectionName"`
	ItemName            *string `json:"itemName"`
	LinkType            *string `json:"linkType"`
	ExternalURL         *string `json:"externalUrl"`
	InternalURL         *string `json:"internalUrl"`
	IncludeTitle        *bool   `json:"includeTitle"`
	IncludeInstructions *bool   `json:"includeInstructions"`
	IncludeTeams        *bool   `json:"includeTeams"`
	IncludeMainActivity *bool   `json:"includeMainActivity"`
	IncludeLeaderboard  *bool   `json:"includeLeaderboard"`
	TitleContent        *string `json:"titleContent"`
	InstructionsContent *string `json:"instructionsContent"`
	TeamsContent        *string `json:"teamsContent"`
	MainActivityContent *string `json:"mainActivityContent"`
	LeaderboardContent  *string `json:"leaderboardContent"`
}

// ParsedItem is the single-item response shape: the raw teams and
// leaderboard blobs replaced with their parsed arrays.
type ParsedItem struct {
	ContentItem
	TeamsContent       []Team             `json:"teamsContent"`
	LeaderboardContent []LeaderboardEntry `json:"leaderboardContent"`
}

// Parsed converts an item to its response shape. Parsed arrays are never
// nil so clients always see arrays.
func (i ContentItem) Parsed() ParsedItem {
	teams := ParseTeams(i.TeamsContent)
	if teams == nil {
		teams = []Team{}
	}
	leaderboard := ParseLeaderboard(i.LeaderboardContent)
	if leaderboard == nil {
		leaderboard = []LeaderboardEntry{}
	}
	return ParsedItem{
		ContentItem:        i,
		TeamsContent:       teams,
		LeaderboardContent: leaderboard,
	}
}

// CreateContentResponse is the 201 envelope for successful creates.
type CreateContentResponse struct {
	Message string       `json:"message"`
	Content *ContentItem `json:"content"`
}
