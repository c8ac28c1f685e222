package content

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// PageDocument is the generated page artifact for an internal content item.
// It holds structured data only; user content is never interpolated into
// source or markup at generation time. The HTTP layer renders it through
// an html/template, so every value is escaped at render time.
type PageDocument struct {
	Title               string             `json:"title"`
	IncludeTitle        bool               `json:"includeTitle"`
	CustomTitle         string             `json:"customTitle"`
	IncludeInstructions bool               `json:"includeInstructions"`
	Instructions        string             `json:"instructions"`
	IncludeTeams        bool               `json:"includeTeams"`
	Teams               []Team             `json:"teams"`
	IncludeMainActivity bool               `json:"includeMainActivity"`
	MainActivity        string             `json:"mainActivity"`
	IncludeLeaderboard  bool               `json:"includeLeaderboard"`
	Leaderboard         []LeaderboardEntry `json:"leaderboard"`
	GeneratedAt         string             `json:"generatedAt"`
}

// BuildPageDocument derives the page artifact from an item. Pure function
// of the item: a blob that fails to parse shows up as an empty block,
// which the renderer treats as disabled.
func BuildPageDocument(item *ContentItem) PageDocument {
	teams := ParseTeams(item.TeamsContent)
	if teams == nil {
		teams = []Team{}
	}
	leaderboard := ParseLeaderboard(item.LeaderboardContent)
	if leaderboard == nil {
		leaderboard = []LeaderboardEntry{}
	}
	return PageDocument{
		Title:               item.ItemName,
		IncludeTitle:        item.IncludeTitle,
		CustomTitle:         item.TitleContent,
		IncludeInstructions: item.IncludeInstructions,
		Instructions:        item.InstructionsContent,
		IncludeTeams:        item.IncludeTeams,
		Teams:               teams,
		IncludeMainActivity: item.IncludeMainActivity,
		MainActivity:        item.MainActivityContent,
		IncludeLeaderboard:  item.IncludeLeaderboard,
		Leaderboard:         leaderboard,
		GeneratedAt:         time.Now().UTC().Format(time.RFC3339),
	}
}

// PageGenerator writes, removes and loads page documents for one vertical
// under {root}/{vertical}/{slug}/page.json. The database row is the source
// of truth; these artifacts are derived and can always be rebuilt.
type PageGenerator struct {
	root     string
	vertical string
}

func NewPageGenerator(root string, vertical Vertical) *PageGenerator {
	return &PageGenerator{root: root, vertical: vertical.Name}
}

func (g *PageGenerator) pagePath(slug string) string {
	return filepath.Join(g.root, g.vertical, slug, "page.json")
}

// Write synthesizes the page document for an internal item. Directory or
// write failures propagate; the caller treats them as fatal to the
// enclosing create or update.
func (g *PageGenerator) Write(item *ContentItem) error {
	path := g.pagePath(item.Slug())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create page directory: %w", err)
	}

	doc := BuildPageDocument(item)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode page document: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write page document: %w", err)
	}
	return nil
}

// Remove deletes the artifact for a slug and prunes its directory if empty.
// A missing artifact is not an error.
func (g *PageGenerator) Remove(slug string) error {
	path := g.pagePath(slug)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove page document: %w", err)
	}

	// Prune the slug directory; os.Remove refuses non-empty directories,
	// which is exactly the best-effort semantics wanted here.
	os.Remove(filepath.Dir(path))
	return nil
}

// Load reads a previously generated page document.
func (g *PageGenerator) Load(slug string) (*PageDocument, error) {
	data, err := os.ReadFile(g.pagePath(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var doc PageDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode page document: %w", err)
	}
	return &doc, nil
}

// pageTemplate renders a page document. Blocks render only when their
// feature flag is set and the block has content.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
</head>
<body>
  <main class="content-page">
    <header>
      <h1>{{.Title}}</h1>
      <a href="/dashboard">Back to Dashboard</a>
    </header>
{{- if and .IncludeTitle .CustomTitle}}
    <section class="title-box">
      <h2>Title</h2>
      <p>{{.CustomTitle}}</p>
    </section>
{{- end}}
{{- if and .IncludeInstructions .Instructions}}
    <section class="instructions-box">
      <h2>Instructions</h2>
      <p>{{.Instructions}}</p>
    </section>
{{- end}}
{{- if and .IncludeTeams .Teams}}
    <section class="teams-box">
      <h2>Teams</h2>
      <table>
        <thead>
          <tr><th>Team Name</th><th>Members</th></tr>
        </thead>
        <tbody>
{{- range .Teams}}
          <tr><td>{{.Name}}</td><td>{{.Members}}</td></tr>
{{- end}}
        </tbody>
      </table>
    </section>
{{- end}}
{{- if and .IncludeMainActivity .MainActivity}}
    <section class="activity-box">
      <h2>Main Activity</h2>
      <p>{{.MainActivity}}</p>
    </section>
{{- end}}
{{- if and .IncludeLeaderboard .Leaderboard}}
    <section class="leaderboard-box">
      <h2>Leaderboard</h2>
      <ol>
{{- range .Leaderboard}}
        <li><span>{{.TeamName}}</span> <span>{{.Score}}</span></li>
{{- end}}
      </ol>
    </section>
{{- end}}
  </main>
</body>
</html>
`))
