package content

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Chasekung/Finance-Club/db"
	"github.com/Chasekung/Finance-Club/pkg/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	conn, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.Migrate(conn, "sqlite3"))

	return NewService(conn, CorporateFinance, t.TempDir(), logger.Get())
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func externalRequest(name string) CreateContentRequest {
	return CreateContentRequest{
		Section:     "News",
		ItemName:    name,
		LinkType:    LinkTypeExternal,
		ExternalURL: "https://example.com/article",
	}
}

func internalRequest(name, slug string) CreateContentRequest {
	return CreateContentRequest{
		Section:     "Challenges",
		ItemName:    name,
		LinkType:    LinkTypeInternal,
		InternalURL: slug,
	}
}

func TestCreateExternal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, externalRequest("Market recap"))
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Contains(t, item.ID, "-")
	assert.Nil(t, item.TemplatePath, "external links get no template path")
	require.NotNil(t, item.ExternalURL)
	assert.Equal(t, "https://example.com/article", *item.ExternalURL)
	assert.NotEmpty(t, item.CreatedAt)

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ItemName, got.ItemName)
}

func TestCreateInternalWithSlug(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, internalRequest("Stock pitch", "stock-pitch"))
	require.NoError(t, err)

	require.NotNil(t, item.TemplatePath)
	assert.Equal(t, "/corporate-finance/stock-pitch", *item.TemplatePath)

	// Page artifact exists and reflects the stored item.
	doc, err := svc.LoadPage("stock-pitch")
	require.NoError(t, err)
	assert.Equal(t, "Stock pitch", doc.Title)

	// Lookup by slug works alongside lookup by id.
	bySlug, err := svc.Get(ctx, "stock-pitch")
	require.NoError(t, err)
	assert.Equal(t, item.ID, bySlug.ID)
}

func TestCreateInternalWithoutSlugFallsBackToID(t *testing.T) {
	svc := newTestService(t)

	item, err := svc.Create(context.Background(), internalRequest("Case study", ""))
	require.NoError(t, err)

	require.NotNil(t, item.TemplatePath)
	assert.Equal(t, "/corporate-finance/"+item.ID, *item.TemplatePath)

	_, err = svc.LoadPage(item.ID)
	require.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateContentRequest
	}{
		{"missing section", CreateContentRequest{ItemName: "x", LinkType: LinkTypeExternal, ExternalURL: "https://x"}},
		{"missing item name", CreateContentRequest{Section: "News", LinkType: LinkTypeExternal, ExternalURL: "https://x"}},
		{"missing link type", CreateContentRequest{Section: "News", ItemName: "x"}},
		{"bad link type", CreateContentRequest{Section: "News", ItemName: "x", LinkType: "ftp"}},
		{"external without url", CreateContentRequest{Section: "News", ItemName: "x", LinkType: LinkTypeExternal}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestCreateSanitizesRichText(t *testing.T) {
	svc := newTestService(t)

	req := internalRequest("Workshop", "workshop")
	req.IncludeTitle = true
	req.TitleContent = `<h1>Welcome</h1><script>alert("xss")</script>`

	item, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.NotContains(t, item.TitleContent, "<script>")
	assert.Contains(t, item.TitleContent, "Welcome")
}

func TestListGroupsAndOrdersSections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, externalRequest("News item"))
	require.NoError(t, err)

	custom := externalRequest("Custom item")
	custom.Section = "new"
	custom.NewSectionName = "alumni events"
	_, err = svc.Create(ctx, custom)
	require.NoError(t, err)

	listing, err := svc.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, FixedSections, listing.FixedSections)

	names := make([]string, 0, len(listing.Content))
	for _, group := range listing.Content {
		names = append(names, group.Name)
	}
	assert.Equal(t, []string{"News", "Challenges", "Competitions", "Alumni Events"}, names)

	// Fixed sections are present even when empty, as arrays.
	byName := map[string][]ContentItem{}
	for _, group := range listing.Content {
		byName[group.Name] = group.Items
	}
	assert.Len(t, byName["News"], 1)
	assert.NotNil(t, byName["Challenges"])
	assert.Empty(t, byName["Challenges"])
	assert.Len(t, byName["Alumni Events"], 1)

	// JSON keeps the section order.
	data, err := json.Marshal(listing.Content)
	require.NoError(t, err)
	body := string(data)
	assert.Less(t, strings.Index(body, `"News"`), strings.Index(body, `"Challenges"`))
	assert.Less(t, strings.Index(body, `"Competitions"`), strings.Index(body, `"Alumni Events"`))
}

func TestUpdateMergePatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	req := internalRequest("Original", "original")
	req.IncludeLeaderboard = true
	req.LeaderboardContent = `[{"teamName":"Alpha","score":10}]`
	item, err := svc.Create(ctx, req)
	require.NoError(t, err)

	// Patch one field; the rest must survive untouched.
	updated, err := svc.Update(ctx, item.ID, UpdateContentRequest{ItemName: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.ItemName)
	assert.Equal(t, item.Section, updated.Section)
	assert.True(t, updated.IncludeLeaderboard)
	assert.Equal(t, req.LeaderboardContent, updated.LeaderboardContent)

	// Present-but-falsy values overwrite.
	updated, err = svc.Update(ctx, item.ID, UpdateContentRequest{
		IncludeLeaderboard: boolPtr(false),
		LeaderboardContent: strPtr(""),
	})
	require.NoError(t, err)
	assert.False(t, updated.IncludeLeaderboard)
	assert.Empty(t, updated.LeaderboardContent)

	// Empty patch is a no-op.
	again, err := svc.Update(ctx, item.ID, UpdateContentRequest{})
	require.NoError(t, err)
	assert.Equal(t, updated.ItemName, again.ItemName)
	assert.Equal(t, updated.IncludeLeaderboard, again.IncludeLeaderboard)
}

func TestUpdateIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, internalRequest("Original", "original"))
	require.NoError(t, err)

	patch := UpdateContentRequest{
		ItemName:     strPtr("Renamed"),
		IncludeTeams: boolPtr(true),
		TeamsContent: strPtr(`[{"name":"Alpha","members":"Jo"}]`),
	}

	once, err := svc.Update(ctx, item.ID, patch)
	require.NoError(t, err)
	twice, err := svc.Update(ctx, item.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, once, twice, "re-applying the same patch changes nothing")
}

func TestCustomSectionInternalItemScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateContentRequest{
		Section:            "new",
		NewSectionName:     "Workshops",
		ItemName:           "Accounting 101",
		LinkType:           LinkTypeInternal,
		InternalURL:        "acct-101",
		IncludeLeaderboard: true,
		LeaderboardContent: `[{"teamName":"A","score":0}]`,
	})
	require.NoError(t, err)

	require.NotNil(t, item.TemplatePath)
	assert.Equal(t, "/corporate-finance/acct-101", *item.TemplatePath)

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	parsed := got.Parsed()
	require.Len(t, parsed.LeaderboardContent, 1)
	assert.Equal(t, LeaderboardEntry{TeamName: "A", Score: 0}, parsed.LeaderboardContent[0])

	listing, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "Workshops", listing.Content[len(listing.Content)-1].Name)
	require.Len(t, listing.Content[len(listing.Content)-1].Items, 1)
}

func TestUpdateSlugChangeMovesArtifact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, internalRequest("Challenge", "old-slug"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, item.ID, UpdateContentRequest{InternalURL: strPtr("new-slug")})
	require.NoError(t, err)
	require.NotNil(t, updated.TemplatePath)
	assert.Equal(t, "/corporate-finance/new-slug", *updated.TemplatePath)

	_, err = svc.LoadPage("new-slug")
	require.NoError(t, err)
	_, err = svc.LoadPage("old-slug")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateInternalToExternalRemovesArtifact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, internalRequest("Challenge", "challenge"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, item.ID, UpdateContentRequest{
		LinkType:    strPtr(LinkTypeExternal),
		ExternalURL: strPtr("https://example.com/moved"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.TemplatePath)

	_, err = svc.LoadPage("challenge")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateValidatesMergedState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, externalRequest("Article"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, item.ID, UpdateContentRequest{ExternalURL: strPtr("")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Update(ctx, "does-not-exist", UpdateContentRequest{ItemName: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesRowAndArtifact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, internalRequest("Doomed", "doomed"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, item.ID))

	_, err = svc.Get(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.LoadPage("doomed")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, item.ID), ErrNotFound)
}

func TestRegenerateAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, internalRequest("First", "first"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, internalRequest("Second", "second"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, externalRequest("External"))
	require.NoError(t, err)

	// Simulate artifact loss, then recover.
	require.NoError(t, os.RemoveAll(filepath.Dir(svc.pages.pagePath("first"))))
	_, err = svc.LoadPage("first")
	require.ErrorIs(t, err, ErrNotFound)

	count, err := svc.RegenerateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "only internal items get pages")

	doc, err := svc.LoadPage("first")
	require.NoError(t, err)
	assert.Equal(t, "First", doc.Title)
}
