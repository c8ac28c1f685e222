package content

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"path"
	"sort"
	"time"

	"github.com/Chasekung/Finance-Club/pkg/logger"
	"github.com/Chasekung/Finance-Club/utils"
	"github.com/jmoiron/sqlx"
	"github.com/microcosm-cc/bluemonday"
)

// ErrPageWrite wraps page-generation failures so the HTTP layer can report
// them distinctly from database errors.
var ErrPageWrite = errors.New("page generation failed")

// ValidationError is a user-correctable input error (maps to 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Service orchestrates the content store and page generator for one
// vertical. Page artifacts are derived state: created on internal create,
// regenerated on update, removed on delete, and rebuildable in bulk.
type Service struct {
	store    *Store
	pages    *PageGenerator
	vertical Vertical
	policy   *bluemonday.Policy
	log      logger.Logger
}

func NewService(db *sqlx.DB, vertical Vertical, pagesDir string, log logger.Logger) *Service {
	return &Service{
		store:    NewStore(db, vertical),
		pages:    NewPageGenerator(pagesDir, vertical),
		vertical: vertical,
		policy:   bluemonday.UGCPolicy(),
		log:      log.WithComponent("content").WithFields(logger.Vertical(vertical.Name)),
	}
}

// Store exposes the underlying store, mainly for the health check and tests.
func (s *Service) Store() *Store { return s.store }

// Vertical returns the vertical this service serves.
func (s *Service) Vertical() Vertical { return s.vertical }

const idSuffixLen = 6

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newContentID builds a timestamp-plus-random identifier. Collisions are
// practically impossible but the caller still checks and re-rolls rather
// than overwriting.
func newContentID() string {
	suffix := make([]byte, idSuffixLen)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(idAlphabet))))
		if err != nil {
			// crypto/rand failure means the process is in serious trouble;
			// fall back to a fixed character rather than panic.
			suffix[i] = idAlphabet[0]
			continue
		}
		suffix[i] = idAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}

func (s *Service) generateID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		id := newContentID()
		exists, err := s.store.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", errors.New("could not generate a unique content id")
}

func validateLink(linkType, externalURL string) error {
	switch linkType {
	case LinkTypeExternal:
		if externalURL == "" {
			return &ValidationError{Message: "External URL is required for external links"}
		}
	case LinkTypeInternal:
		// The slug is optional; the generated id stands in when absent.
	default:
		return &ValidationError{Message: "Link type must be external or internal"}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create validates and persists a new item. For internal links the page
// artifact is written as part of the operation: if generation fails the
// row is rolled back so no row ever references a missing page.
func (s *Service) Create(ctx context.Context, req CreateContentRequest) (*ContentItem, error) {
	if req.Section == "" || req.ItemName == "" || req.LinkType == "" {
		return nil, &ValidationError{Message: "Missing required fields"}
	}
	if err := validateLink(req.LinkType, req.ExternalURL); err != nil {
		return nil, err
	}

	id, err := s.generateID(ctx)
	if err != nil {
		return nil, err
	}

	item := &ContentItem{
		ID:                  id,
		Section:             req.Section,
		NewSectionName:      optional(req.NewSectionName),
		ItemName:            req.ItemName,
		LinkType:            req.LinkType,
		ExternalURL:         optional(req.ExternalURL),
		InternalURL:         optional(req.InternalURL),
		IncludeTitle:        req.IncludeTitle,
		IncludeInstructions: req.IncludeInstructions,
		IncludeTeams:        req.IncludeTeams,
		IncludeMainActivity: req.IncludeMainActivity,
		IncludeLeaderboard:  req.IncludeLeaderboard,
		TitleContent:        s.policy.Sanitize(req.TitleContent),
		InstructionsContent: s.policy.Sanitize(req.InstructionsContent),
		TeamsContent:        req.TeamsContent,
		MainActivityContent: s.policy.Sanitize(req.MainActivityContent),
		LeaderboardContent:  req.LeaderboardContent,
		CreatedAt:           time.Now().UTC().Format(time.RFC3339),
	}

	if item.LinkType == LinkTypeInternal {
		templatePath := "/" + s.vertical.Name + "/" + item.Slug()
		item.TemplatePath = &templatePath
	}

	if err := s.store.Insert(ctx, item); err != nil {
		return nil, err
	}

	if item.TemplatePath != nil {
		if err := s.pages.Write(item); err != nil {
			// No orphan rows referencing a missing page: roll the insert back.
			if delErr := s.store.Delete(ctx, item.ID); delErr != nil && !errors.Is(delErr, ErrNotFound) {
				s.log.Error("Failed to roll back content row after page write failure", delErr,
					logger.ContentID(item.ID))
			}
			return nil, fmt.Errorf("%w: %v", ErrPageWrite, err)
		}
	}

	s.log.Info("Content created",
		logger.ContentID(item.ID),
		logger.Section(item.EffectiveSection()),
		logger.String("link_type", item.LinkType),
	)
	return item, nil
}

// Get looks an item up by id, falling back to the internal slug, since
// generated pages address items by slug rather than id.
func (s *Service) Get(ctx context.Context, idOrSlug string) (*ContentItem, error) {
	item, err := s.store.GetByID(ctx, idOrSlug)
	if errors.Is(err, ErrNotFound) {
		return s.store.GetBySlug(ctx, idOrSlug)
	}
	return item, err
}

// SectionGroup is one section's items in display order.
type SectionGroup struct {
	Name  string
	Items []ContentItem
}

// GroupedContent marshals as a JSON object whose keys keep the slice
// order, so fixed sections stay first and custom sections stay sorted.
type GroupedContent []SectionGroup

func (g GroupedContent) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, group := range g {
		if i > 0 {
			buf = append(buf, ',')
		}
		name, err := json.Marshal(group.Name)
		if err != nil {
			return nil, err
		}
		items, err := json.Marshal(group.Items)
		if err != nil {
			return nil, err
		}
		buf = append(buf, name...)
		buf = append(buf, ':')
		buf = append(buf, items...)
	}
	return append(buf, '}'), nil
}

// ContentListing is the grouped list response.
type ContentListing struct {
	FixedSections []string       `json:"fixedSections"`
	Content       GroupedContent `json:"content"`
}

// List groups all items by their title-cased effective section. Fixed
// sections are always present, even when empty, in their fixed order;
// custom sections follow alphabetically.
func (s *Service) List(ctx context.Context) (*ContentListing, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]ContentItem, len(FixedSections))
	for _, section := range FixedSections {
		groups[section] = []ContentItem{}
	}

	customNames := []string{}
	for _, item := range items {
		section := utils.TitleCase(item.EffectiveSection())
		if _, ok := groups[section]; !ok {
			groups[section] = []ContentItem{}
			customNames = append(customNames, section)
		}
		groups[section] = append(groups[section], item)
	}
	sort.Strings(customNames)

	grouped := make(GroupedContent, 0, len(groups))
	for _, section := range FixedSections {
		grouped = append(grouped, SectionGroup{Name: section, Items: groups[section]})
	}
	for _, section := range customNames {
		grouped = append(grouped, SectionGroup{Name: section, Items: groups[section]})
	}

	return &ContentListing{FixedSections: FixedSections, Content: grouped}, nil
}

// Update applies a merge-patch: fields present in the patch overwrite,
// including present-but-falsy values; absent fields keep their stored
// value. The page artifact is kept in sync with the merged result.
func (s *Service) Update(ctx context.Context, id string, patch UpdateContentRequest) (*ContentItem, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldSlug := ""
	if existing.TemplatePath != nil {
		oldSlug = path.Base(*existing.TemplatePath)
	}

	merged := *existing
	applyPatch(&merged, patch, s.policy)

	if merged.Section == "" || merged.ItemName == "" || merged.LinkType == "" {
		return nil, &ValidationError{Message: "Missing required fields"}
	}
	var externalURL string
	if merged.ExternalURL != nil {
		externalURL = *merged.ExternalURL
	}
	if err := validateLink(merged.LinkType, externalURL); err != nil {
		return nil, err
	}

	if merged.LinkType == LinkTypeInternal {
		templatePath := "/" + s.vertical.Name + "/" + merged.Slug()
		merged.TemplatePath = &templatePath
	} else {
		merged.TemplatePath = nil
	}

	if err := s.store.Update(ctx, &merged); err != nil {
		return nil, err
	}

	if merged.TemplatePath != nil {
		if oldSlug != "" && oldSlug != merged.Slug() {
			// The slug moved; drop the stale artifact before writing the new one.
			if err := s.pages.Remove(oldSlug); err != nil {
				s.log.Warn("Failed to remove stale page artifact", logger.Err(err),
					logger.ContentID(id), logger.String("slug", oldSlug))
			}
		}
		if err := s.pages.Write(&merged); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPageWrite, err)
		}
	} else if oldSlug != "" {
		// internal -> external transition: the artifact is stale now.
		if err := s.pages.Remove(oldSlug); err != nil {
			s.log.Warn("Failed to remove stale page artifact", logger.Err(err),
				logger.ContentID(id), logger.String("slug", oldSlug))
		}
	}

	s.log.Info("Content updated", logger.ContentID(id))
	return &merged, nil
}

func applyPatch(item *ContentItem, patch UpdateContentRequest, policy *bluemonday.Policy) {
	if patch.Section != nil {
		item.Section = *patch.Section
	}
	if patch.NewSectionName != nil {
		item.NewSectionName = optional(*patch.NewSectionName)
	}
	if patch.ItemName != nil {
		item.ItemName = *patch.ItemName
	}
	if patch.LinkType != nil {
		item.LinkType = *patch.LinkType
	}
	if patch.ExternalURL != nil {
		item.ExternalURL = optional(*patch.ExternalURL)
	}
	if patch.InternalURL != nil {
		item.InternalURL = optional(*patch.InternalURL)
	}
	if patch.IncludeTitle != nil {
		item.IncludeTitle = *patch.IncludeTitle
	}
	if patch.IncludeInstructions != nil {
		item.IncludeInstructions = *patch.IncludeInstructions
	}
	if patch.IncludeTeams != nil {
		item.IncludeTeams = *patch.IncludeTeams
	}
	if patch.IncludeMainActivity != nil {
		item.IncludeMainActivity = *patch.IncludeMainActivity
	}
	if patch.IncludeLeaderboard != nil {
		item.IncludeLeaderboard = *patch.IncludeLeaderboard
	}
	if patch.TitleContent != nil {
		item.TitleContent = policy.Sanitize(*patch.TitleContent)
	}
	if patch.InstructionsContent != nil {
		item.InstructionsContent = policy.Sanitize(*patch.InstructionsContent)
	}
	if patch.TeamsContent != nil {
		item.TeamsContent = *patch.TeamsContent
	}
	if patch.MainActivityContent != nil {
		item.MainActivityContent = policy.Sanitize(*patch.MainActivityContent)
	}
	if patch.LeaderboardContent != nil {
		item.LeaderboardContent = *patch.LeaderboardContent
	}
}

// Delete removes the row and, for internal items, the generated artifact.
// Artifact cleanup is best-effort; the row removal is what counts.
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if item.TemplatePath != nil {
		if err := s.pages.Remove(path.Base(*item.TemplatePath)); err != nil {
			s.log.Warn("Failed to remove page artifact", logger.Err(err), logger.ContentID(id))
		}
	}

	s.log.Info("Content deleted", logger.ContentID(id))
	return nil
}

// RegenerateAll rebuilds every internal item's page artifact from the
// store. This is the recovery path for any artifact/row desync left by a
// crash between the database write and the file write.
func (s *Service) RegenerateAll(ctx context.Context) (int, error) {
	items, err := s.store.ListInternal(ctx)
	if err != nil {
		return 0, err
	}

	regenerated := 0
	var errs []error
	for i := range items {
		if err := s.pages.Write(&items[i]); err != nil {
			s.log.Error("Failed to regenerate page", err, logger.ContentID(items[i].ID))
			errs = append(errs, err)
			continue
		}
		regenerated++
	}
	if len(errs) > 0 {
		return regenerated, fmt.Errorf("%w: %v", ErrPageWrite, errors.Join(errs...))
	}

	s.log.Info("Regenerated internal pages", logger.Int("count", regenerated))
	return regenerated, nil
}

// LoadPage reads the generated page artifact for a slug.
func (s *Service) LoadPage(slug string) (*PageDocument, error) {
	return s.pages.Load(slug)
}
