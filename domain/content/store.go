package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no row matches the requested id or slug.
var ErrNotFound = errors.New("content not found")

const contentColumns = `id, section, new_section_name, item_name, link_type,
	external_url, internal_url,
	include_title, include_instructions, include_teams, include_main_activity, include_leaderboard,
	title_content, instructions_content, teams_content, main_activity_content, leaderboard_content,
	template_path, created_at`

// Store persists content rows for one vertical. Queries use ? bindvars and
// are rebound per driver, so the postgres pool and the sqlite test handle
// run the same SQL.
type Store struct {
	db    *sqlx.DB
	table string
}

func NewStore(db *sqlx.DB, vertical Vertical) *Store {
	return &Store{db: db, table: vertical.Table}
}

func (s *Store) Insert(ctx context.Context, item *ContentItem) error {
	query := s.db.Rebind(fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.table, contentColumns))

	_, err := s.db.ExecContext(ctx, query,
		item.ID, item.Section, item.NewSectionName, item.ItemName, item.LinkType,
		item.ExternalURL, item.InternalURL,
		item.IncludeTitle, item.IncludeInstructions, item.IncludeTeams,
		item.IncludeMainActivity, item.IncludeLeaderboard,
		item.TitleContent, item.InstructionsContent, item.TeamsContent,
		item.MainActivityContent, item.LeaderboardContent,
		item.TemplatePath, item.CreatedAt,
	)
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*ContentItem, error) {
	var item ContentItem
	query := s.db.Rebind(fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, contentColumns, s.table))
	if err := s.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetBySlug looks a row up by internal_url. Generated pages address items
// by slug rather than id.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*ContentItem, error) {
	var item ContentItem
	query := s.db.Rebind(fmt.Sprintf(`SELECT %s FROM %s WHERE internal_url = ?`, contentColumns, s.table))
	if err := s.db.GetContext(ctx, &item, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	query := s.db.Rebind(fmt.Sprintf(`SELECT COUNT(1) FROM %s WHERE id = ?`, s.table))
	if err := s.db.GetContext(ctx, &count, query, id); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) List(ctx context.Context) ([]ContentItem, error) {
	items := []ContentItem{}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY section ASC, created_at DESC`, contentColumns, s.table)
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		return nil, err
	}
	return items, nil
}

// ListInternal returns every row with a generated page, for maintenance
// regeneration.
func (s *Store) ListInternal(ctx context.Context) ([]ContentItem, error) {
	items := []ContentItem{}
	query := s.db.Rebind(fmt.Sprintf(`SELECT %s FROM %s WHERE link_type = ? ORDER BY created_at ASC`, contentColumns, s.table))
	if err := s.db.SelectContext(ctx, &items, query, LinkTypeInternal); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) Update(ctx context.Context, item *ContentItem) error {
	query := s.db.Rebind(fmt.Sprintf(`
		UPDATE %s
		SET section = ?, new_section_name = ?, item_name = ?, link_type = ?,
		    external_url = ?, internal_url = ?,
		    include_title = ?, include_instructions = ?, include_teams = ?,
		    include_main_activity = ?, include_leaderboard = ?,
		    title_content = ?, instructions_content = ?, teams_content = ?,
		    main_activity_content = ?, leaderboard_content = ?,
		    template_path = ?
		WHERE id = ?
	`, s.table))

	result, err := s.db.ExecContext(ctx, query,
		item.Section, item.NewSectionName, item.ItemName, item.LinkType,
		item.ExternalURL, item.InternalURL,
		item.IncludeTitle, item.IncludeInstructions, item.IncludeTeams,
		item.IncludeMainActivity, item.IncludeLeaderboard,
		item.TitleContent, item.InstructionsContent, item.TeamsContent,
		item.MainActivityContent, item.LeaderboardContent,
		item.TemplatePath,
		item.ID,
	)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	query := s.db.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table))
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}
