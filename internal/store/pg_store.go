package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"memory-server/internal/models"
)

// Compile-time check to ensure PgStore implements EntityStore
var _ EntityStore = (*PgStore)(nil)

// foreignKeys whitelists the filterable columns per kind. A field outside
// this set does not exist on the schema and matches nothing.
var foreignKeys = map[Kind]map[string]bool{
	KindStories: {"user_id": true},
	KindContent: {"story_id": true},
}

const (
	userFields    = `id, uuid, name, created_at, updated_at`
	storyFields   = `id, user_id, uuid, title, deleted, created_at, updated_at`
	contentFields = `id, story_id, uuid, kind, details, created_at, updated_at`
	promptFields  = `id, uuid, name, description, created_at, updated_at`
)

// PgStore is the PostgreSQL-backed EntityStore. Numeric ids come from each
// table's serial sequence; UUIDs live in a separate unique text column.
type PgStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPgStore creates a PostgreSQL-backed EntityStore.
func NewPgStore(db *pgxpool.Pool, logger *zap.Logger) *PgStore {
	return &PgStore{db: db, logger: logger.Named("PgStore")}
}

// GetByUUID returns the entity of kind with the given UUID.
func (s *PgStore) GetByUUID(ctx context.Context, kind Kind, id uuid.UUID) (models.Entity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE uuid = $1`, selectFields(kind), kind)
	return s.scanOne(ctx, kind, query, id.String())
}

// GetByID returns the entity of kind with the given numeric id.
func (s *PgStore) GetByID(ctx context.Context, kind Kind, id int64) (models.Entity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, selectFields(kind), kind)
	return s.scanOne(ctx, kind, query, id)
}

// ListByForeignKey runs a single parametrized query against the named
// column. Unknown columns yield an empty slice rather than an error.
func (s *PgStore) ListByForeignKey(ctx context.Context, kind Kind, field string, value int64) ([]models.Entity, error) {
	if !foreignKeys[kind][field] {
		return []models.Entity{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY id`, selectFields(kind), kind, field)
	return s.scanMany(ctx, kind, query, value)
}

// ListAll returns every entity of kind.
func (s *PgStore) ListAll(ctx context.Context, kind Kind) ([]models.Entity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, selectFields(kind), kind)
	return s.scanMany(ctx, kind, query)
}

// Insert persists the entity, letting the table's sequence assign the id.
func (s *PgStore) Insert(ctx context.Context, kind Kind, entity models.Entity) (int64, error) {
	var (
		query string
		args  []any
	)

	switch e := entity.(type) {
	case *models.User:
		query = `INSERT INTO users (uuid, name, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
		args = []any{e.UUID.String(), e.Name, e.CreatedAt, e.UpdatedAt}
	case *models.Story:
		query = `INSERT INTO stories (user_id, uuid, title, deleted, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		args = []any{e.UserID, e.UUID.String(), e.Title, deletedFlag(e.Deleted), e.CreatedAt, e.UpdatedAt}
	case *models.Content:
		details, err := json.Marshal(e.Details)
		if err != nil {
			return 0, fmt.Errorf("%w: encode content details: %v", models.ErrInvalidRecord, err)
		}
		query = `INSERT INTO content (story_id, uuid, kind, details, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		args = []any{e.StoryID, e.UUID.String(), string(e.Details.Kind), details, e.CreatedAt, e.UpdatedAt}
	case *models.Prompt:
		query = `INSERT INTO prompts (uuid, name, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`
		args = []any{e.UUID.String(), e.Name, e.Description, e.CreatedAt, e.UpdatedAt}
	default:
		return 0, fmt.Errorf("%w: unsupported entity type %T for kind %q", models.ErrInternal, entity, string(kind))
	}

	var id int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			s.logger.Warn("Insert hit unique constraint",
				zap.String("kind", string(kind)), zap.String("constraint", pgErr.ConstraintName))
			return 0, fmt.Errorf("%w: uuid already exists", models.ErrInvalidRecord)
		}
		s.logger.Error("Failed to insert entity", zap.String("kind", string(kind)), zap.Error(err))
		return 0, fmt.Errorf("%w: insert %s", models.ErrStorage, kind)
	}
	entity.SetEntityID(id)
	return id, nil
}

// ReplaceByUUID overwrites every mutable column of the stored row.
func (s *PgStore) ReplaceByUUID(ctx context.Context, kind Kind, id uuid.UUID, entity models.Entity) error {
	var (
		query string
		args  []any
	)

	switch e := entity.(type) {
	case *models.User:
		query = `UPDATE users SET name = $1, created_at = $2, updated_at = $3 WHERE uuid = $4`
		args = []any{e.Name, e.CreatedAt, e.UpdatedAt, id.String()}
	case *models.Story:
		query = `UPDATE stories SET user_id = $1, title = $2, deleted = $3, created_at = $4, updated_at = $5 WHERE uuid = $6`
		args = []any{e.UserID, e.Title, deletedFlag(e.Deleted), e.CreatedAt, e.UpdatedAt, id.String()}
	case *models.Content:
		details, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("%w: encode content details: %v", models.ErrInvalidRecord, err)
		}
		query = `UPDATE content SET story_id = $1, kind = $2, details = $3, created_at = $4, updated_at = $5 WHERE uuid = $6`
		args = []any{e.StoryID, string(e.Details.Kind), details, e.CreatedAt, e.UpdatedAt, id.String()}
	case *models.Prompt:
		query = `UPDATE prompts SET name = $1, description = $2, created_at = $3, updated_at = $4 WHERE uuid = $5`
		args = []any{e.Name, e.Description, e.CreatedAt, e.UpdatedAt, id.String()}
	default:
		return fmt.Errorf("%w: unsupported entity type %T for kind %q", models.ErrInternal, entity, string(kind))
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to replace entity",
			zap.String("kind", string(kind)), zap.String("uuid", id.String()), zap.Error(err))
		return fmt.Errorf("%w: replace %s", models.ErrStorage, kind)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// NextID advances the table's id sequence and returns the new value.
func (s *PgStore) NextID(ctx context.Context, kind Kind) (int64, error) {
	query := `SELECT nextval(pg_get_serial_sequence($1, 'id'))`
	var id int64
	if err := s.db.QueryRow(ctx, query, string(kind)).Scan(&id); err != nil {
		s.logger.Error("Failed to advance id sequence", zap.String("kind", string(kind)), zap.Error(err))
		return 0, fmt.Errorf("%w: next id for %s", models.ErrStorage, kind)
	}
	return id, nil
}

func selectFields(kind Kind) string {
	switch kind {
	case KindUsers:
		return userFields
	case KindStories:
		return storyFields
	case KindContent:
		return contentFields
	default:
		return promptFields
	}
}

func deletedFlag(deleted bool) int16 {
	if deleted {
		return 1
	}
	return 0
}

func (s *PgStore) scanOne(ctx context.Context, kind Kind, query string, args ...any) (models.Entity, error) {
	var err error
	switch kind {
	case KindUsers:
		var row userRow
		if err = pgxscan.Get(ctx, s.db, &row, query, args...); err == nil {
			return row.toModel()
		}
	case KindStories:
		var row storyRow
		if err = pgxscan.Get(ctx, s.db, &row, query, args...); err == nil {
			return row.toModel()
		}
	case KindContent:
		var row contentRow
		if err = pgxscan.Get(ctx, s.db, &row, query, args...); err == nil {
			return row.toModel()
		}
	case KindPrompts:
		var row promptRow
		if err = pgxscan.Get(ctx, s.db, &row, query, args...); err == nil {
			return row.toModel()
		}
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %q", models.ErrInternal, string(kind))
	}

	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	s.logger.Error("Failed to query entity", zap.String("kind", string(kind)), zap.Error(err))
	return nil, fmt.Errorf("%w: query %s", models.ErrStorage, kind)
}

func (s *PgStore) scanMany(ctx context.Context, kind Kind, query string, args ...any) ([]models.Entity, error) {
	entities := []models.Entity{}

	switch kind {
	case KindUsers:
		var rows []userRow
		if err := pgxscan.Select(ctx, s.db, &rows, query, args...); err != nil {
			return nil, s.listError(kind, err)
		}
		for _, row := range rows {
			entity, err := row.toModel()
			if err != nil {
				return nil, err
			}
			entities = append(entities, entity)
		}
	case KindStories:
		var rows []storyRow
		if err := pgxscan.Select(ctx, s.db, &rows, query, args...); err != nil {
			return nil, s.listError(kind, err)
		}
		for _, row := range rows {
			entity, err := row.toModel()
			if err != nil {
				return nil, err
			}
			entities = append(entities, entity)
		}
	case KindContent:
		var rows []contentRow
		if err := pgxscan.Select(ctx, s.db, &rows, query, args...); err != nil {
			return nil, s.listError(kind, err)
		}
		for _, row := range rows {
			entity, err := row.toModel()
			if err != nil {
				return nil, err
			}
			entities = append(entities, entity)
		}
	case KindPrompts:
		var rows []promptRow
		if err := pgxscan.Select(ctx, s.db, &rows, query, args...); err != nil {
			return nil, s.listError(kind, err)
		}
		for _, row := range rows {
			entity, err := row.toModel()
			if err != nil {
				return nil, err
			}
			entities = append(entities, entity)
		}
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %q", models.ErrInternal, string(kind))
	}

	return entities, nil
}

func (s *PgStore) listError(kind Kind, err error) error {
	s.logger.Error("Failed to list entities", zap.String("kind", string(kind)), zap.Error(err))
	return fmt.Errorf("%w: list %s", models.ErrStorage, kind)
}

// Loose row shapes. Every column is typed permissively (uuid as text,
// deleted as a small integer, details as raw bytes) and translated into the
// strict domain model afterwards; translation failures surface as
// models.ErrInvalidRecord, distinct from transport errors.

type userRow struct {
	ID        int64     `db:"id"`
	UUID      string    `db:"uuid"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r userRow) toModel() (models.Entity, error) {
	id, err := uuid.Parse(r.UUID)
	if err != nil {
		return nil, fmt.Errorf("%w: parse user uuid: %v", models.ErrInvalidRecord, err)
	}
	return &models.User{
		ID:        r.ID,
		UUID:      id,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

type storyRow struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	UUID      string    `db:"uuid"`
	Title     string    `db:"title"`
	Deleted   int16     `db:"deleted"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r storyRow) toModel() (models.Entity, error) {
	id, err := uuid.Parse(r.UUID)
	if err != nil {
		return nil, fmt.Errorf("%w: parse story uuid: %v", models.ErrInvalidRecord, err)
	}
	if r.Deleted != 0 && r.Deleted != 1 {
		return nil, fmt.Errorf("%w: story deleted flag out of range: %d", models.ErrInvalidRecord, r.Deleted)
	}
	return &models.Story{
		ID:        r.ID,
		UserID:    r.UserID,
		UUID:      id,
		Title:     r.Title,
		Deleted:   r.Deleted == 1,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

type contentRow struct {
	ID        int64     `db:"id"`
	StoryID   int64     `db:"story_id"`
	UUID      string    `db:"uuid"`
	Kind      string    `db:"kind"`
	Details   []byte    `db:"details"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r contentRow) toModel() (models.Entity, error) {
	id, err := uuid.Parse(r.UUID)
	if err != nil {
		return nil, fmt.Errorf("%w: parse content uuid: %v", models.ErrInvalidRecord, err)
	}
	var details models.ContentDetails
	if err := json.Unmarshal(r.Details, &details); err != nil {
		return nil, fmt.Errorf("%w: decode content details: %v", models.ErrInvalidRecord, err)
	}
	if string(details.Kind) != r.Kind {
		return nil, fmt.Errorf("%w: content kind column %q disagrees with payload %q",
			models.ErrInvalidRecord, r.Kind, string(details.Kind))
	}
	return &models.Content{
		ID:        r.ID,
		StoryID:   r.StoryID,
		UUID:      id,
		Details:   details,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

type promptRow struct {
	ID          int64     `db:"id"`
	UUID        string    `db:"uuid"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r promptRow) toModel() (models.Entity, error) {
	id, err := uuid.Parse(r.UUID)
	if err != nil {
		return nil, fmt.Errorf("%w: parse prompt uuid: %v", models.ErrInvalidRecord, err)
	}
	return &models.Prompt{
		ID:          r.ID,
		UUID:        id,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}
