package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"memory-server/internal/models"
)

// schemaDDL mirrors the file backend's document shapes. The uuid columns are
// text and the deleted flag is a small integer on purpose: rows are read in
// this loose shape and translated into the strict domain model, surfacing
// bad stored data as decode errors instead of scan panics.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	uuid TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS stories (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	uuid TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	deleted SMALLINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_stories_user_id ON stories (user_id);

CREATE TABLE IF NOT EXISTS content (
	id BIGSERIAL PRIMARY KEY,
	story_id BIGINT NOT NULL REFERENCES stories (id),
	uuid TEXT NOT NULL UNIQUE,
	kind TEXT NOT NULL,
	details JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_content_story_id ON content (story_id);

CREATE TABLE IF NOT EXISTS prompts (
	id BIGSERIAL PRIMARY KEY,
	uuid TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the entity tables if they do not exist yet. Used by
// the seed command and the integration tests; production deployments manage
// the schema out of band.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("%w: ensure schema: %v", models.ErrStorage, err)
	}
	return nil
}
