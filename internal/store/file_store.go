package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memory-server/internal/models"
)

// Compile-time check to ensure FileStore implements EntityStore
var _ EntityStore = (*FileStore)(nil)

// FileStore persists each entity as an individual JSON document at
// <root>/<kind>/<uuid>.json.
//
// Numeric ids come from a process-wide per-kind counter guarded by a mutex
// and seeded once from a directory scan, so concurrent inserts within one
// process never produce duplicate ids. Multiple processes sharing one root
// are not supported.
type FileStore struct {
	root   string
	logger *zap.Logger

	mu      sync.Mutex
	nextIDs map[Kind]int64
}

// NewFileStore creates a FileStore rooted at root. The directory is created
// on first write.
func NewFileStore(root string, logger *zap.Logger) *FileStore {
	return &FileStore{
		root:    root,
		logger:  logger.Named("FileStore"),
		nextIDs: make(map[Kind]int64),
	}
}

func (s *FileStore) kindDir(kind Kind) string {
	return filepath.Join(s.root, string(kind))
}

func (s *FileStore) docPath(kind Kind, id uuid.UUID) string {
	return filepath.Join(s.kindDir(kind), id.String()+".json")
}

// GetByUUID returns the entity stored at <root>/<kind>/<uuid>.json.
func (s *FileStore) GetByUUID(ctx context.Context, kind Kind, id uuid.UUID) (models.Entity, error) {
	data, err := os.ReadFile(s.docPath(kind, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("Failed to read entity document",
			zap.String("kind", string(kind)), zap.String("uuid", id.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: read %s document", models.ErrStorage, kind)
	}
	return s.decodeEntity(kind, data)
}

// GetByID enumerates the kind's documents until one matches the numeric id.
func (s *FileStore) GetByID(ctx context.Context, kind Kind, id int64) (models.Entity, error) {
	entities, err := s.ListAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if e.EntityID() == id {
			return e, nil
		}
	}
	return nil, models.ErrNotFound
}

// ListByForeignKey enumerates every document under the kind's directory,
// decodes it into a generic value, and keeps those whose named field equals
// value. Documents without the field simply do not match. An O(n) scan,
// acceptable only at this backend's small scale.
func (s *FileStore) ListByForeignKey(ctx context.Context, kind Kind, field string, value int64) ([]models.Entity, error) {
	docs, err := s.readAllDocuments(kind)
	if err != nil {
		return nil, err
	}

	matches := make([]models.Entity, 0, len(docs))
	for _, data := range docs {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			s.logger.Error("Failed to decode entity document during scan",
				zap.String("kind", string(kind)), zap.Error(err))
			return nil, fmt.Errorf("%w: scan %s documents", models.ErrInvalidRecord, kind)
		}

		n, ok := raw[field].(json.Number)
		if !ok {
			continue
		}
		matched, err := n.Int64()
		if err != nil || matched != value {
			continue
		}

		entity, err := s.decodeEntity(kind, data)
		if err != nil {
			return nil, err
		}
		matches = append(matches, entity)
	}
	return matches, nil
}

// ListAll returns every entity of kind. A kind whose directory does not
// exist yet has no entities.
func (s *FileStore) ListAll(ctx context.Context, kind Kind) ([]models.Entity, error) {
	docs, err := s.readAllDocuments(kind)
	if err != nil {
		return nil, err
	}
	entities := make([]models.Entity, 0, len(docs))
	for _, data := range docs {
		entity, err := s.decodeEntity(kind, data)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Insert assigns the next id for the kind and writes the document.
func (s *FileStore) Insert(ctx context.Context, kind Kind, entity models.Entity) (int64, error) {
	id, err := s.NextID(ctx, kind)
	if err != nil {
		return 0, err
	}
	entity.SetEntityID(id)

	if err := s.writeDocument(kind, entity); err != nil {
		return 0, err
	}
	s.logger.Debug("Entity inserted",
		zap.String("kind", string(kind)), zap.Int64("id", id), zap.String("uuid", entity.EntityUUID().String()))
	return id, nil
}

// ReplaceByUUID overwrites an existing document. The new content is written
// to a temporary file and renamed over the old document, so a crash mid-write
// never loses the record.
func (s *FileStore) ReplaceByUUID(ctx context.Context, kind Kind, id uuid.UUID, entity models.Entity) error {
	path := s.docPath(kind, id)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.ErrNotFound
		}
		s.logger.Error("Failed to stat entity document",
			zap.String("kind", string(kind)), zap.String("uuid", id.String()), zap.Error(err))
		return fmt.Errorf("%w: stat %s document", models.ErrStorage, kind)
	}
	return s.writeDocument(kind, entity)
}

// NextID returns a fresh numeric id for the kind. The per-kind counter is
// seeded from a directory scan on first use and only incremented afterwards;
// it is never recomputed by re-scanning.
func (s *FileStore) NextID(ctx context.Context, kind Kind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seeded := s.nextIDs[kind]; !seeded {
		count, err := s.countDocuments(kind)
		if err != nil {
			return 0, err
		}
		s.nextIDs[kind] = count
	}
	s.nextIDs[kind]++
	return s.nextIDs[kind], nil
}

func (s *FileStore) decodeEntity(kind Kind, data []byte) (models.Entity, error) {
	entity, err := newEntity(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, entity); err != nil {
		s.logger.Error("Failed to decode entity document",
			zap.String("kind", string(kind)), zap.Error(err))
		return nil, fmt.Errorf("%w: decode %s document", models.ErrInvalidRecord, kind)
	}
	return entity, nil
}

func (s *FileStore) readAllDocuments(kind Kind) ([][]byte, error) {
	dir := s.kindDir(kind)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		s.logger.Error("Failed to read kind directory", zap.String("kind", string(kind)), zap.Error(err))
		return nil, fmt.Errorf("%w: list %s documents", models.ErrStorage, kind)
	}

	docs := make([][]byte, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			s.logger.Error("Failed to read entity document",
				zap.String("kind", string(kind)), zap.String("file", entry.Name()), zap.Error(err))
			return nil, fmt.Errorf("%w: read %s document", models.ErrStorage, kind)
		}
		docs = append(docs, data)
	}
	return docs, nil
}

func (s *FileStore) countDocuments(kind Kind) (int64, error) {
	entries, err := os.ReadDir(s.kindDir(kind))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		s.logger.Error("Failed to read kind directory", zap.String("kind", string(kind)), zap.Error(err))
		return 0, fmt.Errorf("%w: count %s documents", models.ErrStorage, kind)
	}
	var count int64
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			count++
		}
	}
	return count, nil
}

func (s *FileStore) writeDocument(kind Kind, entity models.Entity) error {
	data, err := json.Marshal(entity)
	if err != nil {
		s.logger.Error("Failed to encode entity",
			zap.String("kind", string(kind)), zap.String("uuid", entity.EntityUUID().String()), zap.Error(err))
		return fmt.Errorf("%w: encode %s document", models.ErrInvalidRecord, kind)
	}

	dir := s.kindDir(kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("Failed to create kind directory", zap.String("kind", string(kind)), zap.Error(err))
		return fmt.Errorf("%w: create %s directory", models.ErrStorage, kind)
	}
	if err := writeFileAtomic(s.docPath(kind, entity.EntityUUID()), data, 0o644); err != nil {
		s.logger.Error("Failed to write entity document",
			zap.String("kind", string(kind)), zap.String("uuid", entity.EntityUUID().String()), zap.Error(err))
		return fmt.Errorf("%w: write %s document", models.ErrStorage, kind)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target's directory and
// renames it over the target, so readers never observe a partial document.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	tmp, err := os.CreateTemp(dir, ".memory-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
