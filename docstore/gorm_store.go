package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutridiary/models"
)

// GormStore keeps every document as one row of the documents table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) Get(ctx context.Context, path string) (Document, error) {
	return gormTx{db: s.db}.Get(ctx, path)
}

func (s *GormStore) Set(ctx context.Context, path string, v any) error {
	return gormTx{db: s.db}.Set(ctx, path, v)
}

func (s *GormStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	return s.RunTransaction(ctx, func(tx Tx) error {
		return tx.Merge(ctx, path, fields)
	})
}

func (s *GormStore) Update(ctx context.Context, path string, fields map[string]any) error {
	return s.RunTransaction(ctx, func(tx Tx) error {
		return tx.Update(ctx, path, fields)
	})
}

func (s *GormStore) Delete(ctx context.Context, path string) error {
	return gormTx{db: s.db}.Delete(ctx, path)
}

func (s *GormStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}
	var rows []models.Document
	if err := s.db.WithContext(ctx).
		Where("parent = ?", collection).
		Order("doc_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
	}
	return toDocuments(rows), nil
}

func (s *GormStore) ListRange(ctx context.Context, collection, startID, endID string) ([]Document, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}
	var rows []models.Document
	if err := s.db.WithContext(ctx).
		Where("parent = ? AND doc_id >= ? AND doc_id <= ?", collection, startID, endID).
		Order("doc_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("docstore: list %s [%s, %s]: %w", collection, startID, endID, err)
	}
	return toDocuments(rows), nil
}

func (s *GormStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTx{db: tx})
	})
}

// gormTx runs single statements against whatever handle it wraps, either
// the pool or an open transaction.
type gormTx struct {
	db *gorm.DB
}

func (t gormTx) Get(ctx context.Context, path string) (Document, error) {
	if _, _, err := Split(path); err != nil {
		return Document{}, err
	}
	var row models.Document
	err := t.db.WithContext(ctx).Where("path = ?", path).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return Document{}, fmt.Errorf("docstore: get %s: %w", path, err)
	}
	return toDocument(row), nil
}

func (t gormTx) Set(ctx context.Context, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", path, err)
	}
	return t.put(ctx, path, raw)
}

func (t gormTx) Merge(ctx context.Context, path string, fields map[string]any) error {
	return t.merge(ctx, path, fields, false)
}

func (t gormTx) Update(ctx context.Context, path string, fields map[string]any) error {
	return t.merge(ctx, path, fields, true)
}

func (t gormTx) Delete(ctx context.Context, path string) error {
	if _, _, err := Split(path); err != nil {
		return err
	}
	if err := t.db.WithContext(ctx).
		Where("path = ?", path).
		Delete(&models.Document{}).Error; err != nil {
		return fmt.Errorf("docstore: delete %s: %w", path, err)
	}
	return nil
}

func (t gormTx) merge(ctx context.Context, path string, fields map[string]any, mustExist bool) error {
	body := map[string]any{}
	doc, err := t.Get(ctx, path)
	switch {
	case errors.Is(err, ErrNotFound):
		if mustExist {
			return err
		}
	case err != nil:
		return err
	default:
		if err := json.Unmarshal(doc.Data, &body); err != nil || body == nil {
			body = map[string]any{}
		}
	}
	for k, v := range fields {
		body[k] = v
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", path, err)
	}
	return t.put(ctx, path, raw)
}

func (t gormTx) put(ctx context.Context, path string, raw []byte) error {
	collection, id, err := Split(path)
	if err != nil {
		return err
	}
	row := models.Document{Path: path, Parent: collection, DocID: id, Data: datatypes.JSON(raw)}
	err = t.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("docstore: put %s: %w", path, err)
	}
	return nil
}

func validCollection(collection string) error {
	if collection == "" || strings.HasPrefix(collection, "/") || strings.HasSuffix(collection, "/") {
		return fmt.Errorf("%w: collection %q", ErrInvalidPath, collection)
	}
	return nil
}

func toDocument(row models.Document) Document {
	return Document{ID: row.DocID, Path: row.Path, Data: json.RawMessage(row.Data)}
}

func toDocuments(rows []models.Document) []Document {
	out := make([]Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDocument(r))
	}
	return out
}
