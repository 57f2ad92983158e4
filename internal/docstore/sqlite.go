package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"allswell/internal/apperr"
)

// record is the single backing table: one row per document.
type record struct {
	Collection string `gorm:"primaryKey;size:512"`
	DocID      string `gorm:"primaryKey;column:doc_id;size:128"`
	Data       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (record) TableName() string { return "documents" }

var fieldName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type subscription struct {
	collection string
	orderBy    string
	fn         func([]Document)
}

// SQLite implements Store on an embedded SQLite database through gorm.
type SQLite struct {
	db  *gorm.DB
	log *slog.Logger

	writeMu sync.Mutex // serializes read-modify-write paths (merge sets)

	subMu   sync.Mutex
	subs    map[int]*subscription
	nextSub int
}

// Open opens (or creates) the SQLite database at dsn and runs migrations.
func Open(dsn string, lg *slog.Logger) (*SQLite, error) {
	if dsn == "" {
		dsn = "allswell.db"
	}
	if lg == nil {
		lg = slog.Default()
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &SQLite{db: db, log: lg, subs: make(map[int]*subscription)}, nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLite) Get(ctx context.Context, collection, id string) (*Document, error) {
	var rec record
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&rec).Error
	switch {
	case err == nil:
		return &Document{ID: rec.DocID, Data: []byte(rec.Data)}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.ErrNotFound
	default:
		return nil, fmt.Errorf("get document: %w", err)
	}
}

func (s *SQLite) GetAll(ctx context.Context, collection, orderBy string) ([]Document, error) {
	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	if orderBy != "" {
		if !fieldName.MatchString(orderBy) {
			return nil, fmt.Errorf("invalid order field %q", orderBy)
		}
		q = q.Order(fmt.Sprintf("json_extract(data, '$.%s') ASC", orderBy))
	} else {
		q = q.Order("doc_id ASC")
	}

	var recs []record
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	docs := make([]Document, len(recs))
	for i, rec := range recs {
		docs[i] = Document{ID: rec.DocID, Data: []byte(rec.Data)}
	}
	return docs, nil
}

func (s *SQLite) Set(ctx context.Context, collection, id string, value any, merge bool) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	s.writeMu.Lock()
	err = s.setLocked(ctx, collection, id, data, merge)
	s.writeMu.Unlock()
	if err != nil {
		return err
	}

	s.notify(collection)
	return nil
}

func (s *SQLite) setLocked(ctx context.Context, collection, id string, data []byte, merge bool) error {
	var rec record
	db := s.db.WithContext(ctx)
	err := db.Where("collection = ? AND doc_id = ?", collection, id).First(&rec).Error
	switch {
	case err == nil:
		if merge {
			merged, mergeErr := mergeJSON([]byte(rec.Data), data)
			if mergeErr != nil {
				return mergeErr
			}
			data = merged
		}
		if err := db.Model(&record{}).
			Where("collection = ? AND doc_id = ?", collection, id).
			Update("data", string(data)).Error; err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = record{Collection: collection, DocID: id, Data: string(data)}
		if err := db.Create(&rec).Error; err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find document: %w", err)
	}
}

func mergeJSON(existing, incoming []byte) ([]byte, error) {
	var base, overlay map[string]any
	if err := json.Unmarshal(existing, &base); err != nil {
		return nil, fmt.Errorf("decode existing document: %w", err)
	}
	if err := json.Unmarshal(incoming, &overlay); err != nil {
		return nil, fmt.Errorf("decode merge payload: %w", err)
	}
	for k, v := range overlay {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("encode merged document: %w", err)
	}
	return merged, nil
}

// Update rewrites the named fields in place. Increments compile to a single
// UPDATE with json_set over json_extract, so concurrent deltas never lose writes.
func (s *SQLite) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	expr := "data"
	var args []any
	for field, value := range fields {
		if !fieldName.MatchString(field) {
			return fmt.Errorf("invalid field name %q", field)
		}
		if inc, ok := value.(Increment); ok {
			expr = fmt.Sprintf(
				"json_set(%s, '$.%s', COALESCE(json_extract(data, '$.%s'), 0) + ?)",
				expr, field, field)
			args = append(args, int(inc))
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal field %q: %w", field, err)
		}
		expr = fmt.Sprintf("json_set(%s, '$.%s', json(?))", expr, field)
		args = append(args, string(raw))
	}
	args = append(args, time.Now(), collection, id)

	tx := s.db.WithContext(ctx).Exec(
		"UPDATE documents SET data = "+expr+", updated_at = ? WHERE collection = ? AND doc_id = ?",
		args...)
	if tx.Error != nil {
		return fmt.Errorf("update document: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperr.ErrNotFound
	}

	s.notify(collection)
	return nil
}

func (s *SQLite) Delete(ctx context.Context, collection, id string) error {
	if err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&record{}).Error; err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.notify(collection)
	return nil
}

func (s *SQLite) Add(ctx context.Context, collection string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	id := uuid.NewString()
	rec := record{Collection: collection, DocID: id, Data: string(data)}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}

	s.notify(collection)
	return id, nil
}

func (s *SQLite) Subscribe(collection, orderBy string, fn func([]Document)) (Unsubscribe, error) {
	if orderBy != "" && !fieldName.MatchString(orderBy) {
		return nil, fmt.Errorf("invalid order field %q", orderBy)
	}

	sub := &subscription{collection: collection, orderBy: orderBy, fn: fn}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.subMu.Unlock()

	// Initial snapshot, mirroring the notify path.
	s.deliver(sub)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}, nil
}

// notify re-runs every subscription query on the mutated collection and hands
// the fresh snapshot to its callback, in the mutating goroutine.
func (s *SQLite) notify(collection string) {
	s.subMu.Lock()
	var matched []*subscription
	for _, sub := range s.subs {
		if sub.collection == collection {
			matched = append(matched, sub)
		}
	}
	s.subMu.Unlock()

	for _, sub := range matched {
		s.deliver(sub)
	}
}

func (s *SQLite) deliver(sub *subscription) {
	docs, err := s.GetAll(context.Background(), sub.collection, sub.orderBy)
	if err != nil {
		s.log.Warn("subscription query failed",
			slog.String("collection", sub.collection),
			slog.String("error", err.Error()))
		return
	}
	sub.fn(docs)
}
