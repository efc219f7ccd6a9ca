// Package store reads and writes records through GORM.
package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListQuery is the search and paging input of every list view.
type ListQuery struct {
	Search   string
	Page     int
	PageSize int
}

func (q ListQuery) normalize() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

func (q ListQuery) offset() int { return (q.Page - 1) * q.PageSize }

type Page[T any] struct {
	Rows     []T   `json:"rows"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a substring ILIKE match with wildcards escaped.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// searchClause ORs a case-insensitive substring match over cols.
func searchClause(search string, cols ...string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" || len(cols) == 0 {
		return "", nil
	}
	pattern := likePattern(search)
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		parts[i] = c + " ILIKE ?"
		args[i] = pattern
	}
	return strings.Join(parts, " OR "), args
}

// list runs a counted, paginated query of T.
func list[T any](db *gorm.DB, q ListQuery, order string, cols []string, scopes ...func(*gorm.DB) *gorm.DB) (Page[T], error) {
	q = q.normalize()
	tx := db.Model(new(T))
	if where, args := searchClause(q.Search, cols...); where != "" {
		tx = tx.Where(where, args...)
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	rows := make([]T, 0, q.PageSize)
	if err := tx.Scopes(scopes...).
		Order(order).
		Limit(q.PageSize).
		Offset(q.offset()).
		Find(&rows).Error; err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Rows: rows, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// updateAll writes every column of row except created_at.
func updateAll(db *gorm.DB, row any) error {
	res := db.Model(row).Select("*").Omit("created_at", clause.Associations).Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID[T any](db *gorm.DB, id uint) error {
	res := db.Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
