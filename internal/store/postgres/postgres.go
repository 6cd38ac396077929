// Package postgres adapts GORM over PostgreSQL to domain.Store,
// generalizing the teacher's kit/orm "multi-dialect DB wrapper" idiom
// (this repository standardizes on one dialect, see DESIGN.md) and its
// kit/mysql ConvertMySQLErr duplicate-key translation, ported to
// Postgres's unique_violation SQLSTATE.
package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shortnr/urlshort/internal/domain"
)

// slugRow is the GORM model backing the mapping table spec.md §6
// describes: list-partitioned on first_char, (first_char, slug) as the
// composite primary key.
type slugRow struct {
	FirstChar byte   `gorm:"column:first_char;primaryKey"`
	Slug      string `gorm:"column:slug;primaryKey"`
	URL       string `gorm:"column:url"`
	Owner     string `gorm:"column:owner"`
	CreatedAt int64  `gorm:"column:created_at;index;autoCreateTime:nano"`
}

func (slugRow) TableName() string { return "slugs" }

type Store struct {
	db *gorm.DB
}

// Open connects to Postgres at dsn and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres failed")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get underlying sql.DB failed")
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping postgres failed")
	}
	return &Store{db: db}, nil
}

var _ domain.Store = (*Store)(nil)

func (s *Store) Insert(ctx context.Context, m domain.Mapping) error {
	row := slugRow{
		FirstChar: m.FirstChar,
		Slug:      m.Slug,
		URL:       m.URL,
		Owner:     m.Owner,
		CreatedAt: m.CreatedAt.UnixNano(),
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return domain.ErrDuplicateKey
	}
	return domain.Wrap(domain.KindUnavailable, "insert slug failed", err)
}

func (s *Store) Get(ctx context.Context, slug string) (domain.Mapping, error) {
	if slug == "" {
		return domain.Mapping{}, domain.ErrNotFound
	}
	var row slugRow
	err := s.db.WithContext(ctx).
		Where("first_char = ? AND slug = ?", slug[0], slug).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Mapping{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Mapping{}, domain.Wrap(domain.KindUnavailable, "get slug failed", err)
	}
	return domain.Mapping{
		FirstChar: row.FirstChar,
		Slug:      row.Slug,
		URL:       row.URL,
		Owner:     row.Owner,
		CreatedAt: time.Unix(0, row.CreatedAt),
	}, nil
}

// ExistingSlugs runs a single grouped query against the candidate list
// rather than one round trip per candidate (spec.md §4.1 step 4).
func (s *Store) ExistingSlugs(ctx context.Context, candidates []string) (map[string]bool, error) {
	result := make(map[string]bool, len(candidates))
	if len(candidates) == 0 {
		return result, nil
	}
	var rows []slugRow
	err := s.db.WithContext(ctx).
		Select("slug").
		Where("slug IN ?", candidates).
		Find(&rows).Error
	if err != nil {
		return nil, domain.Wrap(domain.KindUnavailable, "check existing slugs failed", err)
	}
	for _, row := range rows {
		result[row.Slug] = true
	}
	return result, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// gorm.io/driver/postgres surfaces some constraint violations as
	// plain strings when the driver can't build a *pgconn.PgError
	// (e.g. through certain connection poolers); fall back to a
	// substring check the same way the teacher's ConvertMySQLErr
	// falls back to a numeric error code check.
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
