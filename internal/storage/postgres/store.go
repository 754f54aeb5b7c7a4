// Package postgres implements the storage.Store contract on PostgreSQL
// using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"reviewharvest/internal/review"
	"reviewharvest/internal/storage"
)

// Pool is the subset of pgxpool.Pool the store needs. It matches the
// pgxmock pool interface so tests can substitute a mock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store writes review rows into Postgres.
type Store struct {
	pool  Pool
	table string
}

// Open connects to Postgres using the provided DSN.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	if table == "" {
		table = "items"
	}
	if err := storage.ValidateTableName(table); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for
// testing).
func NewWithPool(pool Pool, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "items"
	}
	if err := storage.ValidateTableName(table); err != nil {
		return nil, err
	}
	return &Store{pool: pool, table: table}, nil
}

// InitSchema drops and recreates the items table.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", s.table)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	create := fmt.Sprintf(`CREATE TABLE %s (
	id BIGSERIAL PRIMARY KEY,
	title TEXT,
	reviewer_name TEXT,
	reviewer_position TEXT,
	reviewer_company TEXT,
	published_date TEXT,
	published_time TEXT,
	custo_beneficio INTEGER,
	facilidade_uso INTEGER,
	funcionalidades INTEGER,
	suporte_cliente INTEGER,
	preferencias TEXT,
	melhorias TEXT,
	problemas_resolvidos_beneficios TEXT
)`, s.table)
	if _, err := s.pool.Exec(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// SaveReview inserts one row inside its own transaction and returns the
// assigned identity.
func (s *Store) SaveReview(ctx context.Context, r review.NormalizedReview) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (
	title, reviewer_name, reviewer_position, reviewer_company,
	published_date, published_time,
	custo_beneficio, facilidade_uso, funcionalidades, suporte_cliente,
	preferencias, melhorias, problemas_resolvidos_beneficios
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
RETURNING id`, s.table)

	var id int64
	err = tx.QueryRow(ctx, insert,
		r.Title, r.ReviewerName, r.ReviewerPosition, r.ReviewerCompany,
		r.PublishedDate, r.PublishedTime,
		r.CostBenefit, r.EaseOfUse, r.Functionality, r.Support,
		r.Likes, r.Improvements, r.Problems,
	).Scan(&id)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return 0, fmt.Errorf("insert review: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// AddColumnIfAbsent consults information_schema before issuing ALTER.
func (s *Store) AddColumnIfAbsent(ctx context.Context, column, sqlType string) error {
	if err := storage.ValidateTableName(column); err != nil {
		return err
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = $1 AND column_name = $2
		)`, s.table, column).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check column %s: %w", column, err)
	}
	if exists {
		return nil
	}
	alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", s.table, column, sqlType)
	if _, err := s.pool.Exec(ctx, alter); err != nil {
		return fmt.Errorf("add column %s: %w", column, err)
	}
	return nil
}

// ListRatings reads id plus the four rating columns for every row. The
// values come back as text so non-numeric content coerces downstream.
func (s *Store) ListRatings(ctx context.Context) ([]storage.RatingRow, error) {
	query := fmt.Sprintf(
		`SELECT id,
	custo_beneficio::text, facilidade_uso::text,
	funcionalidades::text, suporte_cliente::text
FROM %s ORDER BY id`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var out []storage.RatingRow
	for rows.Next() {
		var (
			row  storage.RatingRow
			vals [4]*string
		)
		if err := rows.Scan(&row.ID, &vals[0], &vals[1], &vals[2], &vals[3]); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		for _, v := range vals {
			if v == nil {
				row.Values = append(row.Values, "")
				continue
			}
			row.Values = append(row.Values, *v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

// UpdateSentiment writes the row mean (nil stores NULL) and label back.
func (s *Store) UpdateSentiment(ctx context.Context, id int64, mean *float64, label string) error {
	query := fmt.Sprintf("UPDATE %s SET media = $1, sentimento_estrelas = $2 WHERE id = $3", s.table)
	if _, err := s.pool.Exec(ctx, query, mean, label, id); err != nil {
		return fmt.Errorf("update sentiment for row %d: %w", id, err)
	}
	return nil
}

// ListAnswers reads id plus the three free-text columns for every row.
func (s *Store) ListAnswers(ctx context.Context) ([]storage.AnswerRow, error) {
	query := fmt.Sprintf(
		"SELECT id, preferencias, melhorias, problemas_resolvidos_beneficios FROM %s ORDER BY id",
		s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var out []storage.AnswerRow
	for rows.Next() {
		var (
			row  storage.AnswerRow
			vals [3]*string
		)
		if err := rows.Scan(&row.ID, &vals[0], &vals[1], &vals[2]); err != nil {
			return nil, fmt.Errorf("scan answer row: %w", err)
		}
		row.Likes = deref(vals[0])
		row.Improvements = deref(vals[1])
		row.Problems = deref(vals[2])
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return out, nil
}

// UpdateTokens writes the three token-text columns back.
func (s *Store) UpdateTokens(ctx context.Context, id int64, likes, improvements, problems string) error {
	query := fmt.Sprintf(
		`UPDATE %s SET preferencias_tokens = $1, melhorias_tokens = $2,
	problemas_resolvidos_beneficios_tokens = $3 WHERE id = $4`, s.table)
	if _, err := s.pool.Exec(ctx, query, likes, improvements, problems, id); err != nil {
		return fmt.Errorf("update tokens for row %d: %w", id, err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
