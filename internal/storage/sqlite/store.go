// Package sqlite implements the storage.Store contract on a SQLite file
// using the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"reviewharvest/internal/review"
	"reviewharvest/internal/storage"
)

// Store writes review rows into a SQLite database file.
type Store struct {
	db    *sql.DB
	table string
}

// Open opens (or creates) the database file. The table is not touched
// until InitSchema runs.
func Open(path, table string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if table == "" {
		table = "items"
	}
	if err := storage.ValidateTableName(table); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The crawl is single-writer; one connection avoids SQLITE_BUSY
	// between the per-record transactions.
	db.SetMaxOpenConns(1)
	return &Store{db: db, table: table}, nil
}

// InitSchema drops and recreates the items table.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", s.table)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	create := fmt.Sprintf(`CREATE TABLE %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
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
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// SaveReview inserts one row inside its own transaction.
func (s *Store) SaveReview(ctx context.Context, r review.NormalizedReview) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (
	title, reviewer_name, reviewer_position, reviewer_company,
	published_date, published_time,
	custo_beneficio, facilidade_uso, funcionalidades, suporte_cliente,
	preferencias, melhorias, problemas_resolvidos_beneficios
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	res, err := tx.ExecContext(ctx, insert,
		r.Title, r.ReviewerName, r.ReviewerPosition, r.ReviewerCompany,
		r.PublishedDate, r.PublishedTime,
		r.CostBenefit, r.EaseOfUse, r.Functionality, r.Support,
		r.Likes, r.Improvements, r.Problems,
	)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return 0, fmt.Errorf("insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return 0, fmt.Errorf("read inserted id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// AddColumnIfAbsent consults the table metadata before issuing ALTER, so
// re-running a downstream pass is a no-op rather than an error.
func (s *Store) AddColumnIfAbsent(ctx context.Context, column, sqlType string) error {
	if err := storage.ValidateTableName(column); err != nil {
		return err
	}
	exists, err := s.columnExists(ctx, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", s.table, column, sqlType)
	if _, err := s.db.ExecContext(ctx, alter); err != nil {
		return fmt.Errorf("add column %s: %w", column, err)
	}
	return nil
}

func (s *Store) columnExists(ctx context.Context, column string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", s.table))
	if err != nil {
		return false, fmt.Errorf("read table info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return false, fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate table info: %w", err)
	}
	return false, nil
}

// ListRatings reads id plus the four rating columns for every row.
func (s *Store) ListRatings(ctx context.Context) ([]storage.RatingRow, error) {
	query := fmt.Sprintf(
		"SELECT id, custo_beneficio, facilidade_uso, funcionalidades, suporte_cliente FROM %s ORDER BY id",
		s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var out []storage.RatingRow
	for rows.Next() {
		var (
			row  storage.RatingRow
			vals [4]sql.NullString
		)
		if err := rows.Scan(&row.ID, &vals[0], &vals[1], &vals[2], &vals[3]); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		for _, v := range vals {
			row.Values = append(row.Values, v.String)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

// UpdateSentiment writes the row mean and sentiment label back.
func (s *Store) UpdateSentiment(ctx context.Context, id int64, mean *float64, label string) error {
	query := fmt.Sprintf("UPDATE %s SET media = ?, sentimento_estrelas = ? WHERE id = ?", s.table)
	var meanVal any
	if mean != nil {
		meanVal = *mean
	}
	if _, err := s.db.ExecContext(ctx, query, meanVal, label, id); err != nil {
		return fmt.Errorf("update sentiment for row %d: %w", id, err)
	}
	return nil
}

// ListAnswers reads id plus the three free-text columns for every row.
func (s *Store) ListAnswers(ctx context.Context) ([]storage.AnswerRow, error) {
	query := fmt.Sprintf(
		"SELECT id, preferencias, melhorias, problemas_resolvidos_beneficios FROM %s ORDER BY id",
		s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var out []storage.AnswerRow
	for rows.Next() {
		var (
			row  storage.AnswerRow
			vals [3]sql.NullString
		)
		if err := rows.Scan(&row.ID, &vals[0], &vals[1], &vals[2]); err != nil {
			return nil, fmt.Errorf("scan answer row: %w", err)
		}
		row.Likes, row.Improvements, row.Problems = vals[0].String, vals[1].String, vals[2].String
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
		"UPDATE %s SET preferencias_tokens = ?, melhorias_tokens = ?, problemas_resolvidos_beneficios_tokens = ? WHERE id = ?",
		s.table)
	if _, err := s.db.ExecContext(ctx, query, likes, improvements, problems, id); err != nil {
		return fmt.Errorf("update tokens for row %d: %w", id, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite database: %w", err)
	}
	return nil
}
