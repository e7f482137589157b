package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"kycdsl/internal/cases/models"
	"kycdsl/internal/platform/postgres"
	txcontext "kycdsl/pkg/platform/tx"
)

// PostgresStore persists case versions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) CreateCase(ctx context.Context, v *models.CaseVersion) error {
	if v.Version != 1 {
		return fmt.Errorf("create case: first version must be 1, got %d", v.Version)
	}
	return s.insertVersion(ctx, s.execer(ctx), v)
}

func (s *PostgresStore) insertVersion(ctx context.Context, exec dbExecutor, v *models.CaseVersion) error {
	query := `
		INSERT INTO kyc_case_versions (case_name, version, dsl_snapshot, hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := exec.ExecContext(ctx, query, v.CaseName, v.Version, v.DSL, v.Hash, v.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert case version: %w", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, caseName string) (*models.CaseVersion, error) {
	query := `
		SELECT case_name, version, dsl_snapshot, hash, created_at
		FROM kyc_case_versions
		WHERE case_name = $1
		ORDER BY version DESC
		LIMIT 1
	`
	var v models.CaseVersion
	err := s.execer(ctx).QueryRowContext(ctx, query, caseName).
		Scan(&v.CaseName, &v.Version, &v.DSL, &v.Hash, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find latest version: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) ListVersions(ctx context.Context, caseName string) ([]*models.CaseVersion, error) {
	query := `
		SELECT case_name, version, dsl_snapshot, hash, created_at
		FROM kyc_case_versions
		WHERE case_name = $1
		ORDER BY version
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, caseName)
	if err != nil {
		return nil, fmt.Errorf("query case versions: %w", err)
	}
	defer rows.Close()

	versions, err := scanVersions(rows)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	return versions, nil
}

// AppendAmendment stores v and its amendment in one transaction. The primary
// key on (case_name, version) turns a concurrent amendment of the same
// version into ErrConflict.
func (s *PostgresStore) AppendAmendment(ctx context.Context, v *models.CaseVersion, a *models.Amendment) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := s.execer(ctx)

		var latest int
		err := exec.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version), 0) FROM kyc_case_versions WHERE case_name = $1`,
			v.CaseName).Scan(&latest)
		if err != nil {
			return fmt.Errorf("find latest version: %w", err)
		}
		if latest == 0 {
			return ErrNotFound
		}
		if latest+1 != v.Version {
			return ErrConflict
		}

		if err := s.insertVersion(ctx, exec, v); err != nil {
			return err
		}

		query := `
			INSERT INTO kyc_case_amendments (id, case_name, version, step, phase, change_type, diff, actor, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err = exec.ExecContext(ctx, query,
			a.ID, a.CaseName, a.Version, a.Type, string(a.Phase), a.ChangeType, a.Diff, a.Actor, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert amendment: %w", err)
		}
		return nil
	})
}

// DeleteCase removes every version and amendment of a case in one
// transaction and reports how many versions were removed.
func (s *PostgresStore) DeleteCase(ctx context.Context, caseName string) (int, error) {
	var removed int64
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := s.execer(ctx)
		if _, err := exec.ExecContext(ctx,
			`DELETE FROM kyc_case_amendments WHERE case_name = $1`, caseName); err != nil {
			return fmt.Errorf("delete amendments: %w", err)
		}
		res, err := exec.ExecContext(ctx,
			`DELETE FROM kyc_case_versions WHERE case_name = $1`, caseName)
		if err != nil {
			return fmt.Errorf("delete case versions: %w", err)
		}
		removed, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("count deleted versions: %w", err)
		}
		if removed == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

func (s *PostgresStore) ListAmendments(ctx context.Context, caseName string) ([]*models.Amendment, error) {
	if _, err := s.Latest(ctx, caseName); err != nil {
		return nil, err
	}

	query := `
		SELECT id, case_name, version, step, phase, change_type, diff, actor, created_at
		FROM kyc_case_amendments
		WHERE case_name = $1
		ORDER BY version
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, caseName)
	if err != nil {
		return nil, fmt.Errorf("query amendments: %w", err)
	}
	defer rows.Close()

	out := []*models.Amendment{}
	for rows.Next() {
		var (
			a     models.Amendment
			phase string
		)
		if err := rows.Scan(&a.ID, &a.CaseName, &a.Version, &a.Type, &phase, &a.ChangeType, &a.Diff, &a.Actor, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan amendment: %w", err)
		}
		a.Phase = models.Phase(phase)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate amendments: %w", err)
	}
	return out, nil
}

// ListCases returns the latest version of each case, ordered by name. A
// non-empty names restricts the result to those cases.
func (s *PostgresStore) ListCases(ctx context.Context, names []string) ([]*models.CaseVersion, error) {
	query := `
		SELECT DISTINCT ON (case_name) case_name, version, dsl_snapshot, hash, created_at
		FROM kyc_case_versions
		WHERE $1::text[] IS NULL OR case_name = ANY($1::text[])
		ORDER BY case_name, version DESC
	`
	var filter any
	if len(names) > 0 {
		filter = pq.Array(names)
	}
	rows, err := s.execer(ctx).QueryContext(ctx, query, filter)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()
	return scanVersions(rows)
}

func scanVersions(rows *sql.Rows) ([]*models.CaseVersion, error) {
	var out []*models.CaseVersion
	for rows.Next() {
		var v models.CaseVersion
		if err := rows.Scan(&v.CaseName, &v.Version, &v.DSL, &v.Hash, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan case version: %w", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case versions: %w", err)
	}
	return out, nil
}
