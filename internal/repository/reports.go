package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/entity"
)

const (
	defaultListLimit = 50
	// fixed width so created_at sorts lexically
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

type ReportRepository interface {
	Save(ctx context.Context, r *entity.Report) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	// List returns the newest reports first, without verdict rows. An empty product lists all.
	List(ctx context.Context, product string, limit int) ([]*entity.Report, error)
}

type reportRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewReportRepository(db *DB, logger *slog.Logger) ReportRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &reportRepository{db: db, logger: logger}
}

func (r *reportRepository) Save(ctx context.Context, rep *entity.Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.DBError("begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.db.rebind(
		`INSERT INTO reports (id, product, source, source_sha256, non_compliant, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		rep.ID.String(), rep.Product, rep.Source, rep.SourceSHA256, rep.NonCompliant, rep.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		r.logger.Error("failed to insert report", "report_id", rep.ID, "error", err)
		return common.DBError("insert report", err)
	}

	insertVerdict := r.db.rebind(`INSERT INTO verdicts
		(report_id, position, parameter, label, raw_result, raw_spec, status, reason, matched_branch, critical, note, spec_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, v := range rep.Verdicts {
		_, err := tx.ExecContext(ctx, insertVerdict,
			rep.ID.String(), v.Position, v.Parameter, v.Label, v.RawResult, v.RawSpec,
			v.Status, v.Reason, v.MatchedBranch, v.Critical, v.Note, v.SpecSource,
		)
		if err != nil {
			r.logger.Error("failed to insert verdict", "report_id", rep.ID, "param", v.Parameter, "error", err)
			return common.DBError("insert verdict", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return common.DBError("commit", err)
	}
	r.logger.Debug("report saved", "report_id", rep.ID, "product", rep.Product, "verdicts", len(rep.Verdicts))
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, product, source, source_sha256, non_compliant, created_at FROM reports WHERE id = ?`), id.String())
	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("report %s not found", id), common.ErrNotFound)
	}
	if err != nil {
		return nil, common.DBError("get report", err)
	}

	rows, err := r.db.QueryContext(ctx, r.db.rebind(
		`SELECT position, parameter, label, raw_result, raw_spec, status, reason, matched_branch, critical, note, spec_source
		FROM verdicts WHERE report_id = ? ORDER BY position`), id.String())
	if err != nil {
		return nil, common.DBError("list verdicts", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v entity.Verdict
		if err := rows.Scan(&v.Position, &v.Parameter, &v.Label, &v.RawResult, &v.RawSpec,
			&v.Status, &v.Reason, &v.MatchedBranch, &v.Critical, &v.Note, &v.SpecSource); err != nil {
			return nil, common.DBError("scan verdict", err)
		}
		rep.Verdicts = append(rep.Verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, common.DBError("iterate verdicts", err)
	}
	return rep, nil
}

func (r *reportRepository) List(ctx context.Context, product string, limit int) ([]*entity.Report, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := `SELECT id, product, source, source_sha256, non_compliant, created_at FROM reports`
	args := []any{}
	if product != "" {
		q += ` WHERE product = ?`
		args = append(args, product)
	}
	q += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, r.db.rebind(q), args...)
	if err != nil {
		r.logger.Error("failed to list reports", "product", product, "error", err)
		return nil, common.DBError("list reports", err)
	}
	defer rows.Close()

	var out []*entity.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, common.DBError("scan report", err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, common.DBError("iterate reports", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (*entity.Report, error) {
	var (
		rep       entity.Report
		id        string
		createdAt string
	)
	if err := s.Scan(&id, &rep.Product, &rep.Source, &rep.SourceSHA256, &rep.NonCompliant, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("report id %q: %w", id, err)
	}
	rep.ID = parsed
	if rep.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("report created_at %q: %w", createdAt, err)
	}
	return &rep, nil
}
