package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/postgen/internal/models"
)

const publicationsSchema = `
	CREATE TABLE IF NOT EXISTS publications (
		id            BIGSERIAL PRIMARY KEY,
		owner_id      BIGINT,
		platform      VARCHAR(32) NOT NULL,
		text          TEXT NOT NULL,
		media_url     TEXT,
		video_path    TEXT,
		status        VARCHAR(16) NOT NULL DEFAULT 'pending',
		external_id   TEXT,
		error_kind    VARCHAR(32),
		error_message TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		claimed_at    TIMESTAMPTZ,
		processed_at  TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS publications_status_idx ON publications (status, id);
`

const publicationColumns = `id, owner_id, platform, text, COALESCE(media_url, ''), COALESCE(video_path, ''), status,
	COALESCE(external_id, ''), COALESCE(error_kind, ''), COALESCE(error_message, ''), created_at, claimed_at, processed_at`

type PublicationRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, p *models.Publication) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Publication, error)
	List(ctx context.Context, ownerID int64) ([]*models.Publication, error)
	ListPending(ctx context.Context) ([]*models.Publication, error)
	CountPending(ctx context.Context) (int64, error)
	Claim(ctx context.Context, id int64) (bool, error)
	MarkPublished(ctx context.Context, id int64, externalID string) error
	MarkFailed(ctx context.Context, id int64, kind models.ErrorKind, message string) error
	RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error)
}

type publicationRepository struct {
	db *sql.DB
}

func NewPublicationRepository(db *sql.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

func (r *publicationRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, publicationsSchema); err != nil {
		return fmt.Errorf("failed to create publications table: %w", err)
	}
	return nil
}

func (r *publicationRepository) Create(ctx context.Context, p *models.Publication) (int64, error) {
	query := `
		INSERT INTO publications (owner_id, platform, text, media_url, video_path, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	var ownerID sql.NullInt64
	if p.OwnerID != nil {
		ownerID = sql.NullInt64{Int64: *p.OwnerID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		ownerID, p.Platform, p.Text, nullString(p.MediaURL), nullString(p.VideoPath), models.PublicationStatusPending,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("failed to create publication: %w", err)
	}

	p.Status = models.PublicationStatusPending
	return p.ID, nil
}

func (r *publicationRepository) GetByID(ctx context.Context, id int64) (*models.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE id = $1`

	p, err := scanPublication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return p, nil
}

// List returns the owner's publications, newest first. An ownerID of zero lists the
// anonymous publications only.
func (r *publicationRepository) List(ctx context.Context, ownerID int64) ([]*models.Publication, error) {
	if ownerID == 0 {
		return r.query(ctx, `SELECT `+publicationColumns+` FROM publications WHERE owner_id IS NULL ORDER BY id DESC`)
	}
	return r.query(ctx, `SELECT `+publicationColumns+` FROM publications WHERE owner_id = $1 ORDER BY id DESC`, ownerID)
}

func (r *publicationRepository) ListPending(ctx context.Context) ([]*models.Publication, error) {
	return r.query(ctx, `SELECT `+publicationColumns+` FROM publications WHERE status = $1 ORDER BY id`, models.PublicationStatusPending)
}

func (r *publicationRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM publications WHERE status = $1`, models.PublicationStatusPending).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

// Claim moves a pending row to processing. It reports false when another claim got there first.
func (r *publicationRepository) Claim(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE publications
		SET status = $1,
			claimed_at = $2
		WHERE id = $3 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, query, models.PublicationStatusProcessing, time.Now(), id, models.PublicationStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, fmt.Errorf("failed to claim publication %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *publicationRepository) MarkPublished(ctx context.Context, id int64, externalID string) error {
	query := `
		UPDATE publications
		SET status = $1,
			external_id = $2,
			error_kind = NULL,
			error_message = NULL,
			processed_at = $3
		WHERE id = $4 AND status = $5
	`
	return r.finish(ctx, id, query, models.PublicationStatusPublished, externalID, time.Now(), id, models.PublicationStatusProcessing)
}

func (r *publicationRepository) MarkFailed(ctx context.Context, id int64, kind models.ErrorKind, message string) error {
	query := `
		UPDATE publications
		SET status = $1,
			error_kind = $2,
			error_message = $3,
			processed_at = $4
		WHERE id = $5 AND status = $6
	`
	return r.finish(ctx, id, query, models.PublicationStatusFailed, string(kind), message, time.Now(), id, models.PublicationStatusProcessing)
}

// RequeueStale returns rows whose processing lease started before the cutoff to pending.
func (r *publicationRepository) RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	query := `
		UPDATE publications
		SET status = $1,
			claimed_at = NULL
		WHERE status = $2 AND claimed_at < $3
	`
	res, err := r.db.ExecContext(ctx, query, models.PublicationStatusPending, models.PublicationStatusProcessing, claimedBefore)
	if err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("failed to requeue stale publications: %w", err)
	}
	return res.RowsAffected()
}

func (r *publicationRepository) finish(ctx context.Context, id int64, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to update publication %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("publication %d is not processing", id)
	}
	return nil
}

func (r *publicationRepository) query(ctx context.Context, query string, args ...any) ([]*models.Publication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var publications []*models.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		publications = append(publications, p)
	}
	return publications, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPublication(row rowScanner) (*models.Publication, error) {
	var p models.Publication
	var ownerID sql.NullInt64
	var errorKind string
	var claimedAt, processedAt sql.NullTime

	err := row.Scan(&p.ID, &ownerID, &p.Platform, &p.Text, &p.MediaURL, &p.VideoPath, &p.Status,
		&p.ExternalID, &errorKind, &p.ErrorMessage, &p.CreatedAt, &claimedAt, &processedAt)
	if err != nil {
		return nil, err
	}

	if ownerID.Valid {
		p.OwnerID = &ownerID.Int64
	}
	p.ErrorKind = models.ErrorKind(errorKind)
	if claimedAt.Valid {
		p.ClaimedAt = &claimedAt.Time
	}
	if processedAt.Valid {
		p.ProcessedAt = &processedAt.Time
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
