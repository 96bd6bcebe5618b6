package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"ptalsvc/internal/domain"
	"ptalsvc/internal/domain/ptal"
)

const pgUniqueViolation = "23505"

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(ctx context.Context, rec ptal.Record) (ptal.Record, error) {
	var createdAt sql.NullTime

	err := queryRow(ctx, r.db,
		`INSERT INTO ptal_records (channel_id, message_id, owner, repository, pr_number, description, requester)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		rec.ChannelID, rec.MessageID, rec.Owner, rec.Repository, rec.PRNumber, rec.Description, rec.Requester,
	).Scan(&rec.ID, &createdAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ptal.Record{}, domain.ConflictError("message already owns a record")
	}
	if err != nil {
		return ptal.Record{}, err
	}

	if createdAt.Valid {
		t := createdAt.Time
		rec.CreatedAt = &t
	}

	return rec, nil
}

func (r *RecordRepository) GetByPRIdentity(ctx context.Context, owner, repository string, prNumber int) ([]ptal.Record, error) {
	rows, err := query(ctx, r.db,
		`SELECT id, channel_id, message_id, owner, repository, pr_number, description, requester, created_at
		   FROM ptal_records
		  WHERE owner = $1
		    AND repository = $2
		    AND pr_number = $3
		  ORDER BY id`,
		owner, repository, prNumber,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *RecordRepository) GetAll(ctx context.Context) ([]ptal.Record, error) {
	rows, err := query(ctx, r.db,
		`SELECT id, channel_id, message_id, owner, repository, pr_number, description, requester, created_at
		   FROM ptal_records
		  ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Delete is idempotent: removing an already-removed record is not an error.
func (r *RecordRepository) Delete(ctx context.Context, id int64) error {
	_, err := exec(ctx, r.db,
		`DELETE FROM ptal_records WHERE id = $1`,
		id,
	)
	return err
}

func scanRecords(rows *sql.Rows) ([]ptal.Record, error) {
	var res []ptal.Record
	for rows.Next() {
		var rec ptal.Record
		var createdAt sql.NullTime
		if err := rows.Scan(
			&rec.ID, &rec.ChannelID, &rec.MessageID,
			&rec.Owner, &rec.Repository, &rec.PRNumber,
			&rec.Description, &rec.Requester, &createdAt,
		); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			t := createdAt.Time
			rec.CreatedAt = &t
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
