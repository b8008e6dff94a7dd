package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"givehub/internal/models"
)

// ErrPendingConflict is returned when the partial unique index on
// (organization_id) WHERE status='pending' rejects the insert: another
// pending request already exists. This is the store-level guard against concurrent submissions.
var ErrPendingConflict = errors.New("pending verification request already exists")

type VerificationRepository struct {
	DB *sql.DB
}

func NewVerificationRepository(db *sql.DB) *VerificationRepository {
	return &VerificationRepository{DB: db}
}

const verificationColumns = `
	id, organization_id, document_path, document_name, status, submitted_at,
	reviewed_at, reviewed_by_first_name, reviewed_by_last_name, reviewed_by_phone, admin_notes`

func scanVerification(row interface{ Scan(...any) error }) (*models.VerificationRequest, error) {
	var (
		v         models.VerificationRequest
		rat       sql.NullTime
		fn, ln    sql.NullString
		ph, notes sql.NullString
	)
	err := row.Scan(
		&v.ID, &v.OrganizationID, &v.DocumentPath, &v.DocumentName, &v.Status, &v.SubmittedAt,
		&rat, &fn, &ln, &ph, &notes,
	)
	if err != nil {
		return nil, err
	}
	if rat.Valid {
		t := rat.Time
		v.ReviewedAt = &t
	}
	v.ReviewedByFirstName = fn.String
	v.ReviewedByLastName = ln.String
	v.ReviewedByPhone = ph.String
	v.AdminNotes = notes.String
	return &v, nil
}

func (r *VerificationRepository) Insert(req *models.VerificationRequest) error {
	const q = `
		INSERT INTO verification_requests (organization_id, document_path, document_name, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRow(q,
		req.OrganizationID,
		req.DocumentPath,
		req.DocumentName,
		req.Status,
		req.SubmittedAt,
	).Scan(&req.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrPendingConflict
		}
		return fmt.Errorf("insert verification request: %w", err)
	}
	return nil
}

func (r *VerificationRepository) GetByID(id int64) (*models.VerificationRequest, error) {
	q := `SELECT` + verificationColumns + ` FROM verification_requests WHERE id = $1`
	v, err := scanVerification(r.DB.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get verification request: %w", err)
	}
	return v, nil
}

// ListByOrganization returns the organization's requests newest first.
func (r *VerificationRepository) ListByOrganization(organizationID int64) ([]*models.VerificationRequest, error) {
	q := `SELECT` + verificationColumns + `
		FROM verification_requests
		WHERE organization_id = $1
		ORDER BY submitted_at DESC`
	rows, err := r.DB.Query(q, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list verification requests: %w", err)
	}
	defer rows.Close()

	var out []*models.VerificationRequest
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification request: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListPending returns the reviewer queue, oldest submission first.
func (r *VerificationRepository) ListPending(limit, offset int) ([]*models.VerificationRequest, error) {
	q := `SELECT` + verificationColumns + `
		FROM verification_requests
		WHERE status = 'pending'
		ORDER BY submitted_at ASC
		LIMIT $1 OFFSET $2`
	rows, err := r.DB.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var out []*models.VerificationRequest
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VerificationRepository) MarkCancelled(id int64) error {
	if _, err := r.DB.Exec(
		`UPDATE verification_requests SET status='cancelled' WHERE id=$1 AND status='pending'`, id,
	); err != nil {
		return fmt.Errorf("cancel verification request: %w", err)
	}
	return nil
}

// Review stamps the terminal status and reviewer details on a pending request.
func (r *VerificationRepository) Review(id int64, status string, reviewer models.Reviewer, notes string) error {
	const q = `
		UPDATE verification_requests
		SET status=$1, reviewed_at=NOW(),
		    reviewed_by_first_name=$2, reviewed_by_last_name=$3, reviewed_by_phone=$4,
		    admin_notes=$5
		WHERE id=$6
	`
	if _, err := r.DB.Exec(q, status, reviewer.FirstName, reviewer.LastName, reviewer.Phone, notes, id); err != nil {
		return fmt.Errorf("review verification request: %w", err)
	}
	return nil
}

func (r *VerificationRepository) DeleteByIDs(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.DB.Exec(
		`DELETE FROM verification_requests WHERE id = ANY($1)`, pq.Array(ids),
	); err != nil {
		return fmt.Errorf("delete verification requests: %w", err)
	}
	return nil
}

func (r *VerificationRepository) Delete(id int64) error {
	if _, err := r.DB.Exec(`DELETE FROM verification_requests WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete verification request: %w", err)
	}
	return nil
}
