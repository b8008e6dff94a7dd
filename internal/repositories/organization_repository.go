package repositories

import (
	"database/sql"
	"fmt"

	"givehub/internal/models"
)

type OrganizationRepository struct {
	DB *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{DB: db}
}

func (r *OrganizationRepository) Create(org *models.Organization) error {
	const q = `
		INSERT INTO organizations (name, email, contact_name, phone, website, description, is_verified, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,FALSE,NOW())
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(q,
		org.Name, org.Email, org.ContactName, org.Phone, org.Website, org.Description,
	).Scan(&org.ID, &org.CreatedAt)
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) GetByID(id int64) (*models.Organization, error) {
	const q = `
		SELECT id, name, email, contact_name, phone, website, description, is_verified, created_at
		FROM organizations
		WHERE id = $1
	`
	var (
		o                           models.Organization
		contact, phone, site, descr sql.NullString
	)
	err := r.DB.QueryRow(q, id).Scan(
		&o.ID, &o.Name, &o.Email, &contact, &phone, &site, &descr, &o.IsVerified, &o.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	o.ContactName = contact.String
	o.Phone = phone.String
	o.Website = site.String
	o.Description = descr.String
	return &o, nil
}

// SetVerified flips the one-way verification flag.
func (r *OrganizationRepository) SetVerified(id int64) error {
	if _, err := r.DB.Exec(`UPDATE organizations SET is_verified=TRUE WHERE id=$1`, id); err != nil {
		return fmt.Errorf("set organization verified: %w", err)
	}
	return nil
}
