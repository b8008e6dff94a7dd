package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"givehub/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int64) (*models.User, error)
	GetByEmail(email string) (*models.User, error)

	// refresh helpers
	UpdateRefresh(userID int64, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	ClearRefresh(userID int64) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (email, password_hash, role_id, organization_id, refresh_token, refresh_expires_at, refresh_revoked)
		VALUES ($1,$2,$3,$4,NULL,NULL,FALSE)
		RETURNING id
	`
	if err := r.DB.QueryRow(q,
		user.Email, user.PasswordHash, user.RoleID, user.OrganizationID,
	).Scan(&user.ID); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		orgID sql.NullInt64
		rt    sql.NullString
		rte   sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.RoleID, &orgID, &rt, &rte, &u.RefreshRevoked)
	if err != nil {
		return nil, err
	}
	if orgID.Valid {
		id := orgID.Int64
		u.OrganizationID = &id
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	return u, nil
}

const userColumns = `id, email, password_hash, role_id, organization_id, refresh_token, refresh_expires_at, refresh_revoked`

func (r *userRepository) GetByID(id int64) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE email=$1`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) UpdateRefresh(userID int64, token string, expiresAt time.Time) error {
	const q = `UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE WHERE id=$3`
	if _, err := r.DB.Exec(q, token, expiresAt, userID); err != nil {
		return fmt.Errorf("update refresh: %w", err)
	}
	return nil
}

// RotateRefresh atomically swaps a valid refresh token for a new one and
// returns the owning user. nil user means the old token was unknown,
// revoked or expired.
func (r *userRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	const q = `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2
		WHERE refresh_token=$3 AND refresh_revoked=FALSE AND refresh_expires_at > NOW()
		RETURNING ` + userColumns
	u, err := scanUser(r.DB.QueryRow(q, newToken, newExpiresAt, oldToken))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rotate refresh: %w", err)
	}
	return u, nil
}

func (r *userRepository) ClearRefresh(userID int64) error {
	const q = `UPDATE users SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=TRUE WHERE id=$1`
	if _, err := r.DB.Exec(q, userID); err != nil {
		return fmt.Errorf("clear refresh: %w", err)
	}
	return nil
}
