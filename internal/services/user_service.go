package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"givehub/internal/authz"
	"givehub/internal/models"
	"givehub/internal/repositories"
)

type UserService interface {
	RegisterOrganization(org *models.Organization, email, plainPassword string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	UpdateRefresh(userID int64, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
}

type userService struct {
	users        repositories.UserRepository
	orgs         *repositories.OrganizationRepository
	emailService EmailService
	authService  AuthService
}

func NewUserService(
	users repositories.UserRepository,
	orgs *repositories.OrganizationRepository,
	emailService EmailService,
	authService AuthService,
) UserService {
	return &userService{
		users:        users,
		orgs:         orgs,
		emailService: emailService,
		authService:  authService,
	}
}

// RegisterOrganization creates the organization record and its login
// account. The welcome email is best effort.
func (s *userService) RegisterOrganization(org *models.Organization, email, plainPassword string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if strings.TrimSpace(plainPassword) == "" {
		return nil, fmt.Errorf("password is required")
	}
	if existing, err := s.users.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return nil, err
	}

	org.Email = email
	if err := s.orgs.Create(org); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:          email,
		PasswordHash:   hash,
		RoleID:         authz.RoleOrganization,
		OrganizationID: &org.ID,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(email, org.Name); err != nil {
			// warn but do not fail registration
			log.Printf("[user][register] welcome email failed for %s: %v", email, err)
		}
	}
	return user, nil
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	return s.users.GetByEmail(strings.TrimSpace(strings.ToLower(email)))
}

func (s *userService) GetUserByID(id int64) (*models.User, error) {
	return s.users.GetByID(id)
}

func (s *userService) UpdateRefresh(userID int64, token string, expiresAt time.Time) error {
	return s.users.UpdateRefresh(userID, token, expiresAt)
}

func (s *userService) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	return s.users.RotateRefresh(oldToken, newToken, newExpiresAt)
}
