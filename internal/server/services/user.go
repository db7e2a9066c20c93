// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and profile management, and
// issues session credentials through the authenticator.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CredentialIssuer is satisfied by *auth.Authenticator.
type CredentialIssuer interface {
	Issue(id auth.Identity) (auth.Credential, error)
}

// AuthResult is a user together with a freshly issued credential.
type AuthResult struct {
	User       *models.User
	Credential auth.Credential
}

// UserService provides account operations:
// - Register / Login: verify or create the user and issue a credential
// - Profile / UpdateProfile / ChangePassword: manage the caller's account
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      CredentialIssuer
	bcryptCost  int

	// dummyHash is compared against when the user does not exist, so that
	// both failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, issuer CredentialIssuer, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("stockkeeper-dummy-password"), bcryptCost)
	return &UserService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		bcryptCost:  bcryptCost,
		dummyHash:   dummy,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user and issues a credential for it.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	u, err := s.CreateUser(ctx, name, email, password)
	if err != nil {
		return nil, err
	}

	return s.issue(u)
}

// CreateUser stores a new user without issuing a credential. The admin CLI
// uses it directly.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, common.Invalid("All fields required")
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("email already registered: %w", common.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login checks identifier (email or name) and password and, on success,
// issues a credential. Unknown users and wrong passwords are not told apart.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, common.ErrUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}

	return s.issue(user)
}

// Profile returns the user identified by userID.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	userID, err := sessionUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateProfile changes the name and/or email of the caller. Empty values
// keep the current ones. The caller's credential stays valid: it is keyed by
// user id, not email.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, email string) (*models.User, error) {
	userID, err := sessionUserID(userID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" && email == "" {
		return nil, common.Invalid("Nothing to update")
	}

	repo := s.repomanager.Users(s.db)
	current, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = current.Name
	}
	if email == "" {
		email = current.Email
	}

	u, err := repo.UpdateProfile(ctx, userID, name, email)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("email already registered: %w", common.ErrAlreadyExists)
		}
		return nil, err
	}
	return u, nil
}

// ChangePassword replaces the caller's password after checking the current
// one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	userID, err := sessionUserID(userID)
	if err != nil {
		return err
	}
	if current == "" || next == "" {
		return common.Invalid("Current and new password required")
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(current)) != nil {
		return common.Invalid("Current password is incorrect")
	}

	hash, err := s.hashPassword(next)
	if err != nil {
		return err
	}
	return repo.UpdatePassword(ctx, userID, hash)
}

// --- helpers below ---

// sessionUserID returns the canonical form of a session's user id. Tokens
// from layouts that predate uuid keys verify but name no stored user.
func sessionUserID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", common.ErrUnauthorized
	}
	return u.String(), nil
}

func (s *UserService) hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.Invalid("Password is too long")
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return hash, nil
}

func (s *UserService) issue(u *models.User) (*AuthResult, error) {
	cred, err := s.issuer.Issue(auth.Identity{ID: u.ID, Email: u.Email})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return &AuthResult{User: u, Credential: cred}, nil
}
