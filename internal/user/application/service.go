package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mousegear/store/internal/user/domain"
)

// TokenIssuer mints and revokes session tokens for the account service.
type TokenIssuer interface {
	Issue(userID, username string, role string) (string, error)
	Revoke(ctx context.Context, token string) error
}

type Service struct {
	log    *slog.Logger
	repo   UserRepository
	tokens TokenIssuer
}

func NewService(log *slog.Logger, repo UserRepository, tokens TokenIssuer) *Service {
	return &Service{log: log, repo: repo, tokens: tokens}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Password string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return domain.User{}, err
	}
	s.log.Info("user registered", "user_id", u.ID, "name", u.Name)
	u.PasswordHash = ""
	return u, nil
}

// Login resolves the account by username and returns a signed session token.
// Soft-deleted accounts cannot log in.
func (s *Service) Login(ctx context.Context, name, password string) (string, error) {
	u, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if u.Deleted() {
		return "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(u.ID, u.Name, string(u.Role))
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

func (s *Service) Profile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *Service) Update(ctx context.Context, userID string, p domain.PartialUpdate) (domain.User, error) {
	if p.Empty() {
		return s.Profile(ctx, userID)
	}
	u, err := s.repo.Update(ctx, userID, p)
	if err != nil {
		return domain.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// ChangePassword re-authenticates with the old password before setting the
// new hash.
func (s *Service) ChangePassword(ctx context.Context, name, oldPassword, newPassword string) error {
	u, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCredentials
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.SetPasswordHash(ctx, u.ID, string(hash))
}

func (s *Service) SoftDelete(ctx context.Context, userID string) error {
	if err := s.repo.MarkDeleted(ctx, userID); err != nil {
		return err
	}
	s.log.Info("user soft-deleted", "user_id", userID)
	return nil
}

func (s *Service) Restore(ctx context.Context, name string) (domain.User, error) {
	u, err := s.repo.Restore(ctx, name)
	if err != nil {
		return domain.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// ResolveRole is used by the auth middleware to confirm the account behind a
// token still exists.
func (s *Service) ResolveRole(ctx context.Context, userID string) (string, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return string(u.Role), nil
}
