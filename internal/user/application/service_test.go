package application_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mousegear/store/internal/user/application"
	"github.com/mousegear/store/internal/user/domain"
)

type memUsers struct {
	application.UserRepository
	byID map[string]domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]domain.User{}}
}

func (m *memUsers) Create(_ context.Context, u domain.User) error {
	for _, existing := range m.byID {
		if existing.Name == u.Name {
			return domain.ErrNameTaken
		}
	}
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok || u.Deleted() {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) FindByName(_ context.Context, name string) (domain.User, error) {
	for _, u := range m.byID {
		if u.Name == name {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memUsers) SetPasswordHash(_ context.Context, id, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	m.byID[id] = u
	return nil
}

func (m *memUsers) MarkDeleted(_ context.Context, id string) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	m.byID[id] = u
	return nil
}

type staticTokens struct{}

func (staticTokens) Issue(userID, username, role string) (string, error) { return "token", nil }
func (staticTokens) Revoke(ctx context.Context, token string) error      { return nil }

func newUserService(repo application.UserRepository) *application.Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return application.NewService(log, repo, staticTokens{})
}

func register(t *testing.T, svc *application.Service, name string) domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), application.RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Phone:    "0812345678",
		Address:  "1 Main St",
		Password: "hunter22",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemUsers()
	svc := newUserService(repo)

	u := register(t, svc, "alice")
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Empty(t, u.PasswordHash, "hash never leaves the service")

	token, err := svc.Login(context.Background(), "alice", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestRegisterDuplicateName(t *testing.T) {
	repo := newMemUsers()
	svc := newUserService(repo)

	register(t, svc, "alice")
	_, err := svc.Register(context.Background(), application.RegisterInput{
		Name: "alice", Email: "other@example.com", Password: "hunter22",
	})
	assert.ErrorIs(t, err, domain.ErrNameTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMemUsers()
	svc := newUserService(repo)
	register(t, svc, "alice")

	_, err := svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown usernames fail the same way, so login leaks nothing.
	_, err = svc.Login(context.Background(), "nobody", "hunter22")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginSoftDeletedAccount(t *testing.T) {
	repo := newMemUsers()
	svc := newUserService(repo)
	u := register(t, svc, "alice")

	require.NoError(t, svc.SoftDelete(context.Background(), u.ID))
	_, err := svc.Login(context.Background(), "alice", "hunter22")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	repo := newMemUsers()
	svc := newUserService(repo)
	register(t, svc, "alice")

	err := svc.ChangePassword(context.Background(), "alice", "wrong", "newpass99")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), "alice", "hunter22", "newpass99"))
	_, err = svc.Login(context.Background(), "alice", "hunter22")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "alice", "newpass99")
	assert.NoError(t, err)
}
