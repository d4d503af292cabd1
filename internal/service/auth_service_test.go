package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condo-care/backend/internal/domain"
	"github.com/condo-care/backend/internal/security/auth"
)

type memUserRepo struct {
	nextID     int64
	byID       map[int64]*domain.User
	byUsername map[string]*domain.User
	byEmail    map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		nextID:     1,
		byID:       map[int64]*domain.User{},
		byUsername: map[string]*domain.User{},
		byEmail:    map[string]*domain.User{},
	}
}

func (m *memUserRepo) Create(u *domain.User) error {
	if _, ok := m.byUsername[u.Username]; ok {
		return domain.ErrDuplicateUsername
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byUsername[u.Username] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) GetByID(id int64) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByUsername(username string) (*domain.User, error) {
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) List() ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) Update(u *domain.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = u
	m.byUsername[u.Username] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) Delete(id int64) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	delete(m.byUsername, u.Username)
	delete(m.byEmail, u.Email)
	return nil
}

func newAuthService() *AuthService {
	return NewAuthService(newMemUserRepo(), auth.NewTokenManager("test-secret", "condocare", time.Hour), nil)
}

func TestRegisterThenLogin(t *testing.T) {
	s := newAuthService()

	reg, err := s.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pass1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, domain.RoleUser, reg.User.Role)

	login, err := s.Login("alice", "pass1234")
	require.NoError(t, err)

	claims, err := s.VerifyToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, reg.User.Role, claims.Role)
	assert.Equal(t, reg.User.ID, claims.UserID)
}

func TestRegisterValidation(t *testing.T) {
	s := newAuthService()

	_, err := s.Register(RegisterInput{Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Register(RegisterInput{Username: "alice", Email: "a@b.c", Password: "x", Role: "owner"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newAuthService()

	_, err := s.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pass1234"})
	require.NoError(t, err)

	_, err = s.Register(RegisterInput{Username: "alice", Email: "other@example.com", Password: "pass1234"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	s := newAuthService()

	_, err := s.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pass1234"})
	require.NoError(t, err)

	_, unknownErr := s.Login("nobody", "pass1234")
	_, wrongPassErr := s.Login("alice", "wrong")

	assert.ErrorIs(t, unknownErr, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassErr, domain.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongPassErr.Error())
}

func TestRegisterKeepsExplicitStaffRole(t *testing.T) {
	s := newAuthService()

	reg, err := s.Register(RegisterInput{Username: "tech", Email: "tech@example.com", Password: "pass1234", Role: domain.RoleTech})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTech, reg.User.Role)

	claims, err := s.VerifyToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTech, claims.Role)
}
