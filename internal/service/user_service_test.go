package service

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"Elegora/internal/model"
	"Elegora/internal/repo"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m, big.NewInt(42))

	t.Run("ok when login free", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "john").Return((*model.User)(nil), nil).Once()
		created := &model.User{ID: 10, Login: "john"}
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Login == "john" && u.Password != "" && u.Password != "p@ss" &&
				common.IsHexAddress(u.Address) && u.Balance == "42"
		})).Return(created, nil).Once()

		user, err := svc.Register(ctx, "john", "p@ss")
		assert.NoError(t, err)
		assert.Equal(t, int64(10), user.ID)
		m.AssertExpectations(t)
	})

	t.Run("ok when repo reports record not found", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "kate").Return(nil, gorm.ErrRecordNotFound).Once()
		m.On("CreateUser", mock.Anything, mock.Anything).Return(&model.User{ID: 11, Login: "kate"}, nil).Once()

		user, err := svc.Register(ctx, "kate", "pw")
		assert.NoError(t, err)
		assert.Equal(t, int64(11), user.ID)
		m.AssertExpectations(t)
	})

	t.Run("empty credentials", func(t *testing.T) {
		m.ExpectedCalls, m.Calls = nil, nil
		_, err := svc.Register(ctx, "  ", "pw")
		assert.ErrorIs(t, err, ErrEmptyCredentials)
		m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("conflict when login taken", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "john").Return(&model.User{ID: 1, Login: "john"}, nil).Once()

		user, err := svc.Register(ctx, "john", "p@ss")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrLoginTaken)
		m.AssertExpectations(t)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m, big.NewInt(42))

	// готовим хеш для пароля "secret"
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)

	t.Run("ok with valid credentials", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "alice").Return(&model.User{ID: 2, Login: "alice", Password: string(hash)}, nil).Once()

		user, err := svc.Login(ctx, "alice", "secret")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), user.ID)
		m.AssertExpectations(t)
	})

	t.Run("invalid password", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "alice").Return(&model.User{ID: 2, Login: "alice", Password: string(hash)}, nil).Once()

		user, err := svc.Login(ctx, "alice", "wrong")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		m.AssertExpectations(t)
	})

	t.Run("unknown login", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound).Once()

		user, err := svc.Login(ctx, "ghost", "secret")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_Get(t *testing.T) {
	m := new(mockUserRepo)
	svc := NewUserService(m, nil)
	m.On("GetUserByID", mock.Anything, int64(3)).Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := svc.Get(context.Background(), 3)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
