package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"Elegora/internal/model"
	"Elegora/internal/repo"
)

var (
	ErrLoginTaken         = errors.New("login already taken")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrEmptyCredentials   = errors.New("login and password are required")
	ErrUserNotFound       = errors.New("user not found")
	defaultInitialBalance = big.NewInt(1_000_000_000_000_000_000)
)

// UserService — регистрация и вход в dev-леджер. Каждому аккаунту выдаётся адрес и стартовый баланс.
type UserService struct {
	repo           repo.UserRepository
	initialBalance *big.Int
}

// NewUserService создаёт сервис; nil initialBalance — 1 ether.
func NewUserService(r repo.UserRepository, initialBalance *big.Int) *UserService {
	if initialBalance == nil {
		initialBalance = defaultInitialBalance
	}
	return &UserService{repo: r, initialBalance: initialBalance}
}

// Register создаёт аккаунт. Занятый логин — ErrLoginTaken.
func (s *UserService) Register(ctx context.Context, login, password string) (*model.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	existing, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	addr, err := newAddress()
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, &model.User{
		Login:    login,
		Password: string(hash),
		Address:  addr,
		Balance:  s.initialBalance.String(),
	})
}

// Login проверяет пароль и возвращает пользователя.
func (s *UserService) Login(ctx context.Context, login, password string) (*model.User, error) {
	u, err := s.repo.GetUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get возвращает пользователя по id сессии.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// newAddress — случайный 20-байтный адрес в checksum-записи.
func newAddress() (string, error) {
	var b [common.AddressLength]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate address: %w", err)
	}
	return common.BytesToAddress(b[:]).Hex(), nil
}
