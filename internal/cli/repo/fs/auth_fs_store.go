package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"Elegora/internal/cli/repo"
)

// AuthFSStore — файловое хранилище сессии dev-леджера (токен и логин).
// Dir переопределяет каталог; пусто — <UserConfigDir>/Elegora.
type AuthFSStore struct {
	Dir string
}

var _ repo.TokenStore = AuthFSStore{}

func (s AuthFSStore) dir() (string, error) {
	p := s.Dir
	if p == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(base, "Elegora")
	}
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return p, nil
}

func (s AuthFSStore) path(name string) (string, error) {
	dir, err := s.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (s AuthFSStore) write(name, value string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(value), 0o600)
}

// read читает файл и обрезает завершающие переводы строки/пробелы.
func (s AuthFSStore) read(name string) (string, error) {
	p, err := s.path(name)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	v := strings.TrimRight(string(b), " \t\r\n")
	if v == "" {
		return "", errors.New("empty " + name + " file")
	}
	return v, nil
}

// Save сохраняет auth‑токен в файл.
func (s AuthFSStore) Save(token string) error {
	return s.write("auth_token", token)
}

// Load читает auth‑токен из файла.
func (s AuthFSStore) Load() (string, error) {
	return s.read("auth_token")
}

// SaveLogin сохраняет логин пользователя в файл.
func (s AuthFSStore) SaveLogin(login string) error {
	if strings.TrimSpace(login) == "" {
		return errors.New("empty login")
	}
	return s.write("last_login", login)
}

// LoadLogin читает логин пользователя из файла.
func (s AuthFSStore) LoadLogin() (string, error) {
	return s.read("last_login")
}

// Clear удаляет токен и логин (logout).
func (s AuthFSStore) Clear() error {
	for _, name := range []string{"auth_token", "last_login"} {
		p, err := s.path(name)
		if err != nil {
			return err
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
