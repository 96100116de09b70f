package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// setTempCfg перенастраивает пользовательский конфиг‑каталог в temp для изоляции тестов.
func setTempCfg(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

func TestAuthFSStore_SaveLoad_Token_TrimsWhitespace(t *testing.T) {
	setTempCfg(t)
	st := AuthFSStore{}
	if err := st.Save("tok-123\n\n"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	// дозапишем лишние пробелы в конец файла, чтобы проверить trim
	p, _ := st.path("auth_token")
	f, _ := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o600)
	_, _ = f.WriteString("  \r\n")
	_ = f.Close()

	tok, err := st.Load()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if tok != "tok-123" {
		t.Fatalf("token not trimmed, got %q", tok)
	}
}

func TestAuthFSStore_Load_TokenMissingOrEmpty(t *testing.T) {
	setTempCfg(t)
	st := AuthFSStore{}
	if _, err := st.Load(); err == nil {
		t.Fatalf("expected error for missing token file")
	}
	p, _ := st.path("auth_token")
	_ = os.WriteFile(p, []byte(" \n"), 0o600)
	if _, err := st.Load(); err == nil {
		t.Fatalf("expected error for blank token file")
	}
}

func TestAuthFSStore_Login_And_ExplicitDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom")
	st := AuthFSStore{Dir: dir}
	if err := st.SaveLogin(""); err == nil {
		t.Fatalf("expected error for empty login")
	}
	if err := st.SaveLogin("alice\n"); err != nil {
		t.Fatalf("save login: %v", err)
	}
	login, err := st.LoadLogin()
	if err != nil || login != "alice" {
		t.Fatalf("unexpected login %q err=%v", login, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "last_login")); err != nil {
		t.Fatalf("login file must live in explicit dir: %v", err)
	}
}

func TestAuthFSStore_Clear(t *testing.T) {
	setTempCfg(t)
	st := AuthFSStore{}
	// пустое хранилище — не ошибка
	if err := st.Clear(); err != nil {
		t.Fatalf("clear empty: %v", err)
	}
	_ = st.Save("tok")
	_ = st.SaveLogin("alice")
	if err := st.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := st.Load(); err == nil {
		t.Fatalf("token must be gone after Clear")
	}
	if _, err := st.LoadLogin(); err == nil {
		t.Fatalf("login must be gone after Clear")
	}
}
