package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"go.uber.org/zap"

	"Elegora/internal/cli/bootstrap"
	"Elegora/internal/cli/imagecache"
	"Elegora/internal/cli/ledger/ledgertest"
	"Elegora/internal/config"
)

// withTempConfig переопределяет пользовательские каталоги на время теста,
// чтобы артефакты (токен/логин/база) создавались в temp.
func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	db := filepath.Join(dir, "db")
	_ = os.MkdirAll(db, 0o700)
	t.Setenv("CLIENT_DB_PATH", db)
	return dir
}

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

type namedFake struct{ *ledgertest.Fake }

func (namedFake) Namespace() string { return "test-ledger" }

// useFakeLedger подменяет сборку зависимостей: команды работают с in-memory леджером
// и общим на весь тест кэшем изображений.
func useFakeLedger(t *testing.T, fake *ledgertest.Fake) *imagecache.MemoryCache {
	t.Helper()
	images := imagecache.NewMemoryCache()
	prevSession, prevLedger, prevLogger := openSession, openLedger, newLogger

	openLedger = func(context.Context, *config.Config, *zap.SugaredLogger) (bootstrap.Ledger, error) {
		return namedFake{fake}, nil
	}
	openSession = func(_ context.Context, _ *config.Config, logger *zap.SugaredLogger) (*bootstrap.Session, func() error, error) {
		return bootstrap.Assemble(namedFake{fake}, images, logger), func() error { return nil }, nil
	}
	newLogger = func(bool) *zap.SugaredLogger { return zap.NewNop().Sugar() }

	t.Cleanup(func() { openSession, openLedger, newLogger = prevSession, prevLedger, prevLogger })
	return images
}
