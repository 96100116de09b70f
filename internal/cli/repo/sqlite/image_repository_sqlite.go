package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"Elegora/internal/cli/imagecache"

	_ "modernc.org/sqlite"
)

// ImageRepositorySQLite — кэш изображений в локальной БД SQLite.
// Записи одного файла разделяются по namespace (адрес контракта или URL леджера).
type ImageRepositorySQLite struct {
	db        *sql.DB
	namespace string
}

var _ imagecache.Cache = (*ImageRepositorySQLite)(nil)

// Open открывает (и создаёт при необходимости) файл БД в каталоге base
// и возвращает репозиторий. Вторым значением возвращается путь к БД.
// Пустой base — каталог пользовательской конфигурации.
func Open(base, namespace string) (*ImageRepositorySQLite, string, error) {
	if namespace == "" {
		return nil, "", errors.New("empty namespace for image store")
	}
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return nil, "", err
		}
		base = filepath.Join(cfgDir, "Elegora")
	}
	if err := os.MkdirAll(base, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(base, "client.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	return &ImageRepositorySQLite{db: db, namespace: namespace}, dbPath, nil
}

// Close закрывает соединение с БД.
func (r *ImageRepositorySQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц.
func (r *ImageRepositorySQLite) Migrate() error {
	return migrate(r.db)
}

// Put сохраняет изображение; повторная запись под тем же id перезаписывает его.
func (r *ImageRepositorySQLite) Put(ctx context.Context, id uint64, payload []byte) error {
	if len(payload) == 0 {
		return imagecache.ErrEmptyImage
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO images(namespace, item_id, payload, updated_at)
        VALUES(?, ?, ?, ?)
        ON CONFLICT(namespace, item_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		r.namespace, int64(id), payload, time.Now().Unix(),
	)
	return err
}

// Get читает изображение по id; ok=false, если его нет.
func (r *ImageRepositorySQLite) Get(ctx context.Context, id uint64) ([]byte, bool, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM images WHERE namespace = ? AND item_id = ?`,
		r.namespace, int64(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// IDs возвращает id всех сохранённых изображений namespace по возрастанию.
func (r *ImageRepositorySQLite) IDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT item_id FROM images WHERE namespace = ? ORDER BY item_id`, r.namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, uint64(id))
	}
	return res, rows.Err()
}
