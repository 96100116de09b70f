// Package imagecache хранит изображения items на стороне клиента:
// леджер не умеет хранить бинарные данные, поэтому картинка живёт только здесь,
// под id того item, к которому она относится.
package imagecache

import (
	"context"
	"errors"
)

// Cache — хранилище изображений по id item.
type Cache interface {
	// Put сохраняет или перезаписывает изображение для id.
	Put(ctx context.Context, id uint64, payload []byte) error
	// Get возвращает изображение; ok=false — изображения нет (это не ошибка).
	Get(ctx context.Context, id uint64) (payload []byte, ok bool, err error)
	// IDs возвращает id сохранённых изображений по возрастанию.
	IDs(ctx context.Context) ([]uint64, error)
	// Close освобождает ресурсы бэкенда.
	Close() error
}

// ErrEmptyImage — попытка сохранить пустое изображение.
var ErrEmptyImage = errors.New("empty image payload")
