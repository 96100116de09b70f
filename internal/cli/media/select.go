// Package media читает выбранный пользователем файл изображения
// и кодирует его в data URL, который хранится в кэше изображений.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

var (
	// ErrNotImage — содержимое файла не распознано как изображение.
	ErrNotImage = errors.New("file is not an image")
	// ErrEmptyFile — файл пуст.
	ErrEmptyFile = errors.New("empty image file")
	// ErrTooLarge — файл больше допустимого размера.
	ErrTooLarge = errors.New("image file too large")
	// ErrBadDataURL — payload не является base64 data URL.
	ErrBadDataURL = errors.New("malformed image data URL")
)

// SelectImage читает файл и возвращает payload вида "data:image/png;base64,...".
// maxBytes <= 0 снимает ограничение на размер.
func SelectImage(path string, maxBytes int64) ([]byte, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if st.Size() == 0 {
		return nil, ErrEmptyFile
	}
	if maxBytes > 0 && st.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, st.Size(), maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return Encode(data)
}

// Encode определяет тип содержимого и кодирует данные в data URL.
func Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}
	return []byte("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)), nil
}

// DecodeDataURL разбирает payload обратно в тип и байты.
func DecodeDataURL(payload []byte) (string, []byte, error) {
	rest, ok := strings.CutPrefix(string(payload), "data:")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	meta, b64, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	mime, isB64 := strings.CutSuffix(meta, ";base64")
	if !isB64 {
		return "", nil, ErrBadDataURL
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return mime, data, nil
}
