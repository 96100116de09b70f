package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AuthCookie — имя cookie с токеном сессии dev-леджера.
const AuthCookie = "auth_token"

// Doer — минимальный HTTP-клиент (подменяется в тестах).
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrorBody — тело ошибки сервера: {"success":false,"error":{"code","message"}}.
type ErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StatusError — ответ сервера с кодом не 2xx.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server status %d: %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server status %d: %s", e.Status, e.Message)
}

// PostJSON отправляет JSON POST. Если token непустой, он передаётся в auth cookie.
func PostJSON(ctx context.Context, c Doer, url string, payload any, token string) (*http.Response, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(c, req, token)
}

// GetJSON выполняет GET и возвращает ответ и тело.
func GetJSON(ctx context.Context, c Doer, url string, token string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	return do(c, req, token)
}

func do(c Doer, req *http.Request, token string) (*http.Response, []byte, error) {
	if c == nil {
		c = http.DefaultClient
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: AuthCookie, Value: token})
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, body, nil
}

// DecodeStatus превращает не-2xx ответ в *StatusError; для 2xx возвращает nil.
func DecodeStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	se := &StatusError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	var eb ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Code != "" {
		se.Code = eb.Error.Code
		se.Message = eb.Error.Message
	}
	return se
}

// AuthTokenFromResponse извлекает auth cookie из ответа.
func AuthTokenFromResponse(resp *http.Response) (string, error) {
	for _, c := range resp.Cookies() {
		if c.Name == AuthCookie && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("no auth cookie in response")
}
