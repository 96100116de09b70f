package repo

// TokenStore описывает хранилище сессии dev-леджера на клиенте:
// auth-токен и логин, под которым он получен.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	SaveLogin(login string) error
	LoadLogin() (string, error)
	// Clear удаляет сессию; отсутствие сохранённой сессии не ошибка.
	Clear() error
}
