package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"Elegora/internal/config"
	"Elegora/internal/middleware"
	"Elegora/internal/model"
	"Elegora/internal/service"
	"Elegora/pkg/apierror"
)

// UserHandler — регистрация, вход и текущий аккаунт.
type UserHandler struct {
	UserService   *service.UserService
	LedgerService *service.LedgerService
	Logger        *zap.SugaredLogger
	Config        *config.Config
}

func NewUserHandler(userService *service.UserService, ledgerService *service.LedgerService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, LedgerService: ledgerService, Logger: logger, Config: cfg}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type accountResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// Register создаёт аккаунт и сразу открывает сессию.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.BadRequest("invalid request body"))
		return
	}
	u, err := h.UserService.Register(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrEmptyCredentials):
		apierror.Write(w, apierror.BadRequest(err.Error()))
		return
	case errors.Is(err, service.ErrLoginTaken):
		apierror.Write(w, apierror.LoginTaken(""))
		return
	case err != nil:
		h.Logger.Errorw("Register: service error", "login", req.Login, "error", err)
		apierror.Write(w, apierror.InternalError(""))
		return
	}
	h.Logger.Infow("user registered", "user_id", u.ID, "address", u.Address)
	h.openSession(w, u)
}

// Login открывает сессию существующего аккаунта.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.BadRequest("invalid request body"))
		return
	}
	u, err := h.UserService.Login(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		apierror.Write(w, apierror.Unauthorized(err.Error()))
		return
	case err != nil:
		h.Logger.Errorw("Login: service error", "login", req.Login, "error", err)
		apierror.Write(w, apierror.InternalError(""))
		return
	}
	h.openSession(w, u)
}

// Me возвращает адрес и баланс авторизованного пользователя.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		apierror.Write(w, apierror.Unauthorized(""))
		return
	}
	u, err := h.UserService.Get(r.Context(), userID)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		// токен пережил удалённый аккаунт
		apierror.Write(w, apierror.Unauthorized("account no longer exists"))
		return
	case err != nil:
		h.Logger.Errorw("Me: service error", "user_id", userID, "error", err)
		apierror.Write(w, apierror.InternalError(""))
		return
	}
	writeJSON(w, http.StatusOK, h.account(u))
}

func (h *UserHandler) openSession(w http.ResponseWriter, u *model.User) {
	if err := middleware.SetLoginCookie(w, u.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("failed to sign session", "user_id", u.ID, "error", err)
		apierror.Write(w, apierror.InternalError(""))
		return
	}
	writeJSON(w, http.StatusOK, h.account(u))
}

func (h *UserHandler) account(u *model.User) accountResponse {
	return accountResponse{Address: u.Address, Balance: h.LedgerService.Balance(u)}
}
