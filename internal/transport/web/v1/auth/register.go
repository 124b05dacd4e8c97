package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/logx"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/mw"
	v1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1"
)

// HandlerRegister обрабатывает POST /api/auth/register
type HandlerRegister struct {
	Log    *log.Logger
	Users  domain.UsersRepo
	Hasher domain.PasswordHasher
	Tokens domain.TokenManager
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type userOut struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	AccessToken string  `json:"access_token"`
	User        userOut `json:"user"`
}

// Register godoc
// @Summary     Register new user
// @Description Регистрация: создаёт пользователя и сразу выдаёт JWT.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body registerRequest true "email, name, password"
// @Success     200 {object} domain.APIEnvelope{response=authResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/auth/register [post]
func (h *HandlerRegister) Register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.register"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// 1) Валидация (домен)
	if !domain.ValidEmail(req.Email) || !domain.ValidName(req.Name) || !domain.ValidPassword(req.Password) {
		logx.Error(h.Log, reqID, op, "validation failed", domain.ErrBadParams, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// 2) Хэш пароля
	hashStr, err := h.Hasher.Hash(req.Password)
	if err != nil {
		logx.Error(h.Log, reqID, op, "hash failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// 3) Создаём пользователя; дубликат email → конфликт
	u, err := h.Users.CreateUser(r.Context(), req.Email, req.Name, []byte(hashStr))
	if err != nil {
		logx.Error(h.Log, reqID, op, "create user failed", err, "email", req.Email)
		v1.WriteDomainError(w, r, err)
		return
	}

	// 4) Сразу выдаём токен
	token, _, err := h.Tokens.Issue(r.Context(), u.ID, u.Email)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue token failed", err, "user_id", u.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID, "email", u.Email)
	v1.WriteOKResponse(w, r, authResponse{
		AccessToken: token,
		User:        userOut{ID: u.ID, Email: u.Email, Name: u.Name},
	})
}
