package web

import (
	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

// Repos — репозитории, которые нужны REST-слою напрямую.
type Repos struct {
	Users         domain.UsersRepo
	Notifications domain.NotificationsRepo
}

// AuthDeps — примитивы аутентификации для хендлеров и middleware.
type AuthDeps struct {
	Hasher    domain.PasswordHasher
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
}
