package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"presale_webapp/internal/domain"
	"presale_webapp/internal/logger"
	"presale_webapp/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("пользователь не найден")
	ErrInvalidEmail = errors.New("некорректный email")
	ErrInvalidToken = errors.New("недействительный токен")
)

var jwtSecret []byte

// InitJWT настраивает секрет для подписи сессионных токенов
func InitJWT(secret string) {
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		// дев режим; в проде секрет обязателен
		secret = "dev-insecure-secret"
		logger.Warn("JWT_SECRET не задан, используется дев секрет")
	}
	jwtSecret = []byte(secret)
}

// Claims сессионного токена. Пароли не хранятся и не выдаются вообще
type SessionClaims struct {
	UserID  int64 `json:"uid"`
	IsAdmin bool  `json:"adm"`
	jwt.RegisteredClaims
}

// выдает сессии и находит аккаунты по email
type AuthService struct {
	db        *pgxpool.Pool
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditRepository
	ttl       time.Duration
}

// создает новый сервис авторизации
func NewAuthService(db *pgxpool.Pool) *AuthService {
	return &AuthService{
		db:        db,
		userRepo:  repository.NewUserRepository(db),
		auditRepo: repository.NewAuditRepository(db),
		ttl:       24 * time.Hour,
	}
}

// Login находит или создает аккаунт по email и выдает JWT
func (s *AuthService) Login(ctx context.Context, email, ip string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", nil, ErrInvalidEmail
	}

	user, err := s.userRepo.GetOrCreate(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("ошибка создания аккаунта: %w", err)
	}

	token, err := IssueToken(user.ID, user.IsAdmin, s.ttl)
	if err != nil {
		return "", nil, err
	}

	_ = s.auditRepo.Create(ctx, &domain.AuditLog{
		UserID:   user.ID,
		Action:   domain.AuditActionLogin,
		Category: domain.AuditCategoryAuth,
		IP:       ip,
	})

	return token, user, nil
}

// IssueToken подписывает сессионный JWT
func IssueToken(userID int64, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ParseToken проверяет подпись и срок жизни токена
func ParseToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
