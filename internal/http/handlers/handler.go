package handlers

import (
	"presale_webapp/internal/config"
	"presale_webapp/internal/repository"
	"presale_webapp/internal/service"
	"presale_webapp/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler держит зависимости всех HTTP обработчиков
type Handler struct {
	DB        *pgxpool.Pool
	Cfg       *config.Config
	Auth      *service.AuthService
	Purchases *service.PurchaseService
	Admin     *service.AdminService
	Watcher   *service.PriceWatcher
	Hub       *ws.Hub

	UserRepo   *repository.UserRepository
	SignupRepo *repository.SignupRepository
}

func New(db *pgxpool.Pool, cfg *config.Config, prices *service.PriceWatcher, purchases *service.PurchaseService, hub *ws.Hub) *Handler {
	return &Handler{
		DB:         db,
		Cfg:        cfg,
		Auth:       service.NewAuthService(db),
		Purchases:  purchases,
		Admin:      service.NewAdminService(db),
		Watcher:    prices,
		Hub:        hub,
		UserRepo:   repository.NewUserRepository(db),
		SignupRepo: repository.NewSignupRepository(db),
	}
}
