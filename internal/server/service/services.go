package service

import (
	"context"
	"time"

	"cryptopay/internal/server/config"
	"cryptopay/internal/shared/models"
)

// Repository is the persistence surface the services need; the sqlite
// implementation satisfies it.
type Repository interface {
	CreateUser(ctx context.Context, email string, passwordHash []byte, displayName string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (id string, passwordHash []byte, err error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetPasswordHash(ctx context.Context, userID string) ([]byte, error)
	UpdateDisplayName(ctx context.Context, userID, displayName string) error
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash []byte) error

	CreatePage(ctx context.Context, p models.PaymentPage) (models.PaymentPage, error)
	GetPage(ctx context.Context, id string) (models.PaymentPage, error)
	GetPageByWallet(ctx context.Context, walletNumber string) (models.PaymentPage, error)
	ListPagesByUser(ctx context.Context, userID string) ([]models.PaymentPage, error)
	UpdatePage(ctx context.Context, id, userID, title, description string) error
	DeletePage(ctx context.Context, id, userID string) error

	AddEarning(ctx context.Context, userID string, code models.CurrencyCode, amountCrypto, amountUSD float64) error
	SumEarnings(ctx context.Context, userID string, start, end time.Time) (models.Earnings, error)
	SumWithdrawn(ctx context.Context, userID string, code models.CurrencyCode) (float64, error)
	CreateWithdrawal(ctx context.Context, w models.Withdrawal) (models.Withdrawal, error)
	ListWithdrawals(ctx context.Context, userID string) ([]models.Withdrawal, error)
	RecordVerifiedPayment(ctx context.Context, fromWallet, toWallet string) (bool, error)

	CreateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
}

type Services struct {
	Auth     *AuthService
	Pages    *PagesService
	Earnings *EarningsService
	Verify   *VerifyService
}

func NewServices(repo Repository, cfg config.Config) *Services {
	rates := RateTable{
		models.CurrencyBTC: cfg.RateBTC,
		models.CurrencyETH: cfg.RateETH,
	}
	return &Services{
		Auth:     &AuthService{repo: repo, jwtSecret: []byte(cfg.JWTSecret)},
		Pages:    &PagesService{repo: repo, rates: rates},
		Earnings: &EarningsService{repo: repo},
		Verify:   &VerifyService{repo: repo},
	}
}
