package service

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"

	"cryptopay/internal/shared/models"
)

// RateTable maps a currency to its fixed USD price per coin.
type RateTable map[models.CurrencyCode]float64

// Submission floors, shared with the dashboard client.
const (
	MinAmountUSD    = 100
	MinAmountCrypto = 0.001
)

var (
	ErrUnknownCurrency = errors.New("unknown currency code")
	ErrNotOwner        = errors.New("payment page does not belong to user")
)

type PagesService struct {
	repo  Repository
	rates RateTable
}

type PageInput struct {
	Title        string
	Description  string
	AmountUSD    float64
	AmountCrypto float64
	CurrencyCode models.CurrencyCode
}

func (s *PagesService) Create(ctx context.Context, userID string, in PageInput) (models.PaymentPage, error) {
	if err := s.validate(in); err != nil {
		return models.PaymentPage{}, err
	}
	wallet := models.SystemWallet{
		ID:           uuid.NewString(),
		WalletNumber: newWalletNumber(in.CurrencyCode),
	}
	page := models.PaymentPage{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		AmountDetails: models.AmountDetails{
			AmountUSD:    in.AmountUSD,
			AmountCrypto: in.AmountCrypto,
			Currency:     models.Currency{CurrencyCode: in.CurrencyCode},
		},
		SystemWallet: wallet,
	}
	return s.repo.CreatePage(ctx, page)
}

func (s *PagesService) Get(ctx context.Context, id string) (models.PaymentPage, error) {
	return s.repo.GetPage(ctx, id)
}

func (s *PagesService) ListByUser(ctx context.Context, userID string) ([]models.PaymentPage, error) {
	return s.repo.ListPagesByUser(ctx, userID)
}

// Update only applies title and description. The stored amounts are the
// source of truth once a page exists; amount fields in the request are
// ignored rather than rejected so older clients keep working.
func (s *PagesService) Update(ctx context.Context, userID, pageID string, in PageInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.New("title required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return errors.New("description required")
	}
	return s.repo.UpdatePage(ctx, pageID, userID, in.Title, in.Description)
}

func (s *PagesService) Delete(ctx context.Context, userID, pageID string) error {
	return s.repo.DeletePage(ctx, pageID, userID)
}

func (s *PagesService) ConvertToUSD(cryptoAmount float64, code models.CurrencyCode) (float64, error) {
	rate, ok := s.rates[code]
	if !ok {
		return 0, ErrUnknownCurrency
	}
	return cryptoAmount * rate, nil
}

func (s *PagesService) ConvertToCrypto(usdAmount float64, code models.CurrencyCode) (float64, error) {
	rate, ok := s.rates[code]
	if !ok {
		return 0, ErrUnknownCurrency
	}
	return usdAmount / rate, nil
}

func (s *PagesService) validate(in PageInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.New("title required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return errors.New("description required")
	}
	if !in.CurrencyCode.Valid() {
		return ErrUnknownCurrency
	}
	if in.AmountUSD < MinAmountUSD {
		return errors.New("amountUSD must be at least 100")
	}
	if in.AmountCrypto < MinAmountCrypto {
		return errors.New("amountCrypto must be at least 0.001")
	}
	return nil
}

// newWalletNumber mints a testnet-looking receiving address for the page.
func newWalletNumber(code models.CurrencyCode) string {
	raw := uuid.New()
	h := hex.EncodeToString(raw[:])
	if code == models.CurrencyETH {
		return "0x" + h + h[:8]
	}
	return "tb1q" + h[:30]
}
