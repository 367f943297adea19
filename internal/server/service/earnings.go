package service

import (
	"context"
	"errors"
	"time"

	"cryptopay/internal/shared/models"
)

var ErrInsufficientEarnings = errors.New("insufficient earnings")

type EarningsService struct {
	repo Repository
}

func (s *EarningsService) View(ctx context.Context, userID string) (models.Earnings, error) {
	var zero time.Time
	return s.repo.SumEarnings(ctx, userID, zero, time.Now().UTC())
}

func (s *EarningsService) History(ctx context.Context, userID string) ([]models.Withdrawal, error) {
	return s.repo.ListWithdrawals(ctx, userID)
}

// Withdraw requests a payout. The requested amount may not exceed what has
// been earned in that currency minus what is already withdrawn or pending.
func (s *EarningsService) Withdraw(ctx context.Context, userID, walletNumber string, amount float64, code models.CurrencyCode) (models.Withdrawal, error) {
	if walletNumber == "" {
		return models.Withdrawal{}, errors.New("wallet number required")
	}
	if amount <= 0 {
		return models.Withdrawal{}, errors.New("amount must be positive")
	}
	if !code.Valid() {
		return models.Withdrawal{}, ErrUnknownCurrency
	}
	earned, err := s.View(ctx, userID)
	if err != nil {
		return models.Withdrawal{}, err
	}
	available := earned.TotalEarningsBtc
	if code == models.CurrencyETH {
		available = earned.TotalEarningsEth
	}
	withdrawn, err := s.repo.SumWithdrawn(ctx, userID, code)
	if err != nil {
		return models.Withdrawal{}, err
	}
	if amount > available-withdrawn {
		return models.Withdrawal{}, ErrInsufficientEarnings
	}
	return s.repo.CreateWithdrawal(ctx, models.Withdrawal{
		UserID:       userID,
		WalletNumber: walletNumber,
		AmountDetails: models.AmountDetails{
			AmountCrypto: amount,
			Currency:     models.Currency{CurrencyCode: code},
		},
	})
}

// Report renders a PDF summary for the date range.
func (s *EarningsService) Report(ctx context.Context, userID string, start, end time.Time) ([]byte, error) {
	earnings, err := s.repo.SumEarnings(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	lines := []string{
		"Earnings Report",
		"Period: " + start.Format("2006-01-02") + " to " + end.Format("2006-01-02"),
		"",
		"Total BTC: " + formatAmount(earnings.TotalEarningsBtc),
		"Total ETH: " + formatAmount(earnings.TotalEarningsEth),
		"Total USD: " + formatAmount(earnings.TotalEarningsUsd),
	}
	return buildPDF(lines), nil
}
