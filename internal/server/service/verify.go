package service

import (
	"context"
	"errors"
	"strings"

	"cryptopay/internal/server/repository"
	"cryptopay/internal/shared/models"
)

// VerifyService stands in for the blockchain watcher in the local gateway.
// The reported status is derived deterministically from the sender wallet so
// every client outcome can be exercised without a live chain:
//
//	fromWallet ending in "-ok"   -> successful
//	fromWallet ending in "-wait" -> pending
//	anything else                -> not found
//
// A successful verification credits the page owner's earnings exactly once
// per (fromWallet, toWallet) pair.
type VerifyService struct {
	repo Repository
}

type VerifyQuery struct {
	Type         string
	FromWallet   string
	ToWallet     string
	AmountCrypto float64
	IsTestnet    bool
}

func (s *VerifyService) Verify(ctx context.Context, q VerifyQuery) (string, error) {
	if q.FromWallet == "" || q.ToWallet == "" {
		return models.VerifyStatusNotFound, nil
	}
	page, err := s.repo.GetPageByWallet(ctx, q.ToWallet)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.VerifyStatusNotFound, nil
		}
		return "", err
	}

	switch {
	case strings.HasSuffix(q.FromWallet, "-ok"):
		recorded, err := s.repo.RecordVerifiedPayment(ctx, q.FromWallet, q.ToWallet)
		if err != nil {
			return "", err
		}
		if recorded {
			details := page.AmountDetails
			if err := s.repo.AddEarning(ctx, page.UserID, details.Currency.CurrencyCode, details.AmountCrypto, details.AmountUSD); err != nil {
				return "", err
			}
		}
		return models.VerifyStatusSuccessful, nil
	case strings.HasSuffix(q.FromWallet, "-wait"):
		return models.VerifyStatusPending, nil
	default:
		return models.VerifyStatusNotFound, nil
	}
}
