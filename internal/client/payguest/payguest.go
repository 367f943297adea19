// Package payguest drives the guest payment flow: a visitor claims to have
// sent funds to a payment page's system wallet and asks the gateway to verify
// the transaction against the blockchain watcher.
package payguest

import (
	"context"
	"strings"

	"cryptopay/internal/shared/models"
)

// Result classifies a single verification attempt.
type Result int

const (
	ResultNotFound Result = iota
	ResultPending
	ResultSuccessful
	ResultError
)

// Outcome is what the UI does with a finished attempt: either open the status
// dialog with Message, or (success only) navigate to the confirmation view.
type Outcome struct {
	Result   Result
	Message  string
	Navigate bool
}

// Query is the wire shape of GET /Transaction/verify.
type Query struct {
	Type         string
	FromWallet   string
	ToWallet     string
	AmountCrypto float64
	IsTestnet    bool
}

// Verifier calls the verification endpoint and returns the remote status
// string. *api.Client satisfies it.
type Verifier interface {
	VerifyTransaction(ctx context.Context, q Query) (string, error)
}

type Controller struct {
	verifier Verifier
}

func New(v Verifier) *Controller {
	return &Controller{verifier: v}
}

// Verify runs one attempt. Every remote status maps to a defined outcome:
// unknown statuses and transport failures both land on ResultError, so the
// caller is never left in an undefined state. Success is terminal; the other
// three outcomes leave the guest on the payment page free to re-check.
func (c *Controller) Verify(ctx context.Context, page models.PaymentPage, guestWallet string) Outcome {
	if strings.TrimSpace(guestWallet) == "" {
		return Outcome{Result: ResultError, Message: "Please enter your wallet address."}
	}
	q := Query{
		Type:         strings.ToLower(string(page.AmountDetails.Currency.CurrencyCode)),
		FromWallet:   guestWallet,
		ToWallet:     page.SystemWallet.WalletNumber,
		AmountCrypto: page.AmountDetails.AmountCrypto,
		IsTestnet:    true,
	}
	status, err := c.verifier.VerifyTransaction(ctx, q)
	if err != nil {
		return Outcome{Result: ResultError, Message: "Failed to verify payment."}
	}
	switch status {
	case models.VerifyStatusNotFound:
		return Outcome{Result: ResultNotFound, Message: "Transaction not found."}
	case models.VerifyStatusPending:
		return Outcome{Result: ResultPending, Message: "Transaction pending."}
	case models.VerifyStatusSuccessful:
		return Outcome{Result: ResultSuccessful, Navigate: true}
	default:
		return Outcome{Result: ResultError, Message: "Failed to verify payment."}
	}
}
