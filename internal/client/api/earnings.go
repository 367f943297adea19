package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cryptopay/internal/shared/models"
)

func (c *Client) Earnings(ctx context.Context) (models.Earnings, error) {
	var out models.Earnings
	err := c.do(ctx, http.MethodGet, "/Earnings/view-earnings", nil, nil, &out, true)
	return out, err
}

// WithdrawalHistory lists past withdrawal requests. ErrNotFound means none yet.
func (c *Client) WithdrawalHistory(ctx context.Context) ([]models.Withdrawal, error) {
	var out []models.Withdrawal
	err := c.do(ctx, http.MethodGet, "/Earnings/view-withdrawal-history", nil, nil, &out, true)
	return out, err
}

// withdrawRequest keeps the gateway's PascalCase field names.
type withdrawRequest struct {
	WalletNumber string              `json:"WalletNumber"`
	Amount       float64             `json:"Amount"`
	CurrencyCode models.CurrencyCode `json:"CurrencyCode"`
}

func (c *Client) Withdraw(ctx context.Context, walletNumber string, amount float64, code models.CurrencyCode) error {
	body := withdrawRequest{WalletNumber: walletNumber, Amount: amount, CurrencyCode: code}
	return c.do(ctx, http.MethodPost, "/Earnings/withdraw-earnings", nil, body, nil, true)
}

// EarningsReport downloads the PDF report for the date range as opaque bytes.
func (c *Client) EarningsReport(ctx context.Context, start, end time.Time) ([]byte, error) {
	q := url.Values{}
	q.Set("startDate", start.UTC().Format(time.RFC3339))
	q.Set("endDate", end.UTC().Format(time.RFC3339))
	return c.doRaw(ctx, http.MethodGet, "/Earnings/generate-earnings-report", q, true)
}

func formatFloatParam(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
