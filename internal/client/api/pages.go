package api

import (
	"context"
	"net/http"

	"cryptopay/internal/shared/models"
)

// PageRequest is the create/update body. PageID is only set for updates.
type PageRequest struct {
	PageID       string              `json:"pageId,omitempty"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	AmountUSD    float64             `json:"amountUSD"`
	AmountCrypto float64             `json:"amountCrypto"`
	CurrencyCode models.CurrencyCode `json:"currencyCode"`
}

// PaymentPage fetches a page by id. Public: guests hit this without a token.
func (c *Client) PaymentPage(ctx context.Context, id string) (models.PaymentPage, error) {
	var out models.PaymentPage
	err := c.do(ctx, http.MethodGet, pathID("/PaymentPage/%s", id), nil, nil, &out, false)
	return out, err
}

// PagesByUser lists the owner's pages. ErrNotFound means no pages yet.
func (c *Client) PagesByUser(ctx context.Context, userID string) ([]models.PaymentPage, error) {
	var out []models.PaymentPage
	err := c.do(ctx, http.MethodGet, pathID("/PaymentPage/allbyuserid/%s", userID), nil, nil, &out, true)
	return out, err
}

func (c *Client) CreatePage(ctx context.Context, req PageRequest) (models.PaymentPage, error) {
	var out models.PaymentPage
	err := c.do(ctx, http.MethodPost, "/PaymentPage/create", nil, req, &out, true)
	return out, err
}

func (c *Client) UpdatePage(ctx context.Context, req PageRequest) error {
	return c.do(ctx, http.MethodPut, "/PaymentPage/update", nil, req, nil, true)
}

func (c *Client) DeletePage(ctx context.Context, pageID string) error {
	return c.do(ctx, http.MethodDelete, pathID("/PaymentPage/delete/%s", pageID), nil, nil, nil, true)
}

type convertToUSDRequest struct {
	CryptoAmount float64             `json:"cryptoAmount"`
	CurrencyCode models.CurrencyCode `json:"currencyCode"`
}

type convertToCryptoRequest struct {
	USDAmount    float64             `json:"usdAmount"`
	CurrencyCode models.CurrencyCode `json:"currencyCode"`
}

// ConvertToUSD asks the gateway to price a crypto amount in USD.
func (c *Client) ConvertToUSD(ctx context.Context, cryptoAmount float64, code models.CurrencyCode) (float64, error) {
	var out struct {
		AmountUSD float64 `json:"amountUSD"`
	}
	body := convertToUSDRequest{CryptoAmount: cryptoAmount, CurrencyCode: code}
	if err := c.do(ctx, http.MethodPost, "/PaymentPage/convertToUSD", nil, body, &out, true); err != nil {
		return 0, err
	}
	return out.AmountUSD, nil
}

// ConvertToCrypto asks the gateway to price a USD amount in crypto.
func (c *Client) ConvertToCrypto(ctx context.Context, usdAmount float64, code models.CurrencyCode) (float64, error) {
	var out struct {
		AmountCrypto float64 `json:"amountCrypto"`
	}
	body := convertToCryptoRequest{USDAmount: usdAmount, CurrencyCode: code}
	if err := c.do(ctx, http.MethodPost, "/PaymentPage/convertToCrypto", nil, body, &out, true); err != nil {
		return 0, err
	}
	return out.AmountCrypto, nil
}
