package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"cryptopay/internal/client/payguest"
)

// VerifyTransaction queries the blockchain watcher. Public: the guest has no
// token. The returned string is the raw remote status; classification is the
// payguest controller's job.
func (c *Client) VerifyTransaction(ctx context.Context, q payguest.Query) (string, error) {
	params := url.Values{}
	params.Set("type", q.Type)
	params.Set("fromWallet", q.FromWallet)
	params.Set("toWallet", q.ToWallet)
	params.Set("amountCrypto", formatFloatParam(q.AmountCrypto))
	params.Set("isTestnet", strconv.FormatBool(q.IsTestnet))

	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/Transaction/verify", params, nil, &out, false); err != nil {
		return "", err
	}
	return out.Status, nil
}
