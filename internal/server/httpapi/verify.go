package httpapi

import (
	"net/http"
	"strconv"

	"cryptopay/internal/server/service"
)

// handleVerify is public; guests on the payment page poll it without a token.
func (r *Router) handleVerify(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	amount, _ := strconv.ParseFloat(q.Get("amountCrypto"), 64)
	testnet, _ := strconv.ParseBool(q.Get("isTestnet"))

	status, err := r.services.Verify.Verify(req.Context(), service.VerifyQuery{
		Type:         q.Get("type"),
		FromWallet:   q.Get("fromWallet"),
		ToWallet:     q.Get("toWallet"),
		AmountCrypto: amount,
		IsTestnet:    testnet,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}
