package httpapi

import (
	"errors"
	"net/http"
	"time"

	"cryptopay/internal/server/service"
	"cryptopay/internal/shared/models"
)

type withdrawRequest struct {
	WalletNumber string              `json:"WalletNumber"`
	Amount       float64             `json:"Amount"`
	CurrencyCode models.CurrencyCode `json:"CurrencyCode"`
}

func (r *Router) handleViewEarnings(w http.ResponseWriter, req *http.Request) {
	earnings, err := r.services.Earnings.View(req.Context(), getUserID(req.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, earnings)
}

func (r *Router) handleWithdrawalHistory(w http.ResponseWriter, req *http.Request) {
	history, err := r.services.Earnings.History(req.Context(), getUserID(req.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(history) == 0 {
		writeError(w, http.StatusNotFound, "no withdrawals")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (r *Router) handleWithdraw(w http.ResponseWriter, req *http.Request) {
	var body withdrawRequest
	if !r.decodeBody(w, req, &body) {
		return
	}
	withdrawal, err := r.services.Earnings.Withdraw(req.Context(),
		getUserID(req.Context()), body.WalletNumber, body.Amount, body.CurrencyCode)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientEarnings) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, withdrawal)
}

func (r *Router) handleEarningsReport(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "endDate before startDate")
		return
	}
	pdf, err := r.services.Earnings.Report(req.Context(), getUserID(req.Context()), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="earnings-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
