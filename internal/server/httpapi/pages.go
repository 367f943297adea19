package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cryptopay/internal/server/repository"
	"cryptopay/internal/server/service"
	"cryptopay/internal/shared/models"
)

type pageRequest struct {
	PageID       string              `json:"pageId"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	AmountUSD    float64             `json:"amountUSD"`
	AmountCrypto float64             `json:"amountCrypto"`
	CurrencyCode models.CurrencyCode `json:"currencyCode"`
}

func (r *Router) handleGetPage(w http.ResponseWriter, req *http.Request) {
	page, err := r.services.Pages.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment page not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleListPages answers 404, not an empty array, when the user has no
// pages yet. The dashboard relies on that distinction.
func (r *Router) handleListPages(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())
	if chi.URLParam(req, "userID") != userID {
		writeError(w, http.StatusForbidden, "cannot list another user's pages")
		return
	}
	pages, err := r.services.Pages.ListByUser(req.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(pages) == 0 {
		writeError(w, http.StatusNotFound, "no payment pages")
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

func (r *Router) handleCreatePage(w http.ResponseWriter, req *http.Request) {
	var body pageRequest
	if !r.decodeBody(w, req, &body) {
		return
	}
	page, err := r.services.Pages.Create(req.Context(), getUserID(req.Context()), service.PageInput{
		Title:        body.Title,
		Description:  body.Description,
		AmountUSD:    body.AmountUSD,
		AmountCrypto: body.AmountCrypto,
		CurrencyCode: body.CurrencyCode,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (r *Router) handleUpdatePage(w http.ResponseWriter, req *http.Request) {
	var body pageRequest
	if !r.decodeBody(w, req, &body) {
		return
	}
	if body.PageID == "" {
		writeError(w, http.StatusBadRequest, "pageId required")
		return
	}
	err := r.services.Pages.Update(req.Context(), getUserID(req.Context()), body.PageID, service.PageInput{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment page not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "payment page updated"})
}

func (r *Router) handleDeletePage(w http.ResponseWriter, req *http.Request) {
	err := r.services.Pages.Delete(req.Context(), getUserID(req.Context()), chi.URLParam(req, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment page not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleConvertToUSD(w http.ResponseWriter, req *http.Request) {
	var body struct {
		CryptoAmount float64             `json:"cryptoAmount"`
		CurrencyCode models.CurrencyCode `json:"currencyCode"`
	}
	if !r.decodeBody(w, req, &body) {
		return
	}
	usd, err := r.services.Pages.ConvertToUSD(body.CryptoAmount, body.CurrencyCode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"amountUSD": usd})
}

func (r *Router) handleConvertToCrypto(w http.ResponseWriter, req *http.Request) {
	var body struct {
		USDAmount    float64             `json:"usdAmount"`
		CurrencyCode models.CurrencyCode `json:"currencyCode"`
	}
	if !r.decodeBody(w, req, &body) {
		return
	}
	crypto, err := r.services.Pages.ConvertToCrypto(body.USDAmount, body.CurrencyCode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"amountCrypto": crypto})
}
