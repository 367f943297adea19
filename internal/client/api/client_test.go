package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"cryptopay/internal/client/payguest"
	"cryptopay/internal/client/session"
	"cryptopay/internal/shared/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Manager) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := session.NewManager(filepath.Join(t.TempDir(), "session"))
	return New(srv.URL, sess), sess
}

func authedSession(t *testing.T, sess *session.Manager) {
	t.Helper()
	if err := sess.Set(session.Session{AccessToken: "tok", RefreshToken: "ref", UserID: "u-1"}); err != nil {
		t.Fatal(err)
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return tm
}

func TestLoginParsesTokens(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/Auth/login" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "a@b.c" || body.Password != "Passw0rd" {
			t.Errorf("body = %+v", body)
		}
		_ = json.NewEncoder(w).Encode(models.TokenResponse{JWTToken: "jwt", RefreshToken: "ref"})
	}))

	tokens, err := c.Login(context.Background(), "a@b.c", "Passw0rd")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tokens.JWTToken != "jwt" || tokens.RefreshToken != "ref" {
		t.Fatalf("tokens = %+v", tokens)
	}
}

func TestLoginEmptyTokenIsParseError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	_, err := c.Login(context.Background(), "a@b.c", "pw")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	authedSession(t, sess)

	_, err := c.Earnings(context.Background())
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("error = %v, want ErrAuthentication", err)
	}
	if sess.Active() {
		t.Fatal("session not cleared after 401")
	}
	if got := sess.Current(); got.RefreshToken != "" || got.UserID != "" {
		t.Fatalf("session partially cleared: %+v", got)
	}
}

func TestAuthedCallWithoutTokenFailsFast(t *testing.T) {
	called := false
	c, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	_, err := c.Earnings(context.Background())
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("error = %v, want ErrAuthentication", err)
	}
	if called {
		t.Fatal("request was sent without a token")
	}
}

func TestNotFoundSentinel(t *testing.T) {
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	authedSession(t, sess)
	_, err := c.PagesByUser(context.Background(), "u-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if !sess.Active() {
		t.Fatal("404 must not clear the session")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "insufficient earnings"})
	}))
	authedSession(t, sess)
	err := c.Withdraw(context.Background(), "tb1q", 1, models.CurrencyBTC)
	var aerr *APIError
	if !errors.As(err, &aerr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if aerr.StatusCode != http.StatusUnprocessableEntity || aerr.Message != "insufficient earnings" {
		t.Fatalf("apierror = %+v", aerr)
	}
}

func TestCreatePagePayload(t *testing.T) {
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/PaymentPage/create" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["title"] != "Coffee" || body["amountUSD"] != float64(150) || body["currencyCode"] != "BTC" {
			t.Errorf("body = %v", body)
		}
		if _, present := body["pageId"]; present {
			t.Error("pageId must be omitted on create")
		}
		_ = json.NewEncoder(w).Encode(models.PaymentPage{ID: "p-1"})
	}))
	authedSession(t, sess)

	page, err := c.CreatePage(context.Background(), PageRequest{
		Title: "Coffee", Description: "d", AmountUSD: 150, AmountCrypto: 0.003, CurrencyCode: models.CurrencyBTC,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if page.ID != "p-1" {
		t.Fatalf("page id = %q", page.ID)
	}
}

func TestVerifyTransactionQuery(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("type") != "btc" || q.Get("fromWallet") != "guest-ok" || q.Get("toWallet") != "tb1qmerchant" {
			t.Errorf("query = %v", q)
		}
		if q.Get("amountCrypto") != "0.005" || q.Get("isTestnet") != "true" {
			t.Errorf("query = %v", q)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "successful"})
	}))

	status, err := c.VerifyTransaction(context.Background(), payguest.Query{
		Type: "btc", FromWallet: "guest-ok", ToWallet: "tb1qmerchant", AmountCrypto: 0.005, IsTestnet: true,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if status != "successful" {
		t.Fatalf("status = %q", status)
	}
}

func TestEarningsReportBytes(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	c, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("startDate") == "" || r.URL.Query().Get("endDate") == "" {
			t.Errorf("missing date range: %v", r.URL.Query())
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	}))
	authedSession(t, sess)

	got, err := c.EarningsReport(context.Background(), mustTime(t, "2026-08-01"), mustTime(t, "2026-08-30"))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if string(got) != string(pdf) {
		t.Fatalf("body = %q", got)
	}
}

func TestParseErrorOnBadJSON(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	_, err := c.PaymentPage(context.Background(), "p-1")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
}
