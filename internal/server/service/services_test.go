package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cryptopay/internal/server/config"
	"cryptopay/internal/server/repository/sqlite"
	"cryptopay/internal/shared/models"
)

func newTestServices(t *testing.T, name string) *Services {
	t.Helper()
	repo, err := sqlite.New("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return NewServices(repo, config.Config{JWTSecret: "test", RateBTC: 50000, RateETH: 2500})
}

func registerUser(t *testing.T, svcs *Services, email string) string {
	t.Helper()
	u, err := svcs.Auth.Register(context.Background(), email, "Passw0rd1", "Tester")
	if err != nil {
		t.Fatal(err)
	}
	return u.ID
}

func validPageInput() PageInput {
	return PageInput{
		Title:        "Coffee fund",
		Description:  "Buy me a coffee",
		AmountUSD:    150,
		AmountCrypto: 0.003,
		CurrencyCode: models.CurrencyBTC,
	}
}

func TestAuthRegisterLogin(t *testing.T) {
	svcs := newTestServices(t, "svc_auth_login")
	ctx := context.Background()

	_, err := svcs.Auth.Register(ctx, "u@example.com", "Passw0rd1", "Tester")
	if err != nil {
		t.Fatal(err)
	}
	tokens, err := svcs.Auth.Login(ctx, "u@example.com", "Passw0rd1")
	if err != nil || tokens.JWTToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("login failed: %v %+v", err, tokens)
	}
	uid, err := svcs.Auth.ParseToken(ctx, tokens.JWTToken)
	if err != nil || uid == "" {
		t.Fatalf("parse failed: %v", err)
	}

	if _, err := svcs.Auth.Login(ctx, "u@example.com", "WrongPass1"); err == nil {
		t.Fatal("login with wrong password succeeded")
	}
}

func TestAuthPasswordPolicy(t *testing.T) {
	svcs := newTestServices(t, "svc_auth_policy")
	ctx := context.Background()
	for _, pw := range []string{"short1A", "nouppercase1", "NoDigitsHere"} {
		if _, err := svcs.Auth.Register(ctx, "p@example.com", pw, "Tester"); err == nil {
			t.Fatalf("weak password accepted: %q", pw)
		}
	}
}

func TestAuthProfileUpdates(t *testing.T) {
	svcs := newTestServices(t, "svc_auth_profile")
	ctx := context.Background()
	uid := registerUser(t, svcs, "prof@example.com")

	if err := svcs.Auth.UpdateDisplayName(ctx, uid, "New Name"); err != nil {
		t.Fatal(err)
	}
	u, err := svcs.Auth.UserDetails(ctx, uid)
	if err != nil || u.DisplayName != "New Name" {
		t.Fatalf("details: %v %+v", err, u)
	}

	if err := svcs.Auth.UpdatePassword(ctx, uid, "WrongOld1", "NewPassw0rd"); err == nil {
		t.Fatal("password change with wrong old password succeeded")
	}
	if err := svcs.Auth.UpdatePassword(ctx, uid, "Passw0rd1", "NewPassw0rd"); err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Auth.Login(ctx, "prof@example.com", "NewPassw0rd"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestPagesCreateAndWalletFormat(t *testing.T) {
	svcs := newTestServices(t, "svc_pages_create")
	ctx := context.Background()
	uid := registerUser(t, svcs, "pages@example.com")

	page, err := svcs.Pages.Create(ctx, uid, validPageInput())
	if err != nil {
		t.Fatal(err)
	}
	if page.ID == "" || page.SystemWallet.WalletNumber == "" {
		t.Fatalf("bad page: %+v", page)
	}
	if !strings.HasPrefix(page.SystemWallet.WalletNumber, "tb1q") {
		t.Fatalf("btc wallet = %q", page.SystemWallet.WalletNumber)
	}

	in := validPageInput()
	in.CurrencyCode = models.CurrencyETH
	ethPage, err := svcs.Pages.Create(ctx, uid, in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(ethPage.SystemWallet.WalletNumber, "0x") {
		t.Fatalf("eth wallet = %q", ethPage.SystemWallet.WalletNumber)
	}
}

func TestPagesValidation(t *testing.T) {
	svcs := newTestServices(t, "svc_pages_validate")
	ctx := context.Background()
	uid := registerUser(t, svcs, "val@example.com")

	cases := []func(*PageInput){
		func(in *PageInput) { in.Title = "  " },
		func(in *PageInput) { in.Description = "" },
		func(in *PageInput) { in.CurrencyCode = "DOGE" },
		func(in *PageInput) { in.AmountUSD = 99.99 },
		func(in *PageInput) { in.AmountCrypto = 0.0009 },
	}
	for i, mutate := range cases {
		in := validPageInput()
		mutate(&in)
		if _, err := svcs.Pages.Create(ctx, uid, in); err == nil {
			t.Fatalf("case %d: invalid input accepted", i)
		}
	}

	// Floors are inclusive.
	in := validPageInput()
	in.AmountUSD = 100
	in.AmountCrypto = 0.001
	if _, err := svcs.Pages.Create(ctx, uid, in); err != nil {
		t.Fatalf("boundary amounts rejected: %v", err)
	}
}

func TestPagesUpdateKeepsAmounts(t *testing.T) {
	svcs := newTestServices(t, "svc_pages_update")
	ctx := context.Background()
	uid := registerUser(t, svcs, "upd@example.com")

	page, err := svcs.Pages.Create(ctx, uid, validPageInput())
	if err != nil {
		t.Fatal(err)
	}
	err = svcs.Pages.Update(ctx, uid, page.ID, PageInput{Title: "New title", Description: "New desc", AmountUSD: 9999})
	if err != nil {
		t.Fatal(err)
	}
	got, err := svcs.Pages.Get(ctx, page.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "New title" || got.Description != "New desc" {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.AmountDetails.AmountUSD != 150 {
		t.Fatalf("amount changed on update: %v", got.AmountDetails.AmountUSD)
	}

	// Another user cannot touch the page.
	other := registerUser(t, svcs, "other@example.com")
	if err := svcs.Pages.Update(ctx, other, page.ID, PageInput{Title: "x", Description: "y"}); err == nil {
		t.Fatal("foreign update succeeded")
	}
	if err := svcs.Pages.Delete(ctx, other, page.ID); err == nil {
		t.Fatal("foreign delete succeeded")
	}
}

func TestConversionRates(t *testing.T) {
	svcs := newTestServices(t, "svc_convert")

	usd, err := svcs.Pages.ConvertToUSD(0.01, models.CurrencyBTC)
	if err != nil || usd != 500 {
		t.Fatalf("toUSD = %v, %v", usd, err)
	}
	crypto, err := svcs.Pages.ConvertToCrypto(500, models.CurrencyETH)
	if err != nil || crypto != 0.2 {
		t.Fatalf("toCrypto = %v, %v", crypto, err)
	}
	if _, err := svcs.Pages.ConvertToUSD(1, "DOGE"); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("error = %v", err)
	}
}

func TestVerifySimulatorAndEarnings(t *testing.T) {
	svcs := newTestServices(t, "svc_verify")
	ctx := context.Background()
	uid := registerUser(t, svcs, "verify@example.com")

	page, err := svcs.Pages.Create(ctx, uid, validPageInput())
	if err != nil {
		t.Fatal(err)
	}
	wallet := page.SystemWallet.WalletNumber

	status, err := svcs.Verify.Verify(ctx, VerifyQuery{Type: "btc", FromWallet: "guest-wait", ToWallet: wallet})
	if err != nil || status != models.VerifyStatusPending {
		t.Fatalf("pending: %q %v", status, err)
	}
	status, err = svcs.Verify.Verify(ctx, VerifyQuery{Type: "btc", FromWallet: "guest-nope", ToWallet: wallet})
	if err != nil || status != models.VerifyStatusNotFound {
		t.Fatalf("not found: %q %v", status, err)
	}
	status, err = svcs.Verify.Verify(ctx, VerifyQuery{Type: "btc", FromWallet: "guest-ok", ToWallet: "unknown-wallet"})
	if err != nil || status != models.VerifyStatusNotFound {
		t.Fatalf("unknown page: %q %v", status, err)
	}

	// Successful verification credits the owner once, even when re-polled.
	for i := 0; i < 3; i++ {
		status, err = svcs.Verify.Verify(ctx, VerifyQuery{Type: "btc", FromWallet: "guest-ok", ToWallet: wallet})
		if err != nil || status != models.VerifyStatusSuccessful {
			t.Fatalf("successful: %q %v", status, err)
		}
	}
	earned, err := svcs.Earnings.View(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if earned.TotalEarningsBtc != 0.003 || earned.TotalEarningsUsd != 150 {
		t.Fatalf("earnings = %+v", earned)
	}
}

func TestWithdrawChecksBalance(t *testing.T) {
	svcs := newTestServices(t, "svc_withdraw")
	ctx := context.Background()
	uid := registerUser(t, svcs, "withdraw@example.com")

	page, err := svcs.Pages.Create(ctx, uid, validPageInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Verify.Verify(ctx, VerifyQuery{FromWallet: "guest-ok", ToWallet: page.SystemWallet.WalletNumber}); err != nil {
		t.Fatal(err)
	}

	if _, err := svcs.Earnings.Withdraw(ctx, uid, "tb1qout", 0.005, models.CurrencyBTC); !errors.Is(err, ErrInsufficientEarnings) {
		t.Fatalf("error = %v, want ErrInsufficientEarnings", err)
	}
	w, err := svcs.Earnings.Withdraw(ctx, uid, "tb1qout", 0.002, models.CurrencyBTC)
	if err != nil {
		t.Fatal(err)
	}
	if w.Status != models.WithdrawalRequested || w.ID == "" {
		t.Fatalf("withdrawal = %+v", w)
	}

	// The pending withdrawal reduces what is still available.
	if _, err := svcs.Earnings.Withdraw(ctx, uid, "tb1qout", 0.002, models.CurrencyBTC); !errors.Is(err, ErrInsufficientEarnings) {
		t.Fatalf("error = %v, want ErrInsufficientEarnings", err)
	}

	history, err := svcs.Earnings.History(ctx, uid)
	if err != nil || len(history) != 1 {
		t.Fatalf("history: %v %d", err, len(history))
	}
}

func TestEarningsReportIsPDF(t *testing.T) {
	svcs := newTestServices(t, "svc_report")
	ctx := context.Background()
	uid := registerUser(t, svcs, "report@example.com")

	end := time.Now().UTC()
	start := end.AddDate(0, -1, 0)
	pdf, err := svcs.Earnings.Report(ctx, uid, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF-1.4") {
		t.Fatalf("not a PDF: %q", pdf[:16])
	}
	if !strings.Contains(string(pdf), "%%EOF") {
		t.Fatal("missing EOF marker")
	}
}
