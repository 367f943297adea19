package models

import "time"

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TokenResponse is the login payload. Field names follow the gateway's wire
// contract rather than Go JSON conventions.
type TokenResponse struct {
	JWTToken     string `json:"jwtToken"`
	RefreshToken string `json:"refreshToken"`
}

type CurrencyCode string

const (
	CurrencyBTC CurrencyCode = "BTC"
	CurrencyETH CurrencyCode = "ETH"
)

func (c CurrencyCode) Valid() bool {
	return c == CurrencyBTC || c == CurrencyETH
}

type Currency struct {
	CurrencyCode CurrencyCode `json:"currencyCode"`
}

type AmountDetails struct {
	AmountUSD    float64  `json:"amountUSD"`
	AmountCrypto float64  `json:"amountCrypto"`
	Currency     Currency `json:"currency"`
}

// SystemWallet is the gateway-controlled address a guest sends funds to.
type SystemWallet struct {
	ID           string `json:"id"`
	WalletNumber string `json:"walletNumber"`
}

type PaymentPage struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	IsDonation    bool          `json:"isDonation"`
	AmountDetails AmountDetails `json:"amountDetails"`
	SystemWallet  SystemWallet  `json:"systemWallet"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type WithdrawalStatus string

const (
	WithdrawalRequested WithdrawalStatus = "Requested"
	WithdrawalCompleted WithdrawalStatus = "Completed"
)

type Withdrawal struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	WalletNumber  string           `json:"walletNumber"`
	AmountDetails AmountDetails    `json:"amountDetails"`
	Status        WithdrawalStatus `json:"status"`
	RequestedDate time.Time        `json:"requestedDate"`
	CompletedDate *time.Time       `json:"completedDate,omitempty"`
}

// Earnings keeps the original wire casing: the dashboard reads
// TotalEarningsBtc and friends verbatim.
type Earnings struct {
	TotalEarningsBtc float64 `json:"TotalEarningsBtc"`
	TotalEarningsEth float64 `json:"TotalEarningsEth"`
	TotalEarningsUsd float64 `json:"TotalEarningsUsd"`
}

// Verification statuses reported by the blockchain watcher.
const (
	VerifyStatusNotFound   = "not found"
	VerifyStatusPending    = "pending"
	VerifyStatusSuccessful = "successful"
)
