package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"cryptopay/internal/server/repository"
	"cryptopay/internal/shared/models"
)

type Repository struct {
	db *sql.DB
}

func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash BLOB NOT NULL,
			display_name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS payment_pages (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			is_donation INTEGER NOT NULL DEFAULT 0,
			amount_usd REAL NOT NULL,
			amount_crypto REAL NOT NULL,
			currency_code TEXT NOT NULL,
			wallet_id TEXT NOT NULL,
			wallet_number TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);
		CREATE TABLE IF NOT EXISTS earnings (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			currency_code TEXT NOT NULL,
			amount_crypto REAL NOT NULL,
			amount_usd REAL NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);
		CREATE TABLE IF NOT EXISTS withdrawals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			wallet_number TEXT NOT NULL,
			currency_code TEXT NOT NULL,
			amount_crypto REAL NOT NULL,
			amount_usd REAL NOT NULL,
			status TEXT NOT NULL,
			requested_date TIMESTAMP NOT NULL,
			completed_date TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);
		CREATE TABLE IF NOT EXISTS verified_payments (
			from_wallet TEXT NOT NULL,
			to_wallet TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY(from_wallet, to_wallet)
		);
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);
	`); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// Users

func (r *Repository) CreateUser(ctx context.Context, email string, passwordHash []byte, displayName string) (models.User, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users(id,email,password_hash,display_name,created_at) VALUES(?,?,?,?,?)`,
		id, email, passwordHash, displayName, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return models.User{}, repository.ErrEmailTaken
		}
		return models.User{}, err
	}
	return models.User{ID: id, Email: email, DisplayName: displayName, CreatedAt: now}, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (id string, passwordHash []byte, err error) {
	row := r.db.QueryRowContext(ctx, `SELECT id,password_hash FROM users WHERE email = ?`, email)
	if err = row.Scan(&id, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, repository.ErrNotFound
		}
		return "", nil, err
	}
	return
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id,email,display_name,created_at FROM users WHERE id = ?`, id)
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, repository.ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

func (r *Repository) GetPasswordHash(ctx context.Context, userID string) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = ?`, userID)
	var hash []byte
	if err := row.Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return hash, nil
}

func (r *Repository) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	return r.execExpectingRow(ctx, `UPDATE users SET display_name = ? WHERE id = ?`, displayName, userID)
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash []byte) error {
	return r.execExpectingRow(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
}

// Payment pages

func (r *Repository) CreatePage(ctx context.Context, p models.PaymentPage) (models.PaymentPage, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_pages(id,user_id,title,description,is_donation,amount_usd,amount_crypto,currency_code,wallet_id,wallet_number,created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.UserID, p.Title, p.Description, boolToInt(p.IsDonation),
		p.AmountDetails.AmountUSD, p.AmountDetails.AmountCrypto, string(p.AmountDetails.Currency.CurrencyCode),
		p.SystemWallet.ID, p.SystemWallet.WalletNumber, p.CreatedAt)
	if err != nil {
		return models.PaymentPage{}, err
	}
	return p, nil
}

const pageColumns = `id,user_id,title,description,is_donation,amount_usd,amount_crypto,currency_code,wallet_id,wallet_number,created_at`

func (r *Repository) GetPage(ctx context.Context, id string) (models.PaymentPage, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM payment_pages WHERE id = ?`, id)
	return scanPage(row)
}

func (r *Repository) GetPageByWallet(ctx context.Context, walletNumber string) (models.PaymentPage, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM payment_pages WHERE wallet_number = ?`, walletNumber)
	return scanPage(row)
}

func (r *Repository) ListPagesByUser(ctx context.Context, userID string) ([]models.PaymentPage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+pageColumns+` FROM payment_pages WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.PaymentPage
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePage touches title and description only; amounts and currency are
// immutable once the page exists.
func (r *Repository) UpdatePage(ctx context.Context, id, userID, title, description string) error {
	return r.execExpectingRow(ctx,
		`UPDATE payment_pages SET title = ?, description = ? WHERE id = ? AND user_id = ?`,
		title, description, id, userID)
}

func (r *Repository) DeletePage(ctx context.Context, id, userID string) error {
	return r.execExpectingRow(ctx, `DELETE FROM payment_pages WHERE id = ? AND user_id = ?`, id, userID)
}

// Earnings and withdrawals

func (r *Repository) AddEarning(ctx context.Context, userID string, code models.CurrencyCode, amountCrypto, amountUSD float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO earnings(id,user_id,currency_code,amount_crypto,amount_usd,created_at) VALUES(?,?,?,?,?,?)`,
		uuid.NewString(), userID, string(code), amountCrypto, amountUSD, time.Now().UTC())
	return err
}

func (r *Repository) SumEarnings(ctx context.Context, userID string, start, end time.Time) (models.Earnings, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT currency_code, COALESCE(SUM(amount_crypto),0), COALESCE(SUM(amount_usd),0)
		FROM earnings WHERE user_id = ? AND created_at >= ? AND created_at <= ?
		GROUP BY currency_code`, userID, start.UTC(), end.UTC())
	if err != nil {
		return models.Earnings{}, err
	}
	defer rows.Close()
	var e models.Earnings
	for rows.Next() {
		var code string
		var crypto, usd float64
		if err := rows.Scan(&code, &crypto, &usd); err != nil {
			return models.Earnings{}, err
		}
		switch models.CurrencyCode(code) {
		case models.CurrencyBTC:
			e.TotalEarningsBtc += crypto
		case models.CurrencyETH:
			e.TotalEarningsEth += crypto
		}
		e.TotalEarningsUsd += usd
	}
	return e, rows.Err()
}

func (r *Repository) SumWithdrawn(ctx context.Context, userID string, code models.CurrencyCode) (float64, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_crypto),0) FROM withdrawals WHERE user_id = ? AND currency_code = ?`,
		userID, string(code))
	var total float64
	err := row.Scan(&total)
	return total, err
}

func (r *Repository) CreateWithdrawal(ctx context.Context, w models.Withdrawal) (models.Withdrawal, error) {
	w.ID = uuid.NewString()
	w.RequestedDate = time.Now().UTC()
	w.Status = models.WithdrawalRequested
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO withdrawals(id,user_id,wallet_number,currency_code,amount_crypto,amount_usd,status,requested_date,completed_date)
		VALUES(?,?,?,?,?,?,?,?,NULL)`,
		w.ID, w.UserID, w.WalletNumber, string(w.AmountDetails.Currency.CurrencyCode),
		w.AmountDetails.AmountCrypto, w.AmountDetails.AmountUSD, string(w.Status), w.RequestedDate)
	if err != nil {
		return models.Withdrawal{}, err
	}
	return w, nil
}

func (r *Repository) ListWithdrawals(ctx context.Context, userID string) ([]models.Withdrawal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,user_id,wallet_number,currency_code,amount_crypto,amount_usd,status,requested_date,completed_date
		FROM withdrawals WHERE user_id = ? ORDER BY requested_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		var code, status string
		var completed sql.NullTime
		if err := rows.Scan(&w.ID, &w.UserID, &w.WalletNumber, &code,
			&w.AmountDetails.AmountCrypto, &w.AmountDetails.AmountUSD,
			&status, &w.RequestedDate, &completed); err != nil {
			return nil, err
		}
		w.AmountDetails.Currency.CurrencyCode = models.CurrencyCode(code)
		w.Status = models.WithdrawalStatus(status)
		if completed.Valid {
			t := completed.Time
			w.CompletedDate = &t
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// RecordVerifiedPayment remembers a (fromWallet, toWallet) pair so repeated
// verifies of the same transaction do not double-count earnings. It reports
// whether the pair was newly recorded.
func (r *Repository) RecordVerifiedPayment(ctx context.Context, fromWallet, toWallet string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO verified_payments(from_wallet,to_wallet,created_at) VALUES(?,?,?)`,
		fromWallet, toWallet, time.Now().UTC())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// Refresh tokens

func (r *Repository) CreateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens(token,user_id,expires_at,created_at) VALUES(?,?,?,?)`,
		token, userID, expiresAt, time.Now().UTC())
	return err
}

func (r *Repository) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
	return err
}

// helpers

func (r *Repository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (models.PaymentPage, error) {
	var p models.PaymentPage
	var isDonation int
	var code string
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &isDonation,
		&p.AmountDetails.AmountUSD, &p.AmountDetails.AmountCrypto, &code,
		&p.SystemWallet.ID, &p.SystemWallet.WalletNumber, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentPage{}, repository.ErrNotFound
		}
		return models.PaymentPage{}, err
	}
	p.IsDonation = isDonation != 0
	p.AmountDetails.Currency.CurrencyCode = models.CurrencyCode(code)
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
