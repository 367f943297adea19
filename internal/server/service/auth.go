package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cryptopay/internal/shared/models"
	"cryptopay/internal/shared/passhash"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// AuthService implements registration, password verification, JWT access
// token issuance and refresh token bookkeeping.
type AuthService struct {
	repo      Repository
	jwtSecret []byte
}

func (a *AuthService) Register(ctx context.Context, email, password, displayName string) (models.User, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(displayName) == "" {
		return models.User{}, errors.New("email and display name required")
	}
	if err := checkPasswordPolicy(password); err != nil {
		return models.User{}, err
	}
	phc, err := passhash.Hash(password)
	if err != nil {
		return models.User{}, err
	}
	return a.repo.CreateUser(ctx, email, []byte(phc), displayName)
}

func (a *AuthService) Login(ctx context.Context, email, password string) (models.TokenResponse, error) {
	id, hash, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return models.TokenResponse{}, errors.New("invalid credentials")
	}
	ok, err := passhash.Verify(string(hash), password)
	if err != nil || !ok {
		return models.TokenResponse{}, errors.New("invalid credentials")
	}
	access, err := a.issueAccessToken(id)
	if err != nil {
		return models.TokenResponse{}, err
	}
	refresh := uuid.NewString()
	if err := a.repo.CreateRefreshToken(ctx, id, refresh, time.Now().Add(refreshTokenTTL)); err != nil {
		return models.TokenResponse{}, err
	}
	return models.TokenResponse{JWTToken: access, RefreshToken: refresh}, nil
}

// Logout drops the user's refresh tokens; the access token expires on its own.
func (a *AuthService) Logout(ctx context.Context, userID string) error {
	return a.repo.DeleteUserRefreshTokens(ctx, userID)
}

func (a *AuthService) UserDetails(ctx context.Context, userID string) (models.User, error) {
	return a.repo.GetUserByID(ctx, userID)
}

func (a *AuthService) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return errors.New("display name required")
	}
	return a.repo.UpdateDisplayName(ctx, userID, displayName)
}

func (a *AuthService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	hash, err := a.repo.GetPasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := passhash.Verify(string(hash), oldPassword)
	if err != nil || !ok {
		return errors.New("old password does not match")
	}
	if err := checkPasswordPolicy(newPassword); err != nil {
		return err
	}
	phc, err := passhash.Hash(newPassword)
	if err != nil {
		return err
	}
	return a.repo.UpdatePasswordHash(ctx, userID, []byte(phc))
}

func (a *AuthService) issueAccessToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(accessTokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.jwtSecret)
}

func (a *AuthService) ParseToken(_ context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid token subject")
	}
	return sub, nil
}

func checkPasswordPolicy(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var hasDigit, hasUpper bool
	for _, r := range password {
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	if !hasDigit || !hasUpper {
		return errors.New("password must include a number and an uppercase letter")
	}
	return nil
}
