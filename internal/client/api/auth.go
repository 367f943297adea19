package api

import (
	"context"
	"net/http"

	"cryptopay/internal/shared/models"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, email, password, displayName string) error {
	body := registerRequest{Email: email, Password: password, DisplayName: displayName}
	return c.do(ctx, http.MethodPost, "/Auth/register", nil, body, nil, false)
}

func (c *Client) Login(ctx context.Context, email, password string) (models.TokenResponse, error) {
	var out models.TokenResponse
	err := c.do(ctx, http.MethodPost, "/Auth/login", nil, loginRequest{Email: email, Password: password}, &out, false)
	if err != nil {
		return models.TokenResponse{}, err
	}
	if out.JWTToken == "" {
		return models.TokenResponse{}, &ParseError{Endpoint: "/Auth/login", Err: errEmptyToken}
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, struct{}{}, nil, true)
}

func (c *Client) UserDetails(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodGet, "/auth/user-details", nil, nil, &out, true)
	return out, err
}

func (c *Client) UpdateDisplayName(ctx context.Context, displayName string) error {
	body := map[string]string{"displayName": displayName}
	return c.do(ctx, http.MethodPut, "/auth/updateDisplayName", nil, body, nil, true)
}

func (c *Client) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.do(ctx, http.MethodPut, "/auth/updatePassword", nil, body, nil, true)
}
