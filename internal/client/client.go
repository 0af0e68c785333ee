// Package client talks to the auth API on behalf of an end-user device and
// keeps the issued token in local storage.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// User mirrors the public user document returned by the API.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	CreatedAt string `json:"created_at"`
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// Client is safe for sequential use by a single device session.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

func New(baseURL string, tokens TokenStore, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":     email,
		"password":  password,
		"full_name": fullName,
	})
	if err != nil {
		return nil, err
	}
	return c.keepToken(ctx, resp)
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return c.keepToken(ctx, resp)
}

// Logout notifies the server and always discards the local token.
func (c *Client) Logout(ctx context.Context) error {
	_, reqErr := c.do(ctx, http.MethodPost, "/auth/logout", nil)
	if err := c.tokens.Delete(ctx); err != nil {
		return err
	}
	return reqErr
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UpdateProfile changes the non-empty fields.
func (c *Client) UpdateProfile(ctx context.Context, fullName, email string) (*User, error) {
	body := map[string]string{}
	if fullName != "" {
		body["full_name"] = fullName
	}
	if email != "" {
		body["email"] = email
	}
	resp, err := c.do(ctx, http.MethodPut, "/users/me", body)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	_, err := c.do(ctx, http.MethodPatch, "/users/password", map[string]string{
		"current_password": current,
		"new_password":     next,
	})
	return err
}

// IsAuthenticated reports whether a token is stored locally.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	tok, err := c.tokens.Get(ctx)
	if err != nil {
		return false, err
	}
	return tok != "", nil
}

func (c *Client) keepToken(ctx context.Context, resp *response) (*User, error) {
	if resp.Token != "" {
		if err := c.tokens.Set(ctx, resp.Token); err != nil {
			return nil, err
		}
	}
	return resp.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	tok, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	var out response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{Status: res.StatusCode, Message: out.Message}
	}
	return &out, nil
}
