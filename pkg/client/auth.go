package client

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-valuation/pkg/contract"
)

// Credentials is what the auth endpoints return for a successful login or
// registration.
type Credentials struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"user_role"`
	Username    string `json:"username"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the body of POST /auth/register. Role is a requested role;
// the service decides what it grants.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// sessionBody accepts the flat and the nested reply shapes.
type sessionBody struct {
	AccessToken string `json:"access_token"`
	UserRole    string `json:"user_role"`
	Username    string `json:"username"`
	Token       string `json:"token"`
	User        *struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"user"`
}

func (b sessionBody) credentials(fallbackUser string) Credentials {
	out := Credentials{AccessToken: b.AccessToken, Role: b.UserRole, Username: b.Username}
	if out.AccessToken == "" {
		out.AccessToken = b.Token
	}
	if b.User != nil {
		if out.Role == "" {
			out.Role = b.User.Role
		}
		if out.Username == "" {
			out.Username = b.User.Name
		}
	}
	if out.Username == "" {
		out.Username = fallbackUser
	}
	return out
}

// Login exchanges a username and password for Credentials.
func (c *Client) Login(ctx context.Context, username, password string) (Credentials, error) {
	username = strings.TrimSpace(username)
	return c.authenticate(ctx, contract.OpLogin, username, credentialsRequest{Username: username, Password: password})
}

// Register creates an account and returns its Credentials.
func (c *Client) Register(ctx context.Context, reg Registration) (Credentials, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	return c.authenticate(ctx, contract.OpRegister, reg.Username, reg)
}

func (c *Client) authenticate(ctx context.Context, op, username string, payload any) (Credentials, error) {
	resp, failure := c.do(ctx, op, payload)
	if failure != nil {
		return Credentials{}, failure
	}
	if !resp.ok() {
		return Credentials{}, serverFailure(resp)
	}
	var body sessionBody
	if failure := c.decode(op, resp, &body); failure != nil {
		return Credentials{}, failure
	}
	creds := body.credentials(username)
	if creds.AccessToken == "" {
		return Credentials{}, malformed(resp, errors.New("access token is missing"))
	}
	return creds, nil
}
