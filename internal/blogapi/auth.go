package blogapi

import (
	"context"
	"fmt"

	"github.com/openkcm/blog-client/internal/domain"
	"github.com/openkcm/blog-client/internal/serviceerr"
	"github.com/openkcm/blog-client/internal/session"
)

var _ = session.Validator(&Client{})

// Credentials are posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the multipart payload of the register endpoint.
type Registration struct {
	Email          string
	Password       string
	Name           string
	Bio            string
	ProfilePicture *File
}

// ValidateToken asks the backend whether token is still accepted. Both a
// rejection and a transport failure return an error.
func (c *Client) ValidateToken(ctx context.Context, token string) error {
	resp, err := c.request(ctx, token).Get("/auth/validate-token")

	return check(ctx, "validating token", resp, err)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	resp, err := c.request(ctx, "").
		SetBody(creds).
		Post("/auth/login")
	if err := check(ctx, "logging in", resp, err); err != nil {
		return "", err
	}

	var result struct {
		Token string `mapstructure:"token"`
	}
	if err := decode(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("logging in: %w", serviceerr.ErrBackendError.WithDescription(err.Error()))
	}

	if result.Token == "" {
		return "", fmt.Errorf("logging in: %w", serviceerr.ErrBackendError.WithDescription("response carries no token"))
	}

	return result.Token, nil
}

// Register creates an account. The profile picture is optional.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	req := c.request(ctx, "").
		SetMultipartFormData(map[string]string{
			"email":    reg.Email,
			"password": reg.Password,
			"name":     reg.Name,
			"bio":      reg.Bio,
		})

	if reg.ProfilePicture != nil {
		req.SetMultipartField("profilePicture", reg.ProfilePicture.Name, reg.ProfilePicture.ContentType, reg.ProfilePicture.Content)
	}

	resp, err := req.Post("/auth/register")

	return check(ctx, "registering", resp, err)
}

// CurrentUser returns the profile of the token owner.
func (c *Client) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	resp, err := c.request(ctx, token).Get("/auth/user")
	if err := check(ctx, "fetching current user", resp, err); err != nil {
		return domain.User{}, err
	}

	var user domain.User
	if err := decode(resp.Body(), &user); err != nil {
		return domain.User{}, fmt.Errorf("fetching current user: %w", serviceerr.ErrBackendError.WithDescription(err.Error()))
	}

	return user, nil
}
