package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/naveenspark/fitline/pkg/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username        string       `json:"username" validate:"required,min=3,max=150"`
	Email           string       `json:"email" validate:"required,email"`
	Password        string       `json:"password" validate:"required,min=8"`
	Password2       string       `json:"password2" validate:"required,eqfield=Password"`
	FitnessGoal     domain.Goal  `json:"fitness_goal" validate:"required,oneof=build_muscle lose_fat increase_strength general_fitness"`
	ExperienceLevel domain.Level `json:"experience_level" validate:"required,oneof=beginner intermediate advanced"`
}

// authResponse covers both shapes the server uses: login returns the pair
// at the top level, registration nests it under "tokens".
type authResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Tokens  *struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"tokens"`
	User *domain.User `json:"user"`
}

func (r *authResponse) pair() (string, string) {
	if r.Tokens != nil && r.Tokens.Access != "" {
		return r.Tokens.Access, r.Tokens.Refresh
	}
	return r.Access, r.Refresh
}

// Login exchanges a username and password for a credential pair and
// stores it.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("client.Login: %w: username and password are required", ErrValidation)
	}
	user, err := c.authenticate(ctx, "/login/", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return user, nil
}

// Register creates an account and stores the credential pair it returns.
// Input is checked locally first; a bad request makes no network call.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("client.Register: %w", validationError(err))
	}
	user, err := c.authenticate(ctx, "/register/", req)
	if err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return user, nil
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*domain.User, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	var resp authResponse
	// Never sent with the access credential and never routed through refresh.
	if err := c.send(ctx, http.MethodPost, path, payload, "", &resp); err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	access, refresh := resp.pair()
	if access == "" || refresh == "" {
		return nil, errors.New("server returned no credential pair")
	}
	if err := c.store.Set(access, refresh); err != nil {
		return nil, fmt.Errorf("store credentials: %w", err)
	}
	c.log.Info("signed in", "path", path)
	return resp.User, nil
}

// Logout revokes the refresh credential server-side and clears the store.
// The store is cleared even if the server call fails, and calling Logout
// without a session is a no-op.
func (c *Client) Logout(ctx context.Context) error {
	creds, ok := c.store.Get()
	if !ok {
		return nil
	}
	var callErr error
	if creds.Refresh != "" {
		payload, err := encodeBody(map[string]string{"refresh": creds.Refresh})
		if err == nil {
			err = c.send(ctx, http.MethodPost, "/logout/", payload, creds.Access, nil)
		}
		if err != nil {
			c.log.Warn("logout request failed", "error", err)
			callErr = err
		}
	}
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	if callErr != nil {
		return fmt.Errorf("client.Logout: %w", callErr)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		case "eqfield":
			msgs = append(msgs, "passwords do not match")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
