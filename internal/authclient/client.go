// Package authclient talks to the auth API and keeps a session.Session in step
// with the results.
package authclient

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

	"github.com/iMallco/iMall/internal/model"
	"github.com/iMallco/iMall/internal/session"
)

// ErrStale is returned when a response arrived after the session moved on
// (sign-out, or a cancelled context). The result was discarded.
var ErrStale = errors.New("session changed while request was in flight")

// APIError is a non-2xx response from the auth API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth api: %d %s", e.Status, e.Message)
}

// Client is an auth API client bound to one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
}

// New creates a client for the API at baseURL. A nil httpClient uses a
// client with a 15 second timeout.
func New(baseURL string, httpClient *http.Client, sess *session.Session) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if sess == nil {
		sess = session.New()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    sess,
	}
}

// Session returns the session the client drives.
func (c *Client) Session() *session.Session {
	return c.session
}

// SignUp registers a new account and authenticates the session.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (model.UserResponse, error) {
	return c.authenticate(ctx, "/api/auth/signup", model.SignUpRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
}

// SignIn authenticates the session with existing credentials.
func (c *Client) SignIn(ctx context.Context, email, password string) (model.UserResponse, error) {
	return c.authenticate(ctx, "/api/auth/signin", model.SignInRequest{
		Email:    email,
		Password: password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (model.UserResponse, error) {
	ticket := c.session.Begin()

	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return model.UserResponse{}, err
	}
	if ctx.Err() != nil || !c.session.Authenticate(ticket, resp.User, resp.Token) {
		return model.UserResponse{}, ErrStale
	}
	return resp.User, nil
}

// SetUserType records the onboarding choice for the signed-in user.
func (c *Client) SetUserType(ctx context.Context, userType model.UserType) (model.UserResponse, error) {
	ticket := c.session.Begin()
	st := c.session.State()
	if !st.IsAuthenticated || st.User == nil {
		return model.UserResponse{}, &APIError{Status: http.StatusUnauthorized, Message: "not signed in"}
	}

	var resp model.UserEnvelope
	req := model.SetUserTypeRequest{UserID: st.User.ID, UserType: userType}
	if err := c.do(ctx, http.MethodPost, "/api/auth/set-user-type", st.Token, req, &resp); err != nil {
		return model.UserResponse{}, err
	}
	if ctx.Err() != nil || !c.session.CompleteOnboarding(ticket, resp.User) {
		return model.UserResponse{}, ErrStale
	}
	return resp.User, nil
}

// ResetPassword asks the server to send a reset link. The session is untouched.
func (c *Client) ResetPassword(ctx context.Context, email string) (string, error) {
	var resp model.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/reset-password", "", model.ResetPasswordRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Me fetches the signed-in user.
func (c *Client) Me(ctx context.Context) (model.UserResponse, error) {
	var resp model.UserEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", c.session.State().Token, nil, &resp); err != nil {
		return model.UserResponse{}, err
	}
	return resp.User, nil
}

// SignOut clears the session. The server call is best effort: the local
// session is cleared even if it fails, and its error is returned.
func (c *Client) SignOut(ctx context.Context) error {
	token := c.session.State().Token
	c.session.SignOut()
	if token == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
