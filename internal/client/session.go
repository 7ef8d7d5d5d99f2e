package client

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/flicky/green-store/internal/dto"
	"github.com/flicky/green-store/internal/model"
)

// TokenStore persists the bearer credential between CLI runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a single file readable only by the owner.
type FileTokenStore struct {
	Path string
}

// DefaultTokenPath is <user config dir>/greenshop/token.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "greenshop", "token"), nil
}

// Load returns "" when no token has been saved.
func (s FileTokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (s FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (s FileTokenStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Session is the client-side application state: the credential, the signed-in
// user and the last fetched cart.
type Session struct {
	Client *Client
	Store  TokenStore
	User   *dto.UserResponse
	Cart   []dto.CartItemResponse
}

func NewSession(c *Client, store TokenStore) *Session {
	return &Session{Client: c, Store: store}
}

// Restore rehydrates the session from the stored token. A token the server no
// longer accepts is discarded and the session stays signed out.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.Store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	s.Client.SetToken(token)
	user, err := s.Client.Me(ctx)
	if IsUnauthorized(err) {
		s.Client.SetToken("")
		return s.Store.Clear()
	}
	if err != nil {
		return err
	}
	s.User = user
	return nil
}

func (s *Session) SignedIn() bool { return s.User != nil }

func (s *Session) IsAdmin() bool { return s.User != nil && s.User.Role == model.RoleAdmin }

func (s *Session) Login(ctx context.Context, email, password string) error {
	resp, err := s.Client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.start(resp)
}

func (s *Session) Register(ctx context.Context, req dto.RegisterRequest) error {
	resp, err := s.Client.Register(ctx, req)
	if err != nil {
		return err
	}
	return s.start(resp)
}

func (s *Session) start(resp *dto.AuthResponse) error {
	s.Client.SetToken(resp.Token)
	user := resp.User
	s.User = &user
	s.Cart = nil
	return s.Store.Save(resp.Token)
}

// RefreshCart replaces the cart snapshot with the server's view.
func (s *Session) RefreshCart(ctx context.Context) error {
	cart, err := s.Client.GetCart(ctx)
	if err != nil {
		return err
	}
	s.Cart = cart
	return nil
}

// Logout tears the session down and forgets the stored credential.
func (s *Session) Logout() error {
	s.Client.SetToken("")
	s.User = nil
	s.Cart = nil
	return s.Store.Clear()
}
