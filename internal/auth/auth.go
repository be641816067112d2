// Package auth stores the API token sent as a bearer credential.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

const (
	credFileName = "credentials.json"
	EnvToken     = "TADA_TOKEN"
)

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional (JWT exp claim)
}

// Store reads and writes the credentials file under Dir.
// Getenv overrides the file; nil means os.Getenv.
type Store struct {
	Dir    string
	Getenv func(string) string
}

func (s Store) path() string { return filepath.Join(s.Dir, credFileName) }

func (s Store) getenv(k string) string {
	if s.Getenv != nil {
		return s.Getenv(k)
	}
	return os.Getenv(k)
}

// Get returns the active token, or nil when not logged in.
func (s Store) Get() (*TokenInfo, error) {
	// 1) env override
	if tok := stripBearer(s.getenv(EnvToken)); tok != "" {
		return &TokenInfo{Token: tok, Source: "env", ExpiresAt: expiry(tok)}, nil
	}

	// 2) file
	var ti TokenInfo
	found, err := jsonstore.Load(s.path(), &ti)
	if err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}
	if !found {
		return nil, nil // not logged in
	}
	ti.Token = stripBearer(ti.Token)
	if ti.Token == "" {
		return nil, nil
	}
	return &ti, nil
}

// Set saves token to the credentials file (0600). A JWT's exp claim is
// recorded as the expiry.
func (s Store) Set(token string) error {
	token = stripBearer(token)
	if token == "" {
		return fmt.Errorf("empty token")
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expiry(token),
	}
	if err := jsonstore.Save(s.path(), ti, 0o600); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s Store) Delete() error {
	return jsonstore.Remove(s.path())
}

// Claims decodes a JWT payload without verifying its signature.
// Opaque tokens return an error.
func Claims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("not a JWT: %w", err)
	}
	return claims, nil
}

func expiry(token string) *time.Time {
	claims, err := Claims(token)
	if err != nil {
		return nil
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil
	}
	t := time.Unix(int64(exp), 0)
	return &t
}

// stripBearer trims s and drops a leading "Bearer" scheme, so a bare
// scheme yields an empty token.
func stripBearer(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 6 && strings.EqualFold(s[:6], "bearer") && (len(s) == 6 || s[6] == ' ' || s[6] == '\t') {
		return strings.TrimSpace(s[6:])
	}
	return s
}
