package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func envFunc(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestGetNotLoggedIn(t *testing.T) {
	s := Store{Dir: t.TempDir(), Getenv: envFunc(nil)}
	ti, err := s.Get()
	if err != nil || ti != nil {
		t.Errorf("Get: got %+v, %v; want nil, nil", ti, err)
	}
}

func TestSetGetDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".tada")
	s := Store{Dir: dir, Getenv: envFunc(nil)}
	if err := s.Set("Bearer  opaque-token "); err != nil {
		t.Fatalf("Set: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, credFileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm: got %o, want 600", perm)
	}
	ti, err := s.Get()
	if err != nil || ti == nil {
		t.Fatalf("Get: %+v, %v", ti, err)
	}
	if ti.Token != "opaque-token" || ti.Source != "file" || ti.ExpiresAt != nil {
		t.Errorf("Get: unexpected %+v", ti)
	}
	if err := s.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(); err != nil {
		t.Errorf("second Delete should be a no-op: %v", err)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "bearer ", "Bearer ", "BEARER\t", " Bearer   "} {
		dir := t.TempDir()
		if err := (Store{Dir: dir, Getenv: envFunc(nil)}).Set(in); err == nil {
			t.Errorf("Set(%q): expected error for empty token", in)
		}
		if _, err := os.Stat(filepath.Join(dir, credFileName)); !os.IsNotExist(err) {
			t.Errorf("Set(%q): credentials file written", in)
		}
	}
}

func TestBareSchemeInEnvIsIgnored(t *testing.T) {
	dir := t.TempDir()
	if err := (Store{Dir: dir, Getenv: envFunc(nil)}).Set("from-file"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	for _, env := range []string{"Bearer   ", "bearer", "  "} {
		s := Store{Dir: dir, Getenv: envFunc(map[string]string{EnvToken: env})}
		ti, err := s.Get()
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if ti == nil || ti.Token != "from-file" || ti.Source != "file" {
			t.Errorf("%s=%q: got %+v, want the saved token", EnvToken, env, ti)
		}
	}
}

func TestStripBearer(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Bearer abc", "abc"},
		{"bearer\tabc ", "abc"},
		{"  BEARER  abc", "abc"},
		{"Bearer", ""},
		{"Bearerabc", "Bearerabc"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := stripBearer(tt.in); got != tt.want {
			t.Errorf("stripBearer(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := (Store{Dir: dir, Getenv: envFunc(nil)}).Set("from-file"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s := Store{Dir: dir, Getenv: envFunc(map[string]string{EnvToken: "bearer from-env"})}
	ti, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ti.Token != "from-env" || ti.Source != "env" {
		t.Errorf("Get: got %+v, want env token", ti)
	}
}

func TestJWTExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()})

	s := Store{Dir: t.TempDir(), Getenv: envFunc(nil)}
	if err := s.Set(tok); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ti, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ti.ExpiresAt == nil || !ti.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt: got %v, want %v", ti.ExpiresAt, exp)
	}

	claims, err := Claims(tok)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims["sub"] != "user-1" {
		t.Errorf("sub: got %v", claims["sub"])
	}
	if _, err := Claims("opaque"); err == nil {
		t.Error("Claims(opaque): expected error")
	}
}
