package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signToken builds a real HS256 token carrying the given claims
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tok
}

func TestParse_Total(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty string", input: ""},
		{name: "one segment", input: "abc"},
		{name: "two segments", input: "abc.def"},
		{name: "four segments", input: "a.b.c.d"},
		{name: "invalid base64 payload", input: "header.!!!not-base64!!!.sig"},
		{name: "valid base64 invalid json", input: "aGVhZGVy.aGVsbG8.c2ln"},
		{name: "random garbage", input: "......"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Must return nil, never panic
			if got := Parse(tt.input); got != nil {
				t.Errorf("Parse(%q) = %v, want nil", tt.input, got)
			}
		})
	}
}

func TestParse_ValidToken(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"user_id": "u-1", "email": "ana@raihasa.id"})

	claims := Parse(tok)
	if claims == nil {
		t.Fatal("expected claims, got nil")
	}
	if claims["user_id"] != "u-1" {
		t.Errorf("expected user_id u-1, got %v", claims["user_id"])
	}
	if claims["email"] != "ana@raihasa.id" {
		t.Errorf("expected email claim, got %v", claims["email"])
	}
}

func TestClaims_UserID_Priority(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{
			name:   "user_id wins over id and sub",
			claims: jwt.MapClaims{"user_id": "a", "id": "b", "sub": "c"},
			want:   "a",
		},
		{
			name:   "id wins over sub",
			claims: jwt.MapClaims{"id": "b", "sub": "c"},
			want:   "b",
		},
		{
			name:   "sub wins over uid",
			claims: jwt.MapClaims{"sub": "c", "uid": "d"},
			want:   "c",
		},
		{
			name:   "uid last",
			claims: jwt.MapClaims{"uid": "d"},
			want:   "d",
		},
		{
			name:   "numeric identifier",
			claims: jwt.MapClaims{"id": float64(42)},
			want:   "42",
		},
		{
			name:   "no identifier field",
			claims: jwt.MapClaims{"email": "x@y.z"},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := Parse(signToken(t, tt.claims))
			if got := claims.UserID(); got != tt.want {
				t.Errorf("UserID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserID_FromStore(t *testing.T) {
	store := NewMemory()

	// Absent token always yields ""
	if got := UserID(store); got != "" {
		t.Errorf("expected empty id for empty store, got %q", got)
	}

	store.Set("not-a-jwt")
	if got := UserID(store); got != "" {
		t.Errorf("expected empty id for malformed token, got %q", got)
	}

	store.Set(signToken(t, jwt.MapClaims{"user_id": "u-7"}))
	if got := UserID(store); got != "u-7" {
		t.Errorf("expected u-7, got %q", got)
	}
}

func TestClaims_ExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	claims := Parse(signToken(t, jwt.MapClaims{"user_id": "u-1", "exp": exp}))

	got, ok := claims.ExpiresAt()
	if !ok {
		t.Fatal("expected expiry to be present")
	}
	if got.Unix() != exp {
		t.Errorf("expected exp %d, got %d", exp, got.Unix())
	}

	noExp := Parse(signToken(t, jwt.MapClaims{"user_id": "u-1"}))
	if _, ok := noExp.ExpiresAt(); ok {
		t.Error("expected no expiry for token without exp claim")
	}
}
