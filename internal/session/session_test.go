package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/raihasa-dev/raihasa/internal/models"
	"github.com/raihasa-dev/raihasa/internal/storage"
	"github.com/raihasa-dev/raihasa/internal/token"
)

func testUser() *models.User {
	return &models.User{ID: "u-1", Name: "Ana", Email: "ana@raihasa.id", Role: models.RoleUser}
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tok
}

func newTestStore(t *testing.T) (*Store, storage.KV, token.Store) {
	t.Helper()

	kv := storage.NewMemory()
	store := New(context.Background(), kv, "sid-1", zerolog.Nop())
	store.StopLoading()
	return store, kv, token.NewMemory()
}

func TestStore_Defaults(t *testing.T) {
	store, _, _ := newTestStore(t)

	state := store.State()
	if state.User != nil || state.Token != "" || state.Authenticated {
		t.Errorf("expected default state, got %+v", state)
	}
	if store.Authenticated() {
		t.Error("fresh store must not be authenticated")
	}
}

func TestStore_LoginThenLogout_EndsAtDefaults(t *testing.T) {
	ctx := context.Background()
	store, _, tokens := newTestStore(t)

	store.Login(ctx, tokens, testUser(), "tok-1")
	store.Logout(ctx, tokens)

	state := store.State()
	if state.User != nil || state.Token != "" || state.Authenticated {
		t.Errorf("expected pre-login defaults after logout, got %+v", state)
	}
	if tokens.Get() != "" {
		t.Errorf("expected token store cleared, got %q", tokens.Get())
	}
}

func TestStore_LoginSyncsTokenStore(t *testing.T) {
	ctx := context.Background()
	store, _, tokens := newTestStore(t)

	store.Login(ctx, tokens, testUser(), "tok-42")

	// The two stores never disagree immediately after login
	if tokens.Get() != "tok-42" {
		t.Errorf("token store holds %q, session holds %q", tokens.Get(), store.Token())
	}
	if store.Token() != "tok-42" {
		t.Errorf("expected session token tok-42, got %q", store.Token())
	}
	if !store.Authenticated() {
		t.Error("expected authenticated after login")
	}
}

func TestStore_AuthenticatedInvariant(t *testing.T) {
	ctx := context.Background()
	store, _, tokens := newTestStore(t)

	// isAuthenticated == true implies user and token both present
	store.Login(ctx, tokens, testUser(), "tok-1")
	state := store.State()
	if state.Authenticated && (state.User == nil || state.Token == "") {
		t.Errorf("invariant violated: %+v", state)
	}
}

func TestStore_LogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _, tokens := newTestStore(t)

	notified := 0
	store.Subscribe(FieldAuthenticated, func(State) { notified++ })

	store.Logout(ctx, tokens)
	if notified != 0 {
		t.Errorf("logout of a logged-out store must not notify, got %d calls", notified)
	}

	store.Login(ctx, tokens, testUser(), "tok-1")
	store.Logout(ctx, tokens)
	store.Logout(ctx, tokens)
	// One for login, one for the first logout only
	if notified != 2 {
		t.Errorf("expected 2 notifications, got %d", notified)
	}
}

func TestStore_StopLoadingLatch(t *testing.T) {
	kv := storage.NewMemory()
	store := New(context.Background(), kv, "sid-latch", zerolog.Nop())

	if !store.Loading() {
		t.Fatal("new store must start loading")
	}

	notified := 0
	store.Subscribe(FieldLoading, func(State) { notified++ })

	store.StopLoading()
	if store.Loading() {
		t.Error("expected loading stopped")
	}

	// One-way: a second call neither reverts nor re-notifies
	store.StopLoading()
	if store.Loading() {
		t.Error("loading must never revert to true")
	}
	if notified != 1 {
		t.Errorf("expected 1 loading notification, got %d", notified)
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	tokens := token.NewMemory()

	first := New(ctx, kv, "sid-p", zerolog.Nop())
	first.StopLoading()
	first.Login(ctx, tokens, testUser(), "tok-1")

	// A new store for the same session hydrates the persisted state
	second := New(ctx, kv, "sid-p", zerolog.Nop())
	if !second.Loading() {
		t.Error("hydrated store still reports loading until StopLoading")
	}
	second.StopLoading()

	if !second.Authenticated() {
		t.Error("expected hydrated store to be authenticated")
	}
	if second.Token() != "tok-1" {
		t.Errorf("expected hydrated token tok-1, got %q", second.Token())
	}
	if user := second.User(); user == nil || user.ID != "u-1" {
		t.Errorf("expected hydrated user u-1, got %+v", user)
	}
}

func TestStore_SubscribersAreFieldSelective(t *testing.T) {
	ctx := context.Background()
	store, _, tokens := newTestStore(t)

	var userCalls, tokenCalls, loadingCalls int
	store.Subscribe(FieldUser, func(State) { userCalls++ })
	store.Subscribe(FieldToken, func(State) { tokenCalls++ })
	store.Subscribe(FieldLoading, func(State) { loadingCalls++ })

	store.Login(ctx, tokens, testUser(), "tok-1")

	if userCalls != 1 || tokenCalls != 1 {
		t.Errorf("expected user and token subscribers notified once, got %d/%d", userCalls, tokenCalls)
	}
	if loadingCalls != 0 {
		t.Errorf("loading subscriber must not fire on login, got %d", loadingCalls)
	}
}

func TestStore_ExpiredTokenIsUnauthenticated(t *testing.T) {
	ctx := context.Background()
	store, _, tokens := newTestStore(t)

	expired := signToken(t, jwt.MapClaims{
		"user_id": "u-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	store.Login(ctx, tokens, testUser(), expired)

	if store.Authenticated() {
		t.Error("expected expired token to report unauthenticated")
	}

	live := signToken(t, jwt.MapClaims{
		"user_id": "u-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	store.Login(ctx, tokens, testUser(), live)
	if !store.Authenticated() {
		t.Error("expected live token to report authenticated")
	}
}

func TestStore_ReturnPath(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	if got := store.ConsumeReturnPath(ctx); got != "" {
		t.Errorf("expected no remembered path, got %q", got)
	}

	store.RememberPath(ctx, "/dashboard/lms")
	if got := store.ConsumeReturnPath(ctx); got != "/dashboard/lms" {
		t.Errorf("expected remembered path, got %q", got)
	}

	// Consumed: the slot is cleared
	if got := store.ConsumeReturnPath(ctx); got != "" {
		t.Errorf("expected slot cleared after consume, got %q", got)
	}
}
