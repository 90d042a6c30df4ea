package guard

import (
	"testing"

	"github.com/raihasa-dev/raihasa/internal/models"
)

func TestDecide_Table(t *testing.T) {
	tests := []struct {
		name     string
		session  Session
		audience Audience
		want     Decision
	}{
		{
			name:     "public unauthenticated renders",
			session:  Session{},
			audience: AudiencePublic,
			want:     Decision{Action: Allow},
		},
		{
			name:     "public authenticated user goes home",
			session:  Session{Authenticated: true, Role: models.RoleUser},
			audience: AudiencePublic,
			want:     Decision{Action: Redirect, Target: UserHome},
		},
		{
			name:     "public authenticated admin goes to admin home",
			session:  Session{Authenticated: true, Role: models.RoleAdmin},
			audience: AudiencePublic,
			want:     Decision{Action: Redirect, Target: AdminHome},
		},
		{
			name:     "user page unauthenticated redirects to login remembering path",
			session:  Session{},
			audience: AudienceUser,
			want:     Decision{Action: Redirect, Target: LoginPath, RememberPath: true},
		},
		{
			name:     "admin page unauthenticated redirects to login remembering path",
			session:  Session{},
			audience: AudienceAdmin,
			want:     Decision{Action: Redirect, Target: LoginPath, RememberPath: true},
		},
		{
			name:     "user page with USER renders",
			session:  Session{Authenticated: true, Role: models.RoleUser},
			audience: AudienceUser,
			want:     Decision{Action: Allow},
		},
		{
			name:     "user page with ADMIN redirects to admin home",
			session:  Session{Authenticated: true, Role: models.RoleAdmin},
			audience: AudienceUser,
			want:     Decision{Action: Redirect, Target: AdminHome},
		},
		{
			name:     "admin page with ADMIN renders",
			session:  Session{Authenticated: true, Role: models.RoleAdmin},
			audience: AudienceAdmin,
			want:     Decision{Action: Allow},
		},
		{
			name:     "admin page with USER redirects to user home",
			session:  Session{Authenticated: true, Role: models.RoleUser},
			audience: AudienceAdmin,
			want:     Decision{Action: Redirect, Target: UserHome},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.session, tt.audience); got != tt.want {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecide_DefersWhileLoading(t *testing.T) {
	// No redirect may happen before hydration completes, whatever the
	// audience: a logged-in visitor must not flash through login.
	for _, audience := range []Audience{AudiencePublic, AudienceUser, AudienceAdmin} {
		got := Decide(Session{Loading: true}, audience)
		if got.Action != Defer {
			t.Errorf("audience %s: expected Defer while loading, got %+v", audience, got)
		}
	}
}

func TestHomeFor(t *testing.T) {
	if got := HomeFor(models.RoleAdmin); got != AdminHome {
		t.Errorf("expected %s, got %s", AdminHome, got)
	}
	if got := HomeFor(models.RoleUser); got != UserHome {
		t.Errorf("expected %s, got %s", UserHome, got)
	}
}
