// Package guard decides whether a visitor may reach a route. It is a pure
// function over session state so the full decision table is testable
// without HTTP; the gin half lives in internal/server.
package guard

import "github.com/raihasa-dev/raihasa/internal/models"

// Audience tags a route with who it is for
type Audience string

const (
	AudiencePublic Audience = "public"
	AudienceUser   Audience = "user"
	AudienceAdmin  Audience = "admin"
)

// Well-known destinations
const (
	LoginPath = "/auth/login"
	UserHome  = "/dashboard"
	AdminHome = "/admin"
)

// Action is the outcome kind of a guard decision
type Action int

const (
	// Allow renders the page
	Allow Action = iota

	// Defer means the session is still hydrating; no decision may be
	// made yet, else a logged-in visitor would flash through a redirect
	// to login on every hard refresh.
	Defer

	// Redirect sends the visitor to Target
	Redirect
)

// Decision is the guard's verdict for one request
type Decision struct {
	Action Action
	Target string

	// RememberPath is set when the originally requested path should be
	// stored for a post-login redirect.
	RememberPath bool
}

// Session is the slice of session state the guard consumes
type Session struct {
	Loading       bool
	Authenticated bool
	Role          models.Role
}

// Decide applies the audience table:
//
//	public + unauthenticated        -> allow
//	public + authenticated          -> redirect to role home
//	user/admin + unauthenticated    -> redirect to login, remember path
//	user + USER / admin + ADMIN     -> allow
//	user + ADMIN                    -> redirect to admin home
//	admin + USER                    -> redirect to user home
func Decide(s Session, audience Audience) Decision {
	if s.Loading {
		return Decision{Action: Defer}
	}

	switch audience {
	case AudiencePublic:
		if !s.Authenticated {
			return Decision{Action: Allow}
		}
		return Decision{Action: Redirect, Target: homeFor(s.Role)}

	case AudienceUser:
		if !s.Authenticated {
			return Decision{Action: Redirect, Target: LoginPath, RememberPath: true}
		}
		if s.Role == models.RoleAdmin {
			return Decision{Action: Redirect, Target: AdminHome}
		}
		return Decision{Action: Allow}

	case AudienceAdmin:
		if !s.Authenticated {
			return Decision{Action: Redirect, Target: LoginPath, RememberPath: true}
		}
		if s.Role != models.RoleAdmin {
			return Decision{Action: Redirect, Target: UserHome}
		}
		return Decision{Action: Allow}
	}

	// Unknown audience: treat as the most restrictive
	return Decision{Action: Redirect, Target: LoginPath, RememberPath: true}
}

// HomeFor returns the landing page for a role
func HomeFor(role models.Role) string {
	return homeFor(role)
}

func homeFor(role models.Role) string {
	if role == models.RoleAdmin {
		return AdminHome
	}
	return UserHome
}
