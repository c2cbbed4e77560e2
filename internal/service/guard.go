package service

import (
	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
)

// Action is an operation a caller requests.
type Action string

// Public actions.
const (
	ActionHome       Action = "home"
	ActionLoginPage  Action = "login_page"
	ActionSignupPage Action = "signup_page"
	ActionLogin      Action = "login"
	ActionSignup     Action = "signup"
	ActionFederated  Action = "federated_login"
)

// Protected actions.
const (
	ActionList    Action = "list"
	ActionCompose Action = "compose"
	ActionView    Action = "view"
	ActionDelete  Action = "delete"
	ActionSearch  Action = "search"
	ActionLogout  Action = "logout"
)

// DenyReason explains a denial.
type DenyReason string

// Deny reasons.
const (
	ReasonUnauthenticated DenyReason = "unauthenticated"
	ReasonNotOwner        DenyReason = "not_owner"
	ReasonUnknownAction   DenyReason = "unknown_action"
)

// Decision is the outcome of Authorize. The zero value denies.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the permitting decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a denial for reason.
func Deny(reason DenyReason) Decision { return Decision{Reason: reason} }

// Err returns nil for an allowed decision and the matching domain error
// otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return domainerrors.Unauthenticated("authentication required")
	case ReasonNotOwner:
		return domainerrors.NotOwner("note belongs to another user")
	default:
		return domainerrors.Internalf("action denied: %s", d.Reason)
	}
}

// Guard decides whether a caller may perform an action. It holds no state.
type Guard struct{}

// NewGuard returns a Guard.
func NewGuard() Guard { return Guard{} }

// Authorize decides whether caller may perform action on resource.
// resource is only consulted for view and delete, where it must be owned
// by the caller. Unknown actions are denied.
func (Guard) Authorize(caller *Identity, action Action, resource *domain.Note) Decision {
	switch action {
	case ActionHome, ActionLoginPage, ActionSignupPage, ActionLogin, ActionSignup, ActionFederated:
		return Allow()
	case ActionList, ActionCompose, ActionSearch, ActionLogout, ActionView, ActionDelete:
	default:
		return Deny(ReasonUnknownAction)
	}

	if caller == nil || caller.UserID == "" {
		return Deny(ReasonUnauthenticated)
	}

	switch action {
	case ActionView, ActionDelete:
		if resource == nil || !resource.OwnedBy(caller.UserID) {
			return Deny(ReasonNotOwner)
		}
	}
	return Allow()
}

// IsPublic reports whether action is allowed without authentication.
func IsPublic(action Action) bool {
	return Guard{}.Authorize(nil, action, nil).Allowed
}
