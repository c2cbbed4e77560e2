package service

import (
	"testing"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestGuard_Authorize(t *testing.T) {
	guard := NewGuard()
	alice := &Identity{UserID: "usr-alice"}
	aliceNote := &domain.Note{Record: domain.Record{ID: "note-1"}, OwnerID: "usr-alice"}
	bobNote := &domain.Note{Record: domain.Record{ID: "note-2"}, OwnerID: "usr-bob"}

	tests := []struct {
		name     string
		caller   *Identity
		action   Action
		resource *domain.Note
		want     Decision
	}{
		{name: "home is public", action: ActionHome, want: Allow()},
		{name: "login page is public", action: ActionLoginPage, want: Allow()},
		{name: "signup page is public", action: ActionSignupPage, want: Allow()},
		{name: "federated login is public", action: ActionFederated, want: Allow()},
		{name: "anonymous list", action: ActionList, want: Deny(ReasonUnauthenticated)},
		{name: "anonymous compose", action: ActionCompose, want: Deny(ReasonUnauthenticated)},
		{name: "anonymous view", action: ActionView, resource: aliceNote, want: Deny(ReasonUnauthenticated)},
		{name: "anonymous delete", action: ActionDelete, resource: aliceNote, want: Deny(ReasonUnauthenticated)},
		{name: "anonymous logout", action: ActionLogout, want: Deny(ReasonUnauthenticated)},
		{name: "empty identity", caller: &Identity{}, action: ActionList, want: Deny(ReasonUnauthenticated)},
		{name: "compose", caller: alice, action: ActionCompose, want: Allow()},
		{name: "list", caller: alice, action: ActionList, want: Allow()},
		{name: "search", caller: alice, action: ActionSearch, want: Allow()},
		{name: "view own", caller: alice, action: ActionView, resource: aliceNote, want: Allow()},
		{name: "delete own", caller: alice, action: ActionDelete, resource: aliceNote, want: Allow()},
		{name: "view foreign", caller: alice, action: ActionView, resource: bobNote, want: Deny(ReasonNotOwner)},
		{name: "delete foreign", caller: alice, action: ActionDelete, resource: bobNote, want: Deny(ReasonNotOwner)},
		{name: "view without resource", caller: alice, action: ActionView, want: Deny(ReasonNotOwner)},
		{name: "unknown action", caller: alice, action: "edit", want: Deny(ReasonUnknownAction)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.Authorize(tt.caller, tt.action, tt.resource))
		})
	}
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Allow().Err())
	assert.ErrorIs(t, Deny(ReasonUnauthenticated).Err(), domainerrors.ErrUnauthenticated)
	assert.ErrorIs(t, Deny(ReasonNotOwner).Err(), domainerrors.ErrNotOwner)
	assert.ErrorIs(t, Decision{}.Err(), domainerrors.ErrInternal)
}

func TestIsPublic(t *testing.T) {
	assert.True(t, IsPublic(ActionHome))
	assert.False(t, IsPublic(ActionCompose))
}

func TestGuard_OwnershipProperty(t *testing.T) {
	guard := NewGuard()
	idGen := rapid.StringMatching(`usr-[a-z0-9]{1,8}`)

	rapid.Check(t, func(rt *rapid.T) {
		caller := idGen.Draw(rt, "caller")
		owner := idGen.Draw(rt, "owner")
		action := rapid.SampledFrom([]Action{ActionView, ActionDelete}).Draw(rt, "action")
		note := &domain.Note{OwnerID: owner}

		d := guard.Authorize(&Identity{UserID: caller}, action, note)
		if caller == owner {
			assert.True(rt, d.Allowed)
		} else {
			assert.Equal(rt, Deny(ReasonNotOwner), d)
		}

		assert.Equal(rt, Deny(ReasonUnauthenticated), guard.Authorize(nil, action, note))
	})
}
