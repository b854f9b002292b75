package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"solvectl/internal/domain"
)

func TestDecide(t *testing.T) {
	regular := &domain.User{ID: "u1", Role: domain.RoleUser}
	admin := &domain.User{ID: "u2", Role: domain.RoleAdmin}

	tests := []struct {
		name     string
		snap     SessionSnapshot
		required domain.Role
		want     Decision
	}{
		{
			name:     "loading waits regardless of token",
			snap:     SessionSnapshot{Token: "tok", Phase: SessionLoading},
			required: domain.RoleUser,
			want:     DecisionWait,
		},
		{
			name:     "anonymous goes to entry",
			snap:     SessionSnapshot{Phase: SessionIdle},
			required: domain.RoleUser,
			want:     DecisionRedirectEntry,
		},
		{
			name:     "token without profile is not authenticated",
			snap:     SessionSnapshot{Token: "tok", Phase: SessionIdle},
			required: domain.RoleUser,
			want:     DecisionRedirectEntry,
		},
		{
			name:     "regular user allowed on user requirement",
			snap:     SessionSnapshot{Token: "tok", User: regular, Phase: SessionIdle},
			required: domain.RoleUser,
			want:     DecisionAllow,
		},
		{
			name:     "regular user sent home from admin area",
			snap:     SessionSnapshot{Token: "tok", User: regular, Phase: SessionIdle},
			required: domain.RoleAdmin,
			want:     DecisionRedirectHome,
		},
		{
			name:     "admin allowed on admin requirement",
			snap:     SessionSnapshot{Token: "tok", User: admin, Phase: SessionIdle},
			required: domain.RoleAdmin,
			want:     DecisionAllow,
		},
		{
			name:     "admin allowed on user requirement",
			snap:     SessionSnapshot{Token: "tok", User: admin, Phase: SessionIdle},
			required: domain.RoleUser,
			want:     DecisionAllow,
		},
		{
			name:     "no requirement allows any authenticated user",
			snap:     SessionSnapshot{Token: "tok", User: regular, Phase: SessionIdle},
			required: "",
			want:     DecisionAllow,
		},
		{
			name:     "error phase with no session goes to entry",
			snap:     SessionSnapshot{Phase: SessionError, LastError: "boom"},
			required: domain.RoleUser,
			want:     DecisionRedirectEntry,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.snap, tc.required))
		})
	}
}
