package viewer

import (
	"testing"

	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"

	"github.com/stretchr/testify/require"
)

func TestFromUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		user     model.User
		wantRole model.Role
		wantErr  error
	}{
		{name: "admin", user: model.User{ID: "1", Email: "a@example.com", Role: model.RoleAdmin}, wantRole: model.RoleAdmin},
		{name: "seller", user: model.User{ID: "2", Email: "s@example.com", Role: model.RoleSeller}, wantRole: model.RoleSeller},
		{name: "buyer", user: model.User{ID: "3", Email: "b@example.com", Role: model.RoleBuyer}, wantRole: model.RoleBuyer},
		{name: "unknown", user: model.User{ID: "4", Email: "x@example.com", Role: "moderator"}, wantErr: marketerrors.ErrUnknownRole},
		{name: "empty", user: model.User{ID: "5", Email: "y@example.com"}, wantErr: marketerrors.ErrUnknownRole},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v, err := FromUser(tc.user)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Equal(t, marketerrors.KindForbidden, marketerrors.KindOf(err))
				require.Nil(t, v)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantRole, v.Role())
			require.Equal(t, tc.user, v.User())
		})
	}
}

func TestVariantKeys(t *testing.T) {
	t.Parallel()

	v, err := FromUser(model.User{ID: "u9", Email: "seller@example.com", Role: model.RoleSeller})
	require.NoError(t, err)

	switch s := v.(type) {
	case Seller:
		require.Equal(t, "seller@example.com", s.Email())
	default:
		t.Fatalf("unexpected variant %T", v)
	}

	b, err := FromUser(model.User{ID: "u10", Email: "buyer@example.com", Role: model.RoleBuyer})
	require.NoError(t, err)
	require.Equal(t, "u10", b.(Buyer).ID())
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	v, _ := FromUser(model.User{Email: "b@example.com", Role: model.RoleBuyer})
	require.Equal(t, "b@example.com", DisplayName(v))

	v, _ = FromUser(model.User{Email: "b@example.com", DisplayName: "Bea", Role: model.RoleBuyer})
	require.Equal(t, "Bea", DisplayName(v))
}
