package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction-dashboard/internal/dashboard"
	"auction-dashboard/internal/marketerrors"
	model "auction-dashboard/internal/models"
	"auction-dashboard/internal/notify"
	"auction-dashboard/utils"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) FindUser(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

type failingSource struct{}

func (failingSource) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("redis down")
}

func TestManager_StartGetEnd(t *testing.T) {
	t.Parallel()

	users := new(mockUsers)
	users.On("FindUser", mock.Anything, "seller@example.com").
		Return(model.User{ID: "u1", Email: "seller@example.com", Role: model.RoleSeller}, nil)

	ctrl := gomock.NewController(t)
	api := dashboard.NewMockAPI(ctrl)

	hub := notify.NewHub()
	m := NewManager(users, api, Config{Source: hub, InboxSize: 5})

	s, err := m.Start(context.Background(), "  seller@example.com ")
	require.NoError(t, err)
	require.True(t, utils.IsID(s.ID))
	require.Equal(t, model.RoleSeller, s.Viewer.Role())
	require.NotNil(t, s.Dashboard.Blogs)
	require.Equal(t, 1, m.Count())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	require.Same(t, s, got)

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	hub.Dispatch("seller@example.com", []byte(`{"type":"auctionWin","auctionData":{"id":"a1"}}`))
	require.Eventually(t, func() bool { return s.Inbox.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "/dashboard/checkout/a1", s.Inbox.List()[0].Target.Path)

	require.NoError(t, m.End(s.ID))
	require.Equal(t, 0, m.Count())
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 10*time.Millisecond)

	_, err = m.Get(s.ID)
	require.ErrorIs(t, err, marketerrors.ErrSessionNotFound)
	require.ErrorIs(t, m.End(s.ID), marketerrors.ErrSessionNotFound)

	// screens of an ended session refuse to load
	require.ErrorIs(t, s.Dashboard.Auctions.Open(context.Background()), marketerrors.ErrClosed)
}

func TestManager_StartErrors(t *testing.T) {
	t.Parallel()

	users := new(mockUsers)
	users.On("FindUser", mock.Anything, "ghost@example.com").
		Return(model.User{}, marketerrors.ErrUserNotFound)
	users.On("FindUser", mock.Anything, "odd@example.com").
		Return(model.User{Email: "odd@example.com", Role: "superuser"}, nil)
	users.On("FindUser", mock.Anything, "down@example.com").
		Return(model.User{}, marketerrors.ErrTransport)

	ctrl := gomock.NewController(t)
	m := NewManager(users, dashboard.NewMockAPI(ctrl), Config{})

	tests := []struct {
		email    string
		wantKind marketerrors.Kind
	}{
		{email: "", wantKind: marketerrors.KindValidation},
		{email: "ghost@example.com", wantKind: marketerrors.KindNotFound},
		{email: "odd@example.com", wantKind: marketerrors.KindForbidden},
		{email: "down@example.com", wantKind: marketerrors.KindTransport},
	}

	for _, tc := range tests {
		_, err := m.Start(context.Background(), tc.email)
		require.Error(t, err, tc.email)
		require.Equal(t, tc.wantKind, marketerrors.KindOf(err), tc.email)
	}
	require.Equal(t, 0, m.Count())
}

func TestManager_NotificationsAreOptional(t *testing.T) {
	t.Parallel()

	users := new(mockUsers)
	users.On("FindUser", mock.Anything, mock.Anything).
		Return(model.User{ID: "u2", Email: "buyer@example.com", Role: model.RoleBuyer}, nil)

	ctrl := gomock.NewController(t)
	m := NewManager(users, dashboard.NewMockAPI(ctrl), Config{Source: failingSource{}})

	s, err := m.Start(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	require.Equal(t, 0, s.Inbox.Len())
	require.Nil(t, s.Dashboard.Blogs)

	m.Close()
	require.Equal(t, 0, m.Count())
}
