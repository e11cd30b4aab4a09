package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/suqapp/backend/internal/domain"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Deactivate(ctx context.Context, mobile string) error {
	return m.Called(ctx, mobile).Error(0)
}

func TestMe(t *testing.T) {
	store := &mockStore{}
	u := &domain.User{UserID: "u1", Mobile: "+251911223344"}
	store.On("GetByID", mock.Anything, "u1").Return(u, nil)

	got, err := NewService(store).Me(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestDeactivate_ResolvesMobileFirst(t *testing.T) {
	store := &mockStore{}
	store.On("GetByID", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Mobile: "+251911223344"}, nil)
	store.On("Deactivate", mock.Anything, "+251911223344").Return(nil)

	require.NoError(t, NewService(store).Deactivate(context.Background(), "u1"))
	store.AssertExpectations(t)
}

func TestDeactivate_UserGone(t *testing.T) {
	store := &mockStore{}
	store.On("GetByID", mock.Anything, "u1").Return(nil, domain.ErrNotFound)

	err := NewService(store).Deactivate(context.Background(), "u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	store.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}
