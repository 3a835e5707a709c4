package inmemory

import (
	"context"
	"testing"

	"barefoot/internal/model"
	"barefoot/internal/service"

	"github.com/stretchr/testify/require"
)

func TestUserStorage(t *testing.T) {
	t.Parallel()

	st := NewUserStorage()

	_, err := st.GetUserByEmail(context.Background(), "a@b.com")
	require.ErrorIs(t, err, service.ErrNotFound)

	u, err := st.CreateUser(context.Background(), model.User{ID: "u1", Email: "a@b.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.False(t, u.CreatedAt.IsZero())

	got, err := st.GetUserByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.Equal(t, u, got)

	_, err = st.CreateUser(context.Background(), model.User{ID: "u2", Email: "a@b.com", PasswordHash: "h"})
	require.ErrorIs(t, err, service.ErrDuplicateIdentity)
}
