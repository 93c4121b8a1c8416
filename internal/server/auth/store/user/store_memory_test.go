package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carddemo/internal/server/auth/models"
	"carddemo/pkg/sentinel"
)

func TestCreateAndGetRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.User{UserID: "USER001", UserType: "U"}))

	got, err := store.GetByID(ctx, "USER001")
	require.NoError(t, err)
	assert.Equal(t, "U", got.UserType)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.User{UserID: "user001"}))

	_, err := store.GetByID(ctx, "USER001")
	assert.NoError(t, err)
}

func TestCreateDuplicateFails(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.User{UserID: "USER001"}))
	err := store.Create(ctx, &models.User{UserID: "USER001"})
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
}

func TestGetUnknownReturnsNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.GetByID(context.Background(), "GHOST001")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestUpdateAndDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.User{UserID: "USER001", FirstName: "Old"}))
	require.NoError(t, store.Update(ctx, &models.User{UserID: "USER001", FirstName: "New"}))

	got, err := store.GetByID(ctx, "USER001")
	require.NoError(t, err)
	assert.Equal(t, "New", got.FirstName)

	require.NoError(t, store.Delete(ctx, "USER001"))
	_, err = store.GetByID(ctx, "USER001")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "USER001"), sentinel.ErrNotFound)
}

func TestListIsOrdered(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.User{UserID: "ZUSER"}))
	require.NoError(t, store.Create(ctx, &models.User{UserID: "AUSER"}))

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "AUSER", users[0].UserID)
	assert.Equal(t, "ZUSER", users[1].UserID)
}

func TestStoreReturnsClones(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.User{UserID: "USER001", FirstName: "Orig"}))

	got, err := store.GetByID(ctx, "USER001")
	require.NoError(t, err)
	got.FirstName = "Mutated"

	again, err := store.GetByID(ctx, "USER001")
	require.NoError(t, err)
	assert.Equal(t, "Orig", again.FirstName)
}
