package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftboard/internal/storage"
	"shiftboard/internal/store"
	"shiftboard/pkg/logger"
)

func TestLoadUser(t *testing.T) {
	ctx := context.Background()
	svc := storage.NewLocalService(store.NewMemoryStore(), 0, logger.Nop())

	assert.Equal(t, User{}, LoadUser(ctx, svc))

	require.True(t, SaveUser(ctx, svc, User{Name: " Anna Bianchi "}))
	assert.Equal(t, User{Name: "Anna Bianchi"}, LoadUser(ctx, svc))

	require.True(t, svc.SetItem(ctx, UserKey, "not json"))
	assert.Equal(t, User{}, LoadUser(ctx, svc))
}
