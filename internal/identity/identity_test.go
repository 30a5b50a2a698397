package identity

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nroh/slidegen/internal/storage"
)

func TestLoadCreatesIdentityOnce(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "slidegen.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	first, err := NewStore(db).Load(ctx)
	require.NoError(t, err)

	_, err = uuid.Parse(first.ClientID)
	assert.NoError(t, err, "client id should be a UUID")
	assert.True(t, strings.HasPrefix(first.UserID, "user_"))

	// A second load returns the identical identity.
	second, err := NewStore(db).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIdentitiesAreUniquePerDatabase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := storage.Open(filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	defer a.Close()
	b, err := storage.Open(filepath.Join(dir, "b.db"))
	require.NoError(t, err)
	defer b.Close()

	idA, err := NewStore(a).Load(ctx)
	require.NoError(t, err)
	idB, err := NewStore(b).Load(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, idA.ClientID, idB.ClientID)
	assert.NotEqual(t, idA.UserID, idB.UserID)
}
