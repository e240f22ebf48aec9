package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tu "github.com/desertthunder/kiosk/internal/testing"
)

func stores(t *testing.T) map[string]KVStore {
	t.Helper()
	return map[string]KVStore{
		"sqlite": NewSQLiteStore(tu.MustOpenDB(t)),
		"memory": NewMemoryStore(),
	}
}

func TestKVStore(t *testing.T) {
	t.Run("Get missing key", func(t *testing.T) {
		for name, store := range stores(t) {
			t.Run(name, func(t *testing.T) {
				v, ok, err := store.Get("nope")
				require.NoError(t, err)
				assert.False(t, ok)
				assert.Empty(t, v)
			})
		}
	})

	t.Run("SetMany then Get", func(t *testing.T) {
		for name, store := range stores(t) {
			t.Run(name, func(t *testing.T) {
				require.NoError(t, store.SetMany(map[string]string{
					KeyAccessToken:  "access",
					KeyRefreshToken: "refresh",
				}))

				v, ok, err := store.Get(KeyAccessToken)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "access", v)

				v, ok, err = store.Get(KeyRefreshToken)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "refresh", v)
			})
		}
	})

	t.Run("SetMany overwrites", func(t *testing.T) {
		for name, store := range stores(t) {
			t.Run(name, func(t *testing.T) {
				require.NoError(t, store.SetMany(map[string]string{KeyTokenExpiry: "1"}))
				require.NoError(t, store.SetMany(map[string]string{KeyTokenExpiry: "2"}))

				v, _, err := store.Get(KeyTokenExpiry)
				require.NoError(t, err)
				assert.Equal(t, "2", v)
			})
		}
	})

	t.Run("SetMany empty is a no-op", func(t *testing.T) {
		for name, store := range stores(t) {
			t.Run(name, func(t *testing.T) {
				assert.NoError(t, store.SetMany(nil))
			})
		}
	})

	t.Run("Delete", func(t *testing.T) {
		for name, store := range stores(t) {
			t.Run(name, func(t *testing.T) {
				require.NoError(t, store.SetMany(map[string]string{"a": "1", "b": "2", "c": "3"}))
				require.NoError(t, store.Delete("a", "b", "missing"))

				_, ok, _ := store.Get("a")
				assert.False(t, ok)
				_, ok, _ = store.Get("b")
				assert.False(t, ok)
				v, ok, _ := store.Get("c")
				assert.True(t, ok)
				assert.Equal(t, "3", v)

				assert.NoError(t, store.Delete())
				assert.NoError(t, store.Delete("a"), "deleting twice is fine")
			})
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	t.Run("persists across store instances", func(t *testing.T) {
		db := tu.MustOpenDB(t)

		require.NoError(t, NewSQLiteStore(db).SetMany(map[string]string{KeyCachedDevices: "[]"}))

		v, ok, err := NewSQLiteStore(db).Get(KeyCachedDevices)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", v)
	})

	t.Run("closed database surfaces errors", func(t *testing.T) {
		db := tu.MustOpenDB(t)
		store := NewSQLiteStore(db)
		db.Close()

		_, _, err := store.Get("k")
		assert.Error(t, err)
		assert.Error(t, store.SetMany(map[string]string{"k": "v"}))
		assert.Error(t, store.Delete("k"))
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.SetMany(map[string]string{"x": "1"}))
	assert.Equal(t, 1, store.Len())
}
