package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"shiftboard/internal/store"
	"shiftboard/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	_ Service = (*LocalService)(nil)
	_ Service = (*CloudService)(nil)
	_ Service = (*Manager)(nil)
)

type employee struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Skills  []string `json:"skills"`
	Manager bool     `json:"manager"`
}

func noLatency() CloudConfig {
	return CloudConfig{Prefix: DefaultCloudPrefix}
}

// backends returns both services over a fresh shared area
func backends(t *testing.T) (store.Store, []Service) {
	t.Helper()
	area := store.NewMemoryStore()
	return area, []Service{
		NewLocalService(area, 0, logger.Nop()),
		NewCloudService(area, noLatency(), logger.Nop()),
	}
}

func TestService_ItemRoundTrip(t *testing.T) {
	_, services := backends(t)
	ctx := context.Background()

	for _, s := range services {
		t.Run(s.Name(), func(t *testing.T) {
			for _, v := range []string{"", "plain", `{"a":1}`, "èàù 日本語"} {
				require.True(t, s.SetItem(ctx, "k", v))
				got, ok := s.GetItem(ctx, "k")
				require.True(t, ok)
				assert.Equal(t, v, got)
			}

			_, ok := s.GetItem(ctx, "never-set")
			assert.False(t, ok)
		})
	}
}

func TestService_ObjectRoundTrip(t *testing.T) {
	_, services := backends(t)
	ctx := context.Background()

	want := []employee{
		{ID: 1, Name: "Mario Rossi", Skills: []string{"cassa", "magazzino"}},
		{ID: 2, Name: "Anna Bianchi", Manager: true},
	}

	for _, s := range services {
		t.Run(s.Name(), func(t *testing.T) {
			require.True(t, s.SetObject(ctx, "dipendenti", want))

			var got []employee
			require.True(t, s.GetObject(ctx, "dipendenti", &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestService_GetObjectMalformed(t *testing.T) {
	_, services := backends(t)
	ctx := context.Background()

	for _, s := range services {
		t.Run(s.Name(), func(t *testing.T) {
			require.True(t, s.SetItem(ctx, "broken", "{not json"))

			var out map[string]any
			assert.False(t, s.GetObject(ctx, "broken", &out))
			assert.Nil(t, out)

			assert.False(t, s.GetObject(ctx, "missing", &out))
		})
	}
}

func TestService_SetObjectUnencodable(t *testing.T) {
	_, services := backends(t)
	for _, s := range services {
		assert.False(t, s.SetObject(context.Background(), "fn", func() {}))
	}
}

func TestService_Clear(t *testing.T) {
	_, services := backends(t)
	ctx := context.Background()

	for _, s := range services {
		t.Run(s.Name(), func(t *testing.T) {
			keys := []string{"a", "b", "c"}
			for _, k := range keys {
				require.True(t, s.SetItem(ctx, k, "v"))
			}
			require.True(t, s.Clear(ctx))
			for _, k := range keys {
				_, ok := s.GetItem(ctx, k)
				assert.False(t, ok, "key %s survived Clear", k)
			}
			assert.Empty(t, s.Keys(ctx))
		})
	}
}

func TestService_RemoveItem(t *testing.T) {
	_, services := backends(t)
	ctx := context.Background()

	for _, s := range services {
		t.Run(s.Name(), func(t *testing.T) {
			require.True(t, s.SetItem(ctx, "k", "v"))
			require.True(t, s.RemoveItem(ctx, "k"))
			_, ok := s.GetItem(ctx, "k")
			assert.False(t, ok)
			assert.True(t, s.RemoveItem(ctx, "k"))
		})
	}
}

func TestService_FailuresBecomeFalse(t *testing.T) {
	area := store.NewMemoryStoreWithQuota(10)
	local := NewLocalService(area, 0, logger.Nop())
	ctx := context.Background()

	assert.False(t, local.SetItem(ctx, "too-long-key", "too-long-value"))
	assert.False(t, local.SetItem(ctx, "", "v"))

	require.NoError(t, area.Close())
	_, ok := local.GetItem(ctx, "k")
	assert.False(t, ok)
	assert.False(t, local.Clear(ctx))
	assert.False(t, local.RemoveItem(ctx, "k"))
	_, ok = local.GetStorageInfo(ctx)
	assert.False(t, ok)
	assert.Nil(t, local.Keys(ctx))
}

func TestLocalService_GetStorageInfo(t *testing.T) {
	area := store.NewMemoryStore()
	local := NewLocalService(area, 1000, logger.Nop())
	ctx := context.Background()

	require.True(t, local.SetItem(ctx, "abc", "defgh")) // 8 chars = 16 bytes
	require.True(t, local.SetItem(ctx, "x", "y"))       // 2 chars = 4 bytes

	info, ok := local.GetStorageInfo(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(20), info.Used)
	assert.Equal(t, int64(980), info.Available)
	assert.Equal(t, int64(1000), info.Capacity)
	assert.Equal(t, 2.0, info.UsedPercent)
	assert.Equal(t, "20 B", info.UsedHuman)
}

func TestNewInfo(t *testing.T) {
	tests := []struct {
		name        string
		used, cap   int64
		wantAvail   int64
		wantPercent float64
	}{
		{name: "empty", used: 0, cap: DefaultCapacity, wantAvail: DefaultCapacity, wantPercent: 0},
		{name: "third", used: 1, cap: 3, wantAvail: 2, wantPercent: 33.33},
		{name: "over capacity", used: 150, cap: 100, wantAvail: 0, wantPercent: 150},
		{name: "zero capacity", used: 10, cap: 0, wantAvail: 0, wantPercent: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewInfo(tt.used, tt.cap)
			assert.Equal(t, tt.wantAvail, info.Available)
			assert.Equal(t, tt.wantPercent, info.UsedPercent)
		})
	}
}

func TestService_RejectsInvalidKeys(t *testing.T) {
	area, services := backends(t)
	ctx := context.Background()

	for _, s := range services {
		t.Run(s.Name(), func(t *testing.T) {
			for _, key := range []string{"", "a\x00b"} {
				assert.False(t, s.SetItem(ctx, key, "v"))
				_, ok := s.GetItem(ctx, key)
				assert.False(t, ok)
				assert.False(t, s.RemoveItem(ctx, key))
			}
			assert.Empty(t, s.Keys(ctx))
		})
	}

	keys, err := area.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
