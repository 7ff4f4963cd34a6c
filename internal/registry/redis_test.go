package registry

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

func newRedisRegistry(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	reg, backend, err := NewRedisRegistry(t.Context(), RedisOptions{Addr: mr.Addr(), KeyPrefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return reg, mr
}

func TestRedisRegistry(t *testing.T) {
	reg, _ := newRedisRegistry(t)
	runRegistrySuite(t, reg)
}

func TestRedisRegistryLayout(t *testing.T) {
	reg, mr := newRedisRegistry(t)
	require.NoError(t, reg.Set(t.Context(), InterfaceSocialLike, RecordCanonicalDomain, "https://example.org"))
	require.NoError(t, reg.Set(t.Context(), InterfaceSocialLike, RecordPluginsEnabled, []string{"email"}))

	require.Equal(t, `"https://example.org"`, mr.HGet("test:social_like", RecordCanonicalDomain))
	require.Equal(t, `["email"]`, mr.HGet("test:social_like", RecordPluginsEnabled))

	v, err := reg.Get(t.Context(), InterfaceSocialLike, RecordPluginsEnabled)
	require.NoError(t, err)
	require.Equal(t, []string{"email"}, v)
}

func TestRedisRegistryUnavailable(t *testing.T) {
	_, _, err := NewRedisRegistry(t.Context(), RedisOptions{})
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, _, err = NewRedisRegistry(t.Context(), RedisOptions{Addr: addr})
	require.True(t, errors.HasCategory(err, errors.CategoryNetwork))
}
