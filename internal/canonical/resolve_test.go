package canonical

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/vhost"
)

func TestResolve(t *testing.T) {
	item := &content.Item{Path: "/plone/foo"}

	require.Nil(t, Resolve(vhost.Identity(), item, ""))
	require.Equal(t, "https://a.test/plone/foo", *Resolve(vhost.Identity(), item, "https://a.test"))

	rc, err := vhost.Traverse("/VirtualHostBase/https/a.test/plone/VirtualHostRoot/")
	require.NoError(t, err)
	require.Equal(t, "https://a.test/foo", *Resolve(rc, item, "https://a.test"))

	item.CanonicalURL = content.StringPtr("http://pinned.test/x")
	require.Equal(t, "http://pinned.test/x", *Resolve(rc, item, "https://a.test"))
}
