package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sociallike.yaml")
	cfg := `version: "1.0"
site:
  id: plone
  title: Example
storage:
  backend: sqlite
  path: ` + filepath.Join(dir, "content.db") + `
registry:
  backend: file
  path: ` + filepath.Join(dir, "registry.yaml") + `
history:
  enabled: true
  path: ` + filepath.Join(dir, "history.db") + `
logging:
  level: error
`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := &CLI{}
	g := &Global{Out: &out}
	parser, err := kong.New(cli,
		kong.Name("sociallike"),
		kong.Vars{"version": "test"},
		kong.Bind(g),
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }))
	require.NoError(t, err)

	kctx, err := parser.Parse(append([]string{"--config", cfgPath}, args...))
	if err != nil {
		return "", err
	}
	err = kctx.Run(g, cli)
	return out.String(), err
}

func TestDomainMoveWorkflow(t *testing.T) {
	cfg := writeConfig(t)

	for _, tc := range []struct{ id, effective string }{
		{"foo", "2015-06-01"},
		{"bar", "2016-06-01"},
		{"baz", "2025-01-01"},
	} {
		out, err := run(t, cfg, "content", "create", strings.ToUpper(tc.id), "--id", tc.id, "--type", "News Item")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(out, "/plone/"+tc.id+" "))

		out, err = run(t, cfg, "content", "publish", "/plone/"+tc.id, "--effective", tc.effective)
		require.NoError(t, err)
		require.Equal(t, "/plone/"+tc.id+" published\n", out)
	}

	out, err := run(t, cfg, "registry", "set", "canonical_domain", "https://example.org/")
	require.NoError(t, err)
	require.Equal(t, "canonical_domain = https://example.org\n", out)

	out, err = run(t, cfg, "update-canonical-url", "--old-domain", "http://example.org", "--published-before", "2017-01-01", "--json")
	require.NoError(t, err)
	var res canonical.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 2, res.Updated)
	require.Equal(t, 1, res.AfterCutoff)

	out, err = run(t, cfg, "update-canonical-url", "--old-domain", "http://example.org", "--published-before", "2017-01-01")
	require.NoError(t, err)
	require.Contains(t, out, "updated=0 unchanged=2 skipped=0 after_cutoff=1")

	out, err = run(t, cfg, "content", "list", "--state", "published", "--json")
	require.NoError(t, err)
	var items []content.Item
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 3)
	pinned := map[string]string{}
	for _, item := range items {
		if item.CanonicalURL != nil {
			pinned[item.ID] = *item.CanonicalURL
		}
	}
	require.Equal(t, map[string]string{
		"foo": "http://example.org/plone/foo",
		"bar": "http://example.org/plone/bar",
	}, pinned)

	out, err = run(t, cfg, "content", "list", "--before", "2016-01-01", "--type", "News Item", "--json")
	require.NoError(t, err)
	items = nil
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	require.Equal(t, "foo", items[0].ID)

	out, err = run(t, cfg, "content", "list", "--type", "Document", "--json")
	require.NoError(t, err)
	items = nil
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Empty(t, items)

	_, err = run(t, cfg, "content", "list", "--before", "yesterday")
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))

	out, err = run(t, cfg, "content", "list")
	require.NoError(t, err)
	require.Contains(t, out, "CANONICAL URL")
	require.Contains(t, out, "http://example.org/plone/bar")
}

func TestResolvePath(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "resolve-path", "/plone/", "/plone/foo")
	require.NoError(t, err)
	require.Equal(t, "plone/foo\n", out)

	out, err = run(t, cfg, "resolve-path", "/VirtualHostBase/http/bar.com/plone/VirtualHostRoot/", "/plone/foo", "--live-domain", "https://example.org")
	require.NoError(t, err)
	require.Equal(t, "foo\nhttps://example.org/foo\n", out)

	_, err = run(t, cfg, "resolve-path", "/VirtualHostBase/", "/plone/foo")
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestRegistryGet(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "registry", "get")
	require.NoError(t, err)
	require.Contains(t, out, "enabled_portal_types = Document,Event,News Item\n")
	require.Contains(t, out, "plugins_enabled = facebook,twitter\n")

	_, err = run(t, cfg, "registry", "get", "nope")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestUpdateCanonicalURLValidation(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, cfg, "update-canonical-url", "--old-domain", "example.org", "--published-before", "2017-01-01")
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = run(t, cfg, "content", "list", "--state", "archived")
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "sociallike.yaml")
	out, err := run(t, path, "init")
	require.NoError(t, err)
	require.Contains(t, out, path)
	require.FileExists(t, path)

	_, err = run(t, path, "init")
	require.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))

	_, err = run(t, path, "init", "--force")
	require.NoError(t, err)
}
