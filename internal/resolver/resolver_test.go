package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURLAbsolute(t *testing.T) {
	assert.Equal(t, "https://x.test/a.css", ResolveURL("https://x.test/a.css", "https://y.test"))
}

func TestResolveURLProtocolRelative(t *testing.T) {
	assert.Equal(t, "https://host/path", ResolveURL("//host/path", "https://x"))
}

func TestResolveURLRelativeJoin(t *testing.T) {
	assert.Equal(t, "https://x/y/foo.css", ResolveURL("foo.css", "https://x/y/"))
}

func TestResolveURLNoBase(t *testing.T) {
	assert.Equal(t, "styles.css", ResolveURL("styles.css", ""))
}

func TestResolveURLProtocolRelativeNoBase(t *testing.T) {
	assert.Equal(t, "//cdn.example/a.css", ResolveURL("//cdn.example/a.css", ""))
}

func TestRetrieveFromPathMissing(t *testing.T) {
	d := NewDefault()
	_, err := d.RetrieveFromPath(filepath.Join(t.TempDir(), "missing.css"))
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, KindMissingStylesheet, rerr.Kind)
}

func TestRetrieveFromPathOK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(path, []byte("h1{color:red}"), 0o644))

	d := NewDefault()
	body, err := d.RetrieveFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "h1{color:red}", body)
}
