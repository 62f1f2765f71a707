package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestTFallbacks(t *testing.T) {
	assert.Equal(t, "Saved", T("en", "saved"))

	// Unknown language falls back to English.
	assert.Equal(t, "Saved", T("xx", "saved"))

	// Unknown key falls back to the key itself.
	assert.Equal(t, "no_such_key", T("en", "no_such_key"))
}

func TestLoadCatalogs(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "bn.json", `{"saved": "সংরক্ষিত"}`)

	require.NoError(t, LoadCatalogs(dir))

	assert.Equal(t, "সংরক্ষিত", T("bn", "saved"))
	// Keys missing from the catalog still resolve through English.
	assert.Equal(t, "Deleted", T("bn", "deleted"))
}

func TestLoadCatalogsMissingDirIsFine(t *testing.T) {
	require.NoError(t, LoadCatalogs(filepath.Join(t.TempDir(), "nope")))
	assert.Equal(t, "Saved", T("en", "saved"))
}

func TestLoadCatalogsRejectsBadTag(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "not a tag.json", `{}`)
	assert.Error(t, LoadCatalogs(dir))
}

func TestPick(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "bn.json", `{"saved": "সংরক্ষিত"}`)
	require.NoError(t, LoadCatalogs(dir))

	assert.Equal(t, "bn", Pick("bn"))
	assert.Equal(t, "bn", Pick("bn-BD,bn;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", Pick("en-US,en;q=0.9"))
	assert.Equal(t, "en", Pick(""))
	assert.Equal(t, "en", Pick("fr-FR"))
}
