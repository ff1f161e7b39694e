package container

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"fjacquet/finance-analyzer/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.Server.Port = 3000
	cfg.Server.CORSOrigin = "*"
	cfg.Database.Path = filepath.Join(dir, "data", "test.db")
	cfg.Upload.Dir = filepath.Join(dir, "uploads")
	cfg.Upload.MaxSize = 1 << 20
	cfg.Upload.JobTTLMinutes = 60
	cfg.Categories.File = filepath.Join(dir, "missing-categories.yaml")
	cfg.CSV.Delimiter = ","
	return cfg
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(t.Context(), nil)
	assert.EqualError(t, err, "configuration cannot be nil")
}

func TestNewContainer_WithoutAI(t *testing.T) {
	cfg := testConfig(t)

	c, err := NewContainer(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	assert.Same(t, cfg, c.GetConfig())
	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetUploads())
	assert.NotNil(t, c.GetServer())
	assert.False(t, c.AIEnabled())
	assert.Equal(t, []string{"Chase"}, c.GetRegistry().SupportedBanks())

	cats, err := c.GetDB().ListCategories(t.Context())
	require.NoError(t, err)
	assert.NotEmpty(t, cats, "default categories are seeded")

	assert.DirExists(t, cfg.Upload.Dir)
}

func TestNewContainer_ReopenDoesNotReseed(t *testing.T) {
	cfg := testConfig(t)

	c, err := NewContainer(t.Context(), cfg)
	require.NoError(t, err)
	first, err := c.GetDB().ListCategories(t.Context())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = NewContainer(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	second, err := c.GetDB().ListCategories(t.Context())
	require.NoError(t, err)
	assert.Len(t, second, len(first))
}

func TestContainer_ServesHealth(t *testing.T) {
	c, err := NewContainer(t.Context(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	rec := httptest.NewRecorder()
	c.GetServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContainer_Maintain(t *testing.T) {
	c, err := NewContainer(t.Context(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.NotPanics(t, func() { c.Maintain(t.Context()) })
	assert.Equal(t, 0, c.GetUploads().Jobs().Len())
}
