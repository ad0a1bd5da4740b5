package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvPrefersProcessEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RECEPTION_A=from-file\nRECEPTION_B=base\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("RECEPTION_B=from-test\n"), 0644))

	t.Setenv("RECEPTION_A", "from-process")
	os.Unsetenv("RECEPTION_B")
	defer os.Unsetenv("RECEPTION_B")

	require.NoError(t, LoadEnv("test"))
	assert.Equal(t, "from-process", GetEnv("RECEPTION_A"))
	assert.Equal(t, "from-test", GetEnv("RECEPTION_B"))
}

func TestLoadEnvMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assert.Error(t, LoadEnv(""))
}

func TestGetIntEnv(t *testing.T) {
	t.Setenv("RECEPTION_INT", "42")

	assert.Equal(t, int64(42), GetIntEnv("RECEPTION_INT"))
	assert.Equal(t, int64(0), GetIntEnv("RECEPTION_NOT_SET"))
}

func TestRandText(t *testing.T) {
	a := RandText(12)
	b := RandText(12)
	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
}

func TestGlobalCache(t *testing.T) {
	InitGlobalCache(2, time.Minute)
	c := GlobalCache()
	c.Add("a", []byte("1"))
	c.Add("b", []byte("2"))
	c.Add("c", []byte("3"))

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	v, ok := c.Get("c")
	require.True(t, ok)
	assert.Equal(t, []byte("3"), v)
}
