package scramcfg_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/scramauth/mongoscram/pkg/adapter/scramcfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleConfig_Marshal() {
	c := &scramcfg.Config{
		Source:        "admin",
		MinIterations: 15000,
		CacheCapacity: 200,
	}
	b, err := c.Marshal()
	fmt.Println(err)
	fmt.Print(string(b))
	// Output:
	// <nil>
	// source: admin
	// minIterations: 15000
	// cacheCapacity: 200
}

func TestDefaultConfig(t *testing.T) {
	c := scramcfg.Default()
	assert.Equal(t, "admin", c.Source)
	assert.Equal(t, 4096, c.MinIterations)
	assert.Equal(t, 200, c.CacheCapacity)
}

func TestLoadFillsDefaultsForZeroFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scramauth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("minIterations: 20000\n"), 0o600))

	c, err := scramcfg.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "admin", c.Source)
	assert.Equal(t, 20000, c.MinIterations)
	assert.Equal(t, 200, c.CacheCapacity)
}

func TestLoadRaisesWeakMinIterationsFloor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scramauth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("minIterations: 1\n"), 0o600))

	c, err := scramcfg.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4096, c.MinIterations)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := scramcfg.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
