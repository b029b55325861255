package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatchingMetadataProviderLoadsManifestsOnStartup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := `
classes:
  - name: demo.Root
    is_concrete: true
    interfaces: ["demo.Marker"]
    location: demo.jar
  - name: demo.Leaf
    is_concrete: true
    super_class_name: demo.Root
    location: demo.jar
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644))

	p, err := NewWatchingMetadataProvider(dir, nil)
	require.NoError(t, err)
	defer p.Close()

	classes := p.Classes(context.Background())
	require.Len(t, classes, 2)

	root, ok := p.ClassByName(context.Background(), "demo.Root")
	require.True(t, ok)
	require.True(t, root.IsConcrete)
	require.Equal(t, []string{"demo.Marker"}, root.Interfaces)

	_, ok = p.ClassByName(context.Background(), "demo.Missing")
	require.False(t, ok)
}

func TestWatchingMetadataProviderIgnoresNonYAMLFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not yaml"), 0o644))

	p, err := NewWatchingMetadataProvider(dir, nil)
	require.NoError(t, err)
	defer p.Close()

	require.Empty(t, p.Classes(context.Background()))
}

func TestWatchingMetadataProviderRejectsMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := NewWatchingMetadataProvider(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	require.Error(t, err)
}
