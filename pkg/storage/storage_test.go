package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shashiranjanraj/commandes/config"
	"github.com/shashiranjanraj/commandes/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskLifecycle(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	disk, err := storage.NewLocal(root, "/uploads/")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "commandes/a.png", strings.NewReader("png"), "image/png"))
	assert.True(t, disk.Exists(ctx, "commandes/a.png"))
	assert.FileExists(t, filepath.Join(root, "commandes", "a.png"))

	data, err := disk.Get(ctx, "commandes/a.png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "/uploads/commandes/a.png", disk.URL("commandes/a.png"))

	require.NoError(t, disk.Delete(ctx, "commandes/a.png"))
	assert.False(t, disk.Exists(ctx, "commandes/a.png"))
	assert.NoError(t, disk.Delete(ctx, "commandes/a.png"), "deleting a missing file is not an error")
}

func TestLocalDiskStaysUnderRoot(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	root := filepath.Join(parent, "uploads")
	disk, err := storage.NewLocal(root, "/uploads")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "../../escape.txt", strings.NewReader("x"), ""))
	_, err = os.Stat(filepath.Join(parent, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(root, "escape.txt"))

	assert.ErrorIs(t, disk.Put(ctx, "/", strings.NewReader("x"), ""), storage.ErrInvalidPath)
}

func TestNewSelectsDriver(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{"UPLOAD_DIR": t.TempDir()})
	require.NoError(t, err)
	disk, err := storage.New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalDisk{}, disk)

	cfg, err = config.FromMap(map[string]string{"STORAGE_DISK": "s3"})
	require.NoError(t, err)
	_, err = storage.New(context.Background(), cfg)
	assert.ErrorContains(t, err, "S3_BUCKET")

	cfg, err = config.FromMap(map[string]string{"STORAGE_DISK": "ftp"})
	require.NoError(t, err)
	_, err = storage.New(context.Background(), cfg)
	assert.Error(t, err)
}
