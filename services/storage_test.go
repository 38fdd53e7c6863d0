package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useLocalStorage swaps the global provider for a temp directory for the test's lifetime
func useLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	previous := Storage
	local := NewLocalStorage(t.TempDir())
	Storage = local
	t.Cleanup(func() { Storage = previous })
	return local
}

func storeTestMedia(t *testing.T, kind string) string {
	t.Helper()
	key := GenerateMediaKey(kind, "photo.png")
	_, err := Storage.UploadReader(context.Background(), strings.NewReader("image"), key, "image/png", 5)
	require.NoError(t, err)
	return key
}

func mediaExists(t *testing.T, local *LocalStorage, key string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(local.baseDir, key))
	return err == nil
}

func TestLocalStorage(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "storage_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	content := "hello storage"
	key := "test/file.txt"
	contentType := "text/plain"
	size := int64(len(content))

	t.Run("UploadReader creates file", func(t *testing.T) {
		reader := strings.NewReader(content)
		result, err := storage.UploadReader(ctx, reader, key, contentType, size)
		assert.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, size, result.FileSize)

		// Verify file exists
		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.NoError(t, err)
	})

	t.Run("Get retrieves file content", func(t *testing.T) {
		reader, retrievedType, err := storage.Get(ctx, key)
		assert.NoError(t, err)
		defer reader.Close()

		got, _ := io.ReadAll(reader)
		assert.Equal(t, content, string(got))
		assert.Equal(t, "application/octet-stream", retrievedType) // not an image type
	})

	t.Run("Get detects image types from the extension", func(t *testing.T) {
		pngKey := "test/logo.png"
		storage.UploadReader(ctx, strings.NewReader("fake-png"), pngKey, "image/png", 8)

		_, retrievedType, err := storage.Get(ctx, pngKey)
		assert.NoError(t, err)
		assert.Equal(t, "image/png", retrievedType)

		jpgKey := "test/image.jpg"
		storage.UploadReader(ctx, strings.NewReader("fake-jpg"), jpgKey, "image/jpeg", 8)
		_, retrievedType, err = storage.Get(ctx, jpgKey)
		assert.NoError(t, err)
		assert.Equal(t, "image/jpeg", retrievedType)
	})

	t.Run("Delete removes file", func(t *testing.T) {
		err := storage.Delete(ctx, key)
		assert.NoError(t, err)

		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("URLs go through the media route", func(t *testing.T) {
		assert.Equal(t, "", storage.GetPublicURL("some/key"))

		previous := Storage
		Storage = storage
		defer func() { Storage = previous }()
		assert.Equal(t, "/media/some/key", MediaURL("some/key"))
		assert.Equal(t, "", MediaURL(""))
	})

	t.Run("Keys cannot escape the base directory", func(t *testing.T) {
		_, err := storage.UploadReader(ctx, strings.NewReader("x"), "../../outside.txt", "text/plain", 1)
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(tempDir, "outside.txt"))
		assert.NoError(t, err)

		assert.Error(t, storage.Delete(ctx, ".."))
	})
}

func TestGenerateMediaKey(t *testing.T) {
	key := GenerateMediaKey(MediaKindNews, "Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "news/"+time.Now().Format("2006/01")+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, GenerateMediaKey(MediaKindNews, "Photo.JPG"))
}

func TestR2PublicURL(t *testing.T) {
	r2 := &R2Storage{bucket: "test-bucket", publicURL: "https://media.example.org/"}
	assert.False(t, r2.IsConfigured())
	assert.Equal(t, "https://media.example.org/news/a.png", r2.GetPublicURL("news/a.png"))

	private := &R2Storage{bucket: "test-bucket"}
	assert.Equal(t, "", private.GetPublicURL("news/a.png"))
}

func TestReleaseMedia(t *testing.T) {
	local := useLocalStorage(t)

	t.Run("Replaced key is deleted", func(t *testing.T) {
		key := storeTestMedia(t, MediaKindService)
		ReleaseMedia(key, "services/other.png")
		assert.False(t, mediaExists(t, local, key))
	})

	t.Run("Unchanged key is kept", func(t *testing.T) {
		key := storeTestMedia(t, MediaKindNews)
		ReleaseMedia(key, key)
		assert.True(t, mediaExists(t, local, key))
	})

	t.Run("Keys outside media kinds are ignored", func(t *testing.T) {
		_, err := Storage.UploadReader(context.Background(), strings.NewReader("x"), "backups/db.sqlite", "application/octet-stream", 1)
		require.NoError(t, err)
		ReleaseMedia("backups/db.sqlite", "")
		assert.True(t, mediaExists(t, local, "backups/db.sqlite"))
	})

	t.Run("No provider", func(t *testing.T) {
		Storage = nil
		defer func() { Storage = local }()
		assert.NotPanics(t, func() { ReleaseMedia("services/a.png", "") })
	})
}
