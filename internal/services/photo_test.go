package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoKey(t *testing.T) {
	key, err := PhotoKey("user-1", "image/JPEG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "meals/user-1/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	key, err = PhotoKey("user-1", "image/webp")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".webp"))

	_, err = PhotoKey("user-1", "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewPhotoStore_Disabled(t *testing.T) {
	_, err := NewPhotoStore(context.Background(), PhotoStoreConfig{Bucket: "meals"})
	assert.ErrorIs(t, err, ErrPhotoStorageDisabled)
}

func TestNewPhotoStore_PublicURL(t *testing.T) {
	store, err := NewPhotoStore(context.Background(), PhotoStoreConfig{
		AccountID:       "acct",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "meals",
		PublicURL:       "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", store.publicURL)

	store, err = NewPhotoStore(context.Background(), PhotoStoreConfig{AccountID: "acct", Bucket: "meals"})
	require.NoError(t, err)
	assert.Equal(t, "https://meals.r2.dev", store.publicURL)
}
