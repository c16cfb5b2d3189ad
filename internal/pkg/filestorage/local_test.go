package filestorage

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewStorage(fs, "exports", "http://localhost:8080/exports/")
	require.NoError(t, err)

	info, err := store.Save([]byte("png-bytes"), "png", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(info.Name, ".png"))
	assert.Equal(t, "http://localhost:8080/exports/"+info.Name, info.URL)
	assert.EqualValues(t, 9, info.FileSize)

	rc, err := store.Open(info.Name)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))

	require.NoError(t, store.Delete(info.Name))
	_, err = store.Open(info.Name)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	store, err := NewStorage(afero.NewMemMapFs(), "exports", "")
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../secret", "a/b.png"} {
		_, err := store.Open(name)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest, name)
	}
}
