package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownload(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("CardNo,Name\n1,A"), SourceFileKey("src-1", "employees.csv"))
	require.NoError(t, err)
	assert.Equal(t, "sources/src-1/employees.csv", key)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "CardNo,Name\n1,A", string(body))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Download(ctx, key)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_TraversalStaysInsideBase(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("x"), "../../escape.csv")
	require.NoError(t, err)
	assert.Equal(t, "escape.csv", key)
}

func TestSourceFileKey_StripsDirectories(t *testing.T) {
	assert.Equal(t, "sources/abc/data.csv", SourceFileKey("abc", "..\\..\\data.csv"))
	assert.Equal(t, "sources/abc/data.csv", SourceFileKey("abc", "/etc/data.csv"))
}

func TestHasAllowedExt(t *testing.T) {
	assert.True(t, HasAllowedExt("A.XLSX", AllowedSourceExts))
	assert.False(t, HasAllowedExt("run.exe", AllowedSourceExts))
}
