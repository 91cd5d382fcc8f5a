package service_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

func TestDecodeDataURI(t *testing.T) {
	data, contentType, err := service.DecodeDataURI(pngDataURI())
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, pngBytes, data)

	tests := []struct {
		name  string
		value string
	}{
		{"not a data uri", "https://example.com/a.png"},
		{"unsupported type", "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte("<svg/>"))},
		{"bad base64", "data:image/png;base64,***"},
		{"content mismatch", "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(pngBytes)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.DecodeDataURI(tt.value)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "image", verr.Field)
		})
	}
}

func TestSaveDataURIToLocalStore(t *testing.T) {
	dir := t.TempDir()
	svc := service.NewImageService(service.NewLocalStore(dir, "/media/"))

	url, err := svc.SaveDataURI(context.Background(), pngDataURI())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/media/recipes/images/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/media/")))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}
