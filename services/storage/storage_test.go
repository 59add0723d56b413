package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	params  uploader.UploadParams
	content string
	result  *uploader.UploadResult
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	if r, ok := file.(io.Reader); ok {
		b, _ := io.ReadAll(r)
		f.content = string(b)
	}
	return f.result, f.err
}

func TestCloudinaryArchive_Store(t *testing.T) {
	up := &fakeUploader{result: &uploader.UploadResult{SecureURL: "https://res.example/raw/n.csv"}}
	a := &CloudinaryArchive{upload: up, folder: "series-notifications"}

	url, err := a.Store(context.Background(), "notificacion_LOT-1_20260504.csv", []byte("IMEI\n"))

	require.NoError(t, err)
	assert.Equal(t, "https://res.example/raw/n.csv", url)
	assert.Equal(t, "raw", up.params.ResourceType)
	assert.Equal(t, "series-notifications", up.params.Folder)
	assert.Equal(t, "notificacion_LOT-1_20260504", up.params.PublicID)
	assert.Equal(t, "IMEI\n", up.content)
}

func TestCloudinaryArchive_UploadError(t *testing.T) {
	a := &CloudinaryArchive{upload: &fakeUploader{err: errors.New("quota")}}

	_, err := a.Store(context.Background(), "x.csv", nil)

	assert.ErrorContains(t, err, "quota")
}

func TestNopArchive(t *testing.T) {
	url, err := NopArchive{}.Store(context.Background(), "x.csv", []byte("a"))
	assert.NoError(t, err)
	assert.Empty(t, url)
}
