package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// rawUploader is the part of the Cloudinary upload API the archive uses.
type rawUploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryArchive stores CSV files as raw Cloudinary assets.
type CloudinaryArchive struct {
	upload rawUploader
	folder string
}

// NewCloudinaryArchive creates a CloudinaryArchive writing into folder.
func NewCloudinaryArchive(cld *cloudinary.Cloudinary, folder string) *CloudinaryArchive {
	return &CloudinaryArchive{upload: &cld.Upload, folder: folder}
}

// Store uploads content under the file's base name and returns the secure URL.
func (a *CloudinaryArchive) Store(ctx context.Context, filename string, content []byte) (string, error) {
	publicID := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	params := uploader.UploadParams{
		Folder:       a.folder,
		PublicID:     publicID,
		ResourceType: "raw",
	}
	result, err := a.upload.Upload(ctx, bytes.NewReader(content), params)
	if err != nil {
		return "", fmt.Errorf("CloudinaryArchive: failed to upload %s: %w", filename, err)
	}
	if result == nil || result.SecureURL == "" {
		return "", fmt.Errorf("CloudinaryArchive: no URL returned for %s", filename)
	}
	return result.SecureURL, nil
}
