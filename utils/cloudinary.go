package utils

import (
	"fmt"

	"oseplatform/config"
	"oseplatform/services/storage"

	"github.com/cloudinary/cloudinary-go/v2"
)

// CSVArchive returns the Cloudinary-backed archive, or a no-op archive when no cloud name is configured.
func CSVArchive() (storage.Archive, error) {
	cfg := config.AppConfig
	if cfg.CloudinaryCloudName == "" {
		return storage.NopArchive{}, nil
	}
	if cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("utils.CSVArchive: failed to initialize Cloudinary: %w", err)
	}
	return storage.NewCloudinaryArchive(cld, cfg.CloudinaryFolder), nil
}
