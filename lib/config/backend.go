package config

import (
	"context"
	"fmt"

	"visitpermits/lib/clients"
	"visitpermits/lib/constants"
	"visitpermits/lib/storage"

	"github.com/sirupsen/logrus"
)

// NewBackend opens the storage backend selected by StorageBackend
func NewBackend(ctx context.Context, cfg Config, logger *logrus.Logger) (storage.Backend, error) {
	logger.WithFields(logrus.Fields{
		"operation": "NewBackend",
		"backend":   cfg.StorageBackend,
		"key":       cfg.StorageKey,
	}).Info("Opening storage backend")

	switch cfg.StorageBackend {
	case constants.BACKEND_MEMORY:
		return storage.NewMemoryBackend(nil), nil

	case constants.BACKEND_FILE:
		backend, err := storage.NewFileBackend(cfg.StorageDir, cfg.StorageKey)
		if err != nil {
			return nil, err
		}
		return backend, nil

	case constants.BACKEND_S3:
		if cfg.StorageBucket == "" {
			return nil, fmt.Errorf("%w: STORAGE_BUCKET is not set", storage.ErrUnavailable)
		}
		return &storage.S3Backend{
			S3:     clients.NewS3Service(cfg.IsLocal, cfg.Region),
			Bucket: cfg.StorageBucket,
			Key:    cfg.StoragePrefix + cfg.StorageKey + ".json",
			Logger: logger,
		}, nil

	case constants.BACKEND_POSTGRES:
		db := cfg.Database
		sqlDB, err := clients.NewPostgresSQLClient(db.Host, db.Port, db.Name, db.User, db.Password, db.SSLMode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
		}
		return &storage.PostgresBackend{
			DB:     sqlDB,
			Table:  constants.PERMIT_STORE_TABLE,
			Key:    cfg.StorageKey,
			Logger: logger,
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown storage backend %q", storage.ErrUnavailable, cfg.StorageBackend)
}
