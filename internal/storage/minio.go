package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/your-org/persona/internal/config"
)

// AvatarStore keeps persona avatar images in MinIO, one object per persona.
type AvatarStore struct {
	client *minio.Client
	bucket string
}

func NewAvatarStore(cfg config.MinIOConfig) (*AvatarStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &AvatarStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *AvatarStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

func avatarKey(personaID int64) string {
	return fmt.Sprintf("avatars/%d", personaID)
}

// Put stores the avatar for a persona, replacing any previous one.
func (s *AvatarStore) Put(ctx context.Context, personaID int64, data []byte, contentType string) error {
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, avatarKey(personaID), reader, int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put avatar %d: %w", personaID, err)
	}
	return nil
}

// Get returns the avatar bytes and content type for a persona.
func (s *AvatarStore) Get(ctx context.Context, personaID int64) ([]byte, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, avatarKey(personaID), minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get avatar %d: %w", personaID, err)
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat avatar %d: %w", personaID, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("read avatar %d: %w", personaID, err)
	}
	return data, stat.ContentType, nil
}

// Delete removes the avatar for a persona. Missing objects are not an error.
func (s *AvatarStore) Delete(ctx context.Context, personaID int64) error {
	return s.client.RemoveObject(ctx, s.bucket, avatarKey(personaID), minio.RemoveObjectOptions{})
}

// Ping checks MinIO connectivity.
func (s *AvatarStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}
