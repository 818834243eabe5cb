// Package objectstore stages bulk-import files on an S3-compatible
// backend (MinIO in development). The platform glue uploads the spreadsheet
// through a presigned PUT; the import pipeline fetches it back by key.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"time"

	sc "github.com/clubops/pointsledger/internal/server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type Store struct {
	config *sc.Config
}

func NewStore(config *sc.Config) *Store {
	return &Store{config: config}
}

// StorageKey builds a fresh upload key, keeping the original filename as
// the last segment so the importer can pick a decoder from its extension.
func StorageKey(filename string) string {
	d := time.Now()
	return fmt.Sprintf("imports/%d/%d/%d/%v/%s", d.Year(), d.Month(), d.Day(), uuid.New(), filename)
}

func (s *Store) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Fetch streams the staged object at key. The caller closes the body.
func (s *Store) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.config.S3Bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("object fetch error: %w", err)
	}

	return out.Body, nil
}

// PresignedPutURL returns a storage key plus a URL the platform glue can
// PUT the upload to within 15 minutes.
func (s *Store) PresignedPutURL(ctx context.Context, filename string) (string, string, error) {
	client, err := s.client(ctx)
	if err != nil {
		return "", "", err
	}

	presignClient := s3.NewPresignClient(client)

	bucket := s.config.S3Bucket
	key := StorageKey(filename)

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}
