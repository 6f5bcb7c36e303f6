// Uploads JSON snapshots of the record store to an S3 compatible bucket.

// Package backup periodically copies the record store to object storage.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage"
)

// Snapshot is the uploaded object.
type Snapshot struct {
	Document *record.Document      `json:"document"`
	Coaching *record.CoachingTable `json:"coaching"`
	TakenAt  time.Time             `json:"takenAt"`
}

// Take reads a consistent copy of the store.
func Take(ctx context.Context, repo storage.Repository, now time.Time) (*Snapshot, error) {
	doc, err := repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	coaching, err := repo.Coaching(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read coaching table: %w", err)
	}
	return &Snapshot{Document: doc, Coaching: coaching, TakenAt: now.UTC()}, nil
}

// Key returns the object key of a snapshot taken at t.
func Key(prefix string, t time.Time) string {
	return path.Join(prefix, "data-"+t.UTC().Format("20060102-150405")+".json")
}

// putter is the subset of *s3.Client used by Uploader.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes snapshots to one bucket.
type Uploader struct {
	client putter
	bucket string
	prefix string
}

// NewUploader creates an S3 client for cfg. Without an explicit endpoint, a
// configured account id selects its Cloudflare R2 endpoint.
func NewUploader(ctx context.Context, cfg *storage.BackupConfig) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, errors.New("backup bucket is not configured")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	endpoint := cfg.Endpoint
	if endpoint == "" && cfg.AccountID != "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &Uploader{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Upload stores snap and returns its key.
func (u *Uploader) Upload(ctx context.Context, snap *Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	key := Key(u.prefix, snap.TakenAt)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}
