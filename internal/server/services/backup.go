package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
	sc "github.com/dmitrijs2005/gophnotes/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectUploader is the part of *s3.Client used for backups.
type ObjectUploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NoteLister provides the ordered collection to back up.
type NoteLister interface {
	List(ctx context.Context, ownerID string) ([]notes.Note, error)
}

// BackupService exports an owner's notes as a JSON object in S3-compatible
// storage.
type BackupService struct {
	notes    NoteLister
	uploader ObjectUploader
	bucket   string
	now      func() time.Time
}

func NewBackupService(l NoteLister, u ObjectUploader, bucket string) *BackupService {
	return &BackupService{notes: l, uploader: u, bucket: bucket, now: time.Now}
}

// NewS3Uploader builds an S3 client from the server configuration. Path-style
// addressing keeps MinIO and other S3-compatible endpoints working.
func NewS3Uploader(ctx context.Context, cfg *sc.Config) (*s3.Client, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// Backup writes the owner's current collection and returns the object key
// and the number of notes exported.
func (b *BackupService) Backup(ctx context.Context, ownerID string) (string, int, error) {
	if ownerID == "" {
		return "", 0, common.ErrIdentityRequired
	}

	list, err := b.notes.List(ctx, ownerID)
	if err != nil {
		return "", 0, err
	}

	doc := notes.NewBackup(ownerID, list, b.now())
	data, err := doc.Encode()
	if err != nil {
		return "", 0, err
	}

	key := doc.Key()
	_, err = b.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", 0, fmt.Errorf("upload backup: %w", err)
	}

	return key, len(list), nil
}
