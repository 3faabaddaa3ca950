// Package mirror copies finalized artifacts to an S3-compatible bucket.
// The local upload root stays authoritative; a mirror failure never changes
// the outcome reported to the uploading client.
package mirror

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/privscan/internal/server/config"
	"github.com/dmitrijs2005/privscan/internal/server/storage"
)

// Mirror receives the name of an artifact that has just been committed.
type Mirror interface {
	Mirror(ctx context.Context, name string) error
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Mirror struct {
	client objectPutter
	store  storage.Store
	bucket string
	prefix string
}

// NewS3Mirror builds an S3 client from static credentials. A non-empty
// S3BaseEndpoint switches to path-style addressing against that endpoint
// (e.g. MinIO).
func NewS3Mirror(ctx context.Context, c *sc.Config, store storage.Store) (*S3Mirror, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3Mirror{client: client, store: store, bucket: c.S3Bucket, prefix: c.S3Prefix}, nil
}

// Key returns the object key used for an artifact name.
func (m *S3Mirror) Key(name string) string {
	return m.prefix + name
}

// Mirror streams the stored artifact to the bucket straight from disk.
func (m *S3Mirror) Mirror(ctx context.Context, name string) error {
	f, err := m.store.Open(name)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(m.Key(name)),
		Body:          f,
		ContentLength: aws.Int64(fi.Size()),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", m.Key(name), err)
	}
	return nil
}
