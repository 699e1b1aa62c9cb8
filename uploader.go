package contacts

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	goerrors "github.com/goliatone/go-errors"
)

// S3Config holds what we need to talk to an S3 compatible store,
// MinIO included.
type S3Config struct {
	Region       string
	Bucket       string
	AccessKey    string `json:"-"`
	SecretKey    string `json:"-"`
	BaseEndpoint string
	PublicURL    string
}

// S3AvatarStore uploads avatar images and returns their public URL
type S3AvatarStore struct {
	client *s3.Client
	cfg    S3Config
}

var _ AvatarStore = (*S3AvatarStore)(nil)

func NewS3AvatarStore(ctx context.Context, cfg S3Config) (*S3AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load S3 configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3AvatarStore{client: client, cfg: cfg}, nil
}

func (s *S3AvatarStore) Put(ctx context.Context, filename, contentType string, body []byte) (string, error) {
	key := "avatars/" + filename

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "avatar upload failed")
	}

	return s.publicURL(key), nil
}

func (s *S3AvatarStore) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.PublicURL, "/"), key)
	}

	if s.cfg.BaseEndpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.BaseEndpoint, "/"), s.cfg.Bucket, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
