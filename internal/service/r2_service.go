package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/postgen/configs"
)

// ObjectStore hosts generated media somewhere the social networks can fetch it from.
type ObjectStore interface {
	UploadToR2(ctx context.Context, key string, file []byte, filetype string) error
	PublicURL(key string) string
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type R2Service struct {
	config cfg.R2
	client objectPutter
}

func NewR2Service(ctx context.Context, r2 cfg.R2) (*R2Service, error) {
	client, err := newR2Client(ctx, r2)
	if err != nil {
		return nil, err
	}
	return &R2Service{config: r2, client: client}, nil
}

func newR2Client(ctx context.Context, r2 cfg.R2) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	}), nil
}

// Function to upload file to Cloudflare R2 Storage
func (r *R2Service) UploadToR2(ctx context.Context, key string, file []byte, filetype string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(filetype),
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to upload %s to R2: %w", key, err)
	}

	return nil
}

func (r *R2Service) PublicURL(key string) string {
	return strings.TrimRight(r.config.PublicURL, "/") + "/" + strings.TrimLeft(key, "/")
}
