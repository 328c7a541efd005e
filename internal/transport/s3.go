package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/promptkeep/promptkeep/internal/common"
)

// S3Config holds the settings for an S3-compatible backup host.
// Endpoint is optional and allows MinIO-style deployments.
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Transport stores the backup as a single object in an S3-compatible
// bucket. The client is built lazily and dropped on authentication failures
// so the next call resolves credentials afresh.
type S3Transport struct {
	cfg S3Config

	mu     sync.Mutex
	client *s3.Client
}

func NewS3Transport(cfg S3Config) *S3Transport {
	return &S3Transport{cfg: cfg}
}

func (t *S3Transport) getClient(ctx context.Context) (*s3.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return t.client, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(t.cfg.Region),
	}
	if t.cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(t.cfg.AccessKeyID, t.cfg.SecretAccessKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %v", common.ErrTransport, err)
	}

	t.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if t.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(t.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return t.client, nil
}

// resetClient drops the cached client so the next call re-resolves
// credentials. Called on authentication failures.
func (t *S3Transport) resetClient() {
	t.mu.Lock()
	t.client = nil
	t.mu.Unlock()
}

func (t *S3Transport) Upload(ctx context.Context, data []byte) error {
	client, err := t.getClient(ctx)
	if err != nil {
		return err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.cfg.Bucket),
		Key:         aws.String(t.cfg.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return t.mapError("upload", err)
	}
	return nil
}

func (t *S3Transport) Download(ctx context.Context) ([]byte, error) {
	client, err := t.getClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.cfg.Bucket),
		Key:    aws.String(t.cfg.Key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, t.mapError("download", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read backup body: %v", common.ErrTransport, err)
	}
	return data, nil
}

func (t *S3Transport) mapError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch",
			"ExpiredToken", "TokenRefreshRequired":
			t.resetClient()
			return fmt.Errorf("%w: %s: %s", common.ErrAuthExpired, op, apiErr.ErrorCode())
		}
	}
	return fmt.Errorf("%w: %s: %v", common.ErrTransport, op, err)
}
