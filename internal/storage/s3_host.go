package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"auction-dashboard/internal/config"
	"auction-dashboard/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of *s3.Client the image host uses
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Host stores submission images in a bucket and returns their public URLs
type S3Host struct {
	client  PutObjectAPI
	bucket  string
	baseURL string
}

// NewS3Host creates an S3Host from a client
func NewS3Host(client PutObjectAPI, bucket, baseURL string) *S3Host {
	return &S3Host{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

// NewS3HostFromConfig builds the AWS client from static credentials in cfg
func NewS3HostFromConfig(ctx context.Context, cfg *config.Config) (*S3Host, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(ctx,
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	baseURL := cfg.ImageBaseS3URL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.AwsS3Bucket, cfg.AwsRegion)
	}
	return NewS3Host(s3.NewFromConfig(awsCfg), cfg.AwsS3Bucket, baseURL), nil
}

// ObjectKey returns the bucket key for an image owned by a seller
func ObjectKey(owner, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "image"
	}
	return fmt.Sprintf("auctions/%s/%s_%s", owner, utils.GenerateID(), name)
}

// Upload stores img and returns the URL it is served from
func (h *S3Host) Upload(ctx context.Context, owner string, img Image) (string, error) {
	key := ObjectKey(owner, img.Filename)
	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	utils.Debug("storage: image uploaded", map[string]any{"key": key, "bytes": len(img.Data)})
	return h.baseURL + "/" + key, nil
}

// MemoryHost keeps images in process. Used when no bucket is configured.
type MemoryHost struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]Image
}

// NewMemoryHost creates an in-process image host
func NewMemoryHost(baseURL string) *MemoryHost {
	return &MemoryHost{baseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string]Image)}
}

// Upload stores img under a generated key
func (h *MemoryHost) Upload(_ context.Context, owner string, img Image) (string, error) {
	key := ObjectKey(owner, img.Filename)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.objects[key] = img
	return h.baseURL + "/" + key, nil
}

// Len returns the number of stored images
func (h *MemoryHost) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.objects)
}
