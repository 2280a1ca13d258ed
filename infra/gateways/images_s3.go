package gateways

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/giovaniif/instrument-closet/protocols"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config selects the bucket. Empty keys fall back to the default AWS
// credential chain.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// ImageStoreS3 writes instrument images to a single bucket, AWS or MinIO.
type ImageStoreS3 struct {
	client objectPutter
	cfg    S3Config
}

func NewImageStoreS3(ctx context.Context, cfg S3Config) (*ImageStoreS3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &ImageStoreS3{client: client, cfg: cfg}, nil
}

func (s *ImageStoreS3) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

func (s *ImageStoreS3) objectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if s.cfg.Endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, escaped)
	}
	endpoint := strings.TrimSuffix(s.cfg.Endpoint, "/")
	if s.cfg.PathStyle {
		return endpoint + "/" + s.cfg.Bucket + "/" + escaped
	}
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		u.Host = s.cfg.Bucket + "." + u.Host
		return u.String() + "/" + escaped
	}
	return endpoint + "/" + s.cfg.Bucket + "/" + escaped
}

var _ protocols.ImageStore = (*ImageStoreS3)(nil)
