package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"reelctl/internal/config"
)

// PutObjectAPI is the slice of the S3 client the strategy needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectStore uploads to an S3-compatible bucket with a single PUT.
type ObjectStore struct {
	API    PutObjectAPI
	Bucket string
	Prefix string
	// PublicURL, when set, turns the object key into an absolute URL.
	PublicURL string
}

func (ObjectStore) Name() string    { return "objectstore" }
func (ObjectStore) MaxBytes() int64 { return MaxObjectStoreBytes }

func (s ObjectStore) Upload(ctx context.Context, file File) (string, error) {
	key := path.Join(strings.Trim(s.Prefix, "/"), file.Name)
	body, err := file.Open()
	if err != nil {
		return "", stageErr(s.Name(), StageRead, err)
	}
	defer body.Close()

	_, err = s.API.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(file.Size),
		ContentType:   aws.String(file.ContentType),
	})
	if err != nil {
		return "", stageErr(s.Name(), StagePutObject, err)
	}
	if s.PublicURL != "" {
		return strings.TrimRight(s.PublicURL, "/") + "/" + key, nil
	}
	return key, nil
}

// NewS3Client builds an S3 client for the configured endpoint. Static keys
// are used when present, otherwise the default credential chain applies.
func NewS3Client(ctx context.Context, cfg config.ObjectStore) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load object store config: %w", err)
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
