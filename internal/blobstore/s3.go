package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/mkarpovs/tubecast/internal/common"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Store is an ObjectStore backed by S3 or an S3-compatible service.
type S3Store struct {
	bucket    string
	region    string
	accessKey string
	secretKey string
	endpoint  string
}

// Options configures an S3Store. AccessKey/SecretKey are optional; when
// empty the default AWS credential chain is used.
type Options struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

func NewS3Store(opts Options) *S3Store {
	return &S3Store{
		bucket:    opts.Bucket,
		region:    opts.Region,
		accessKey: opts.AccessKey,
		secretKey: opts.SecretKey,
		endpoint:  opts.Endpoint,
	}
}

func (s *S3Store) client(ctx context.Context) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.region),
	}
	if s.accessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.accessKey, s.secretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
			o.UsePathStyle = true
		}
	})

	return client, nil
}

func (s *S3Store) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := headObject(client, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("head %s: %w", key, common.ErrNotFound)
		}
		return nil, fmt.Errorf("head %s: %w", key, err)
	}

	info := &ObjectInfo{Key: key}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		info.ContentType = *out.ContentType
	}
	return info, nil
}

func (s *S3Store) Download(ctx context.Context, key string, dst io.Writer) (int64, error) {
	client, err := s.client(ctx)
	if err != nil {
		return 0, err
	}

	out, err := getObject(client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return 0, fmt.Errorf("get %s: %w", key, common.ErrNotFound)
		}
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	n, err := io.Copy(dst, out.Body)
	if err != nil {
		return n, fmt.Errorf("read %s: %w", key, err)
	}
	return n, nil
}

func (s *S3Store) Upload(ctx context.Context, key string, contentType string, body io.Reader) error {
	client, err := s.client(ctx)
	if err != nil {
		return err
	}

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// isNoSuchKey matches the error shapes S3 uses for a missing object:
// NoSuchKey on GetObject and a bare 404 "NotFound" on HeadObject.
func isNoSuchKey(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
