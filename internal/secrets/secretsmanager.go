package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newSecretsClientFromConfig = func(cfg aws.Config, optFns ...func(*secretsmanager.Options)) *secretsmanager.Client {
		return secretsmanager.NewFromConfig(cfg, optFns...)
	}

	getSecretValue = func(c *secretsmanager.Client, ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
		return c.GetSecretValue(ctx, in, optFns...)
	}

	putSecretValue = func(c *secretsmanager.Client, ctx context.Context, in *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
		return c.PutSecretValue(ctx, in, optFns...)
	}
)

// ManagerStore is a Store backed by AWS Secrets Manager.
type ManagerStore struct {
	region    string
	accessKey string
	secretKey string
	endpoint  string
}

// Options configures a ManagerStore. AccessKey/SecretKey are optional; when
// empty the default AWS credential chain is used.
type Options struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

func NewManagerStore(opts Options) *ManagerStore {
	return &ManagerStore{
		region:    opts.Region,
		accessKey: opts.AccessKey,
		secretKey: opts.SecretKey,
		endpoint:  opts.Endpoint,
	}
}

func (s *ManagerStore) client(ctx context.Context) (*secretsmanager.Client, error) {
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

	client := newSecretsClientFromConfig(cfg, func(o *secretsmanager.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
		}
	})

	return client, nil
}

func (s *ManagerStore) Get(ctx context.Context, id string) (string, error) {
	client, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	out, err := getSecretValue(client, ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", id, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", id)
	}

	return *out.SecretString, nil
}

func (s *ManagerStore) Put(ctx context.Context, id string, value string) error {
	client, err := s.client(ctx)
	if err != nil {
		return err
	}

	_, err = putSecretValue(client, ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(id),
		SecretString: aws.String(value),
	})
	if err != nil {
		return fmt.Errorf("put secret %s: %w", id, err)
	}

	return nil
}
