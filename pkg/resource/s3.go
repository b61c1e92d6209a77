package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of the S3 API the loaders need.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config describes how to reach the bucket.
type S3Config struct {
	Region         string `env:"S3_REGION"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`         // Optional: for S3-compatible services
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"` // For S3-compatible services like MinIO
}

// S3Option configures NewS3Client.
type S3Option func(*s3Options)

type s3Options struct {
	httpClient      *http.Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3.Options)
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) S3Option {
	return func(o *s3Options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3.Options)) S3Option {
	return func(o *s3Options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// NewS3Client builds an S3 client from cfg. Static credentials are used when
// both key parts are set, otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg S3Config, opts ...S3Option) (*s3.Client, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidS3Config)
	}

	options := &s3Options{}
	for _, opt := range opts {
		opt(options)
	}

	awsOptions := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		awsOptions = append(awsOptions,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretKey,
				"",
			)),
		)
	}
	if options.httpClient != nil {
		awsOptions = append(awsOptions, config.WithHTTPClient(options.httpClient))
	}
	awsOptions = append(awsOptions, options.s3ConfigOptions...)

	awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidS3Config, err)
	}

	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
		for _, opt := range options.s3ClientOptions {
			opt(o)
		}
	}), nil
}

// S3Location is a bucket and key pair.
type S3Location struct {
	Bucket string
	Key    string
}

func (l S3Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseS3Location parses "s3://bucket/key".
func ParseS3Location(uri string) (S3Location, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return S3Location{}, fmt.Errorf("%w: %q lacks the s3:// scheme", ErrInvalidLocation, uri)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return S3Location{}, fmt.Errorf("%w: %q must be s3://bucket/key", ErrInvalidLocation, uri)
	}
	return S3Location{Bucket: bucket, Key: key}, nil
}

// S3Loader downloads the object at loc on every call.
func S3Loader(client S3Client, loc S3Location) Supplier[string] {
	return func(ctx context.Context) (string, error) {
		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(loc.Bucket),
			Key:    aws.String(loc.Key),
		})
		if err != nil {
			return "", classifyS3Error(err, loc)
		}
		return readBody(out.Body, loc)
	}
}

// CachingS3Loader downloads an object only when its ETag changed. Each request
// carries If-None-Match with the last seen ETag; a 304 answer returns the
// body cached from the previous download.
type CachingS3Loader struct {
	client S3Client
	loc    S3Location

	mu   sync.Mutex
	etag string
	body string
}

// NewCachingS3Loader returns a loader with an empty cache.
func NewCachingS3Loader(client S3Client, loc S3Location) *CachingS3Loader {
	return &CachingS3Loader{client: client, loc: loc}
}

// Load returns the object body, downloading it if it changed.
func (c *CachingS3Loader) Load(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	in := &s3.GetObjectInput{
		Bucket: aws.String(c.loc.Bucket),
		Key:    aws.String(c.loc.Key),
	}
	if c.etag != "" {
		in.IfNoneMatch = aws.String(c.etag)
	}

	out, err := c.client.GetObject(ctx, in)
	if err != nil {
		if c.etag != "" && isNotModified(err) {
			return c.body, nil
		}
		return "", classifyS3Error(err, c.loc)
	}

	body, err := readBody(out.Body, c.loc)
	if err != nil {
		return "", err
	}
	c.body = body
	c.etag = aws.ToString(out.ETag)
	return body, nil
}

// ETag returns the ETag of the cached body, empty before the first download.
func (c *CachingS3Loader) ETag() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.etag
}

// Supplier adapts Load to a Supplier.
func (c *CachingS3Loader) Supplier() Supplier[string] {
	return c.Load
}

func readBody(body io.ReadCloser, loc S3Location) (string, error) {
	if body == nil {
		return "", nil
	}
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrLoadFailed, loc, err)
	}
	return string(b), nil
}

func isNotModified(err error) bool {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotModified {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotModified"
}

// classifyS3Error converts S3 errors to package errors.
func classifyS3Error(err error, loc S3Location) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", ErrNotFound, loc)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); code {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: %s", ErrNotFound, loc)
		default:
			return fmt.Errorf("%w: %s (code: %s): %w", ErrLoadFailed, loc, code, err)
		}
	}

	return fmt.Errorf("%w: %s: %w", ErrLoadFailed, loc, err)
}
