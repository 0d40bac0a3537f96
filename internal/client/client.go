package client

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AnnotateError prefixes a non-nil error with the formatted message.
func AnnotateError(err *error, format string, args ...any) {
	if *err != nil {
		prefix := fmt.Sprintf(format, args...)

		*err = fmt.Errorf("%s: %w", prefix, *err)
	}
}

type Client struct {
	client *s3.Client
	name   string
	prefix string
}

// New creates a client for a bucket. The input is either a plain bucket name
// or a URL of the form "https://host[:port]/bucket[/prefix]" for
// S3-compatible services.
func New(cfg aws.Config, input string) (*Client, error) {
	result := &Client{
		name: input,
	}

	var config []func(*s3.Options)

	if u, err := url.Parse(input); err == nil && u.IsAbs() {
		switch u.Scheme {
		case "http", "https":
		default:
			return nil, fmt.Errorf("%w: unrecognized scheme %q: %s", os.ErrInvalid, u.Scheme, u.Redacted())
		}

		result.name = strings.TrimLeft(u.Path, "/")

		if before, after, found := strings.Cut(result.name, "/"); found {
			result.name = before
			result.prefix = after
		}

		endpoint := (&url.URL{
			Scheme: u.Scheme,
			Host:   u.Host,
		}).String()

		config = append(config, func(opts *s3.Options) {
			opts.Region = "us-east-1"
			opts.BaseEndpoint = aws.String(endpoint)
			opts.EndpointOptions.DisableHTTPS = u.Scheme == "http"
			opts.UsePathStyle = true
		})
	}

	if result.name == "" {
		return nil, fmt.Errorf("%w: missing bucket name: %s", os.ErrInvalid, input)
	}

	result.client = s3.NewFromConfig(cfg, config...)

	return result, nil
}

func (c *Client) Name() string {
	return c.name
}

// Key places a key below the prefix of a URL bucket name. Callers build the
// keys they pass to other methods with it.
func (c *Client) Key(key string) string {
	if c.prefix == "" {
		return key
	}

	return path.Join(c.prefix, key)
}

// ListObjects returns all objects below the prefix sorted by key. An empty
// bucket name selects the client's bucket.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string) ([]Object, error) {
	if bucket == "" {
		bucket = c.name
	}

	return ListObjects(ctx, c.client, bucket, prefix)
}

// UploadFile uploads a local file using multipart uploads where necessary.
func (c *Client) UploadFile(ctx context.Context, path, key string) (err error) {
	defer AnnotateError(&err, "upload %q to key %q", path, key)

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close()

	uploader := manager.NewUploader(c.client)

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.name),
		Key:    aws.String(key),
		Body:   f,
	})

	return err
}
