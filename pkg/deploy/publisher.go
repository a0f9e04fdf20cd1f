package deploy

import (
	"context"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/flexireact/flexi/internal/config"
	"github.com/flexireact/flexi/internal/errors"
)

// S3API is the subset of the S3 client the publisher uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Result contains the outcome of a publish run.
type Result struct {
	// Uploaded is the number of files uploaded.
	Uploaded int

	// Deleted is the number of stale remote objects removed.
	Deleted int

	// Bytes is the total number of bytes uploaded.
	Bytes int64

	// Duration is how long the publish took.
	Duration time.Duration
}

// Config configures a Publisher.
type Config struct {
	// Bucket is the target S3 bucket. Required.
	Bucket string

	// Prefix is an optional key prefix inside the bucket.
	Prefix string

	// Prune deletes remote objects under the prefix that have no local
	// counterpart.
	Prune bool

	// Logger receives per-file events. Defaults to slog.Default.
	Logger *slog.Logger
}

// Publisher uploads a directory tree to S3.
type Publisher struct {
	client S3API
	cfg    Config
	logger *slog.Logger
}

// New creates a publisher with the given client. The client is typically
// s3.NewFromConfig, but anything satisfying S3API works.
func New(client S3API, cfg Config) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("F501").
			WithDetail("No bucket configured").
			WithSuggestion(`Set "deploy": {"bucket": "..."} in flexi.json`)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, cfg: cfg, logger: logger}, nil
}

// NewFromProject builds a publisher from project configuration, loading
// AWS credentials from the environment the way the AWS CLI does.
func NewFromProject(ctx context.Context, cfg *config.Config) (*Publisher, error) {
	if cfg.Deploy.Bucket == "" {
		return nil, errors.New("F501").
			WithDetail("No bucket configured").
			WithSuggestion(`Set "deploy": {"bucket": "..."} in flexi.json`)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Deploy.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Deploy.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("F501").Wrap(err)
	}

	return New(s3.NewFromConfig(awsCfg), Config{
		Bucket: cfg.Deploy.Bucket,
		Prefix: cfg.Deploy.Prefix,
		Prune:  cfg.Deploy.Prune,
	})
}

// Publish uploads every file under dir. With Prune set, remote objects
// under the prefix that were not part of this upload are deleted after
// all uploads succeed, so a failed run never removes live content.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	uploaded := make(map[string]bool)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := p.keyFor(relPath)

		if err := p.uploadFile(ctx, path, key); err != nil {
			return err
		}

		uploaded[key] = true
		result.Uploaded++
		result.Bytes += info.Size()
		return nil
	})
	if err != nil {
		if ferr, ok := err.(*errors.Error); ok {
			return nil, ferr
		}
		return nil, errors.New("F500").Wrap(err)
	}

	if p.cfg.Prune {
		deleted, err := p.prune(ctx, uploaded)
		if err != nil {
			return nil, err
		}
		result.Deleted = deleted
	}

	result.Duration = time.Since(start)
	return result, nil
}

// keyFor maps a relative file path to its object key.
func (p *Publisher) keyFor(relPath string) string {
	key := filepath.ToSlash(relPath)
	if p.cfg.Prefix != "" {
		key = strings.TrimSuffix(p.cfg.Prefix, "/") + "/" + key
	}
	return key
}

func (p *Publisher) uploadFile(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.New("F500").WithFile(path).Wrap(err)
	}
	defer f.Close()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentTypeFor(path)),
	})
	if err != nil {
		return errors.New("F500").
			WithDetailf("Uploading %s to s3://%s/%s", path, p.cfg.Bucket, key).
			Wrap(err)
	}

	p.logger.Debug("uploaded", "key", key)
	return nil
}

// prune removes remote objects under the prefix that were not uploaded.
// The list prefix carries a trailing slash so a sibling prefix ("site2/"
// next to "site/") is never swept up.
func (p *Publisher) prune(ctx context.Context, uploaded map[string]bool) (int, error) {
	listPrefix := ""
	if p.cfg.Prefix != "" {
		listPrefix = strings.TrimSuffix(p.cfg.Prefix, "/") + "/"
	}
	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.cfg.Bucket),
		Prefix: aws.String(listPrefix),
	})

	var stale []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, errors.New("F500").Wrap(err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			if !uploaded[*obj.Key] {
				stale = append(stale, *obj.Key)
			}
		}
	}

	for _, key := range stale {
		_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(p.cfg.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return 0, errors.New("F500").
				WithDetailf("Deleting stale object s3://%s/%s", p.cfg.Bucket, key).
				Wrap(err)
		}
		p.logger.Debug("pruned", "key", key)
	}

	return len(stale), nil
}

// contentTypeFor resolves a content type from the file extension.
// Unknown extensions fall back to application/octet-stream.
func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
