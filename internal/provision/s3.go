package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// NCBIBucket is the AWS open-data bucket NCBI publishes BLAST databases to.
// Each release lives under a dated prefix named by the latest-dir object.
const NCBIBucket = "ncbi-blast-databases"

// latestDirKey names the object holding the newest dated prefix.
const latestDirKey = "latest-dir"

// S3Options configures an S3Source.
type S3Options struct {
	Bucket string
	Region string

	// Prefix is prepended to every key. Ignored for NCBIBucket, where the
	// latest dated prefix is used instead.
	Prefix string

	// Static credentials. Both empty means anonymous access, which is what
	// the public NCBI bucket expects.
	AccessKeyID     string
	SecretAccessKey string

	// Endpoint overrides the S3 endpoint, for S3-compatible mirrors.
	Endpoint string
}

// S3Source fetches archives from an S3 bucket. Against NCBIBucket only
// database keys (blast/db/...) resolve; the bucket holds no executables.
type S3Source struct {
	bucket     string
	prefix     string
	ncbi       bool
	client     *s3.Client
	downloader *manager.Downloader
}

// NewS3Source loads AWS configuration and creates the client.
func NewS3Source(ctx context.Context, opts S3Options) (*S3Source, error) {
	if opts.Bucket == "" {
		opts.Bucket = NCBIBucket
	}
	if opts.Region == "" {
		return nil, fmt.Errorf("s3 region required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	} else {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Source{
		bucket:     opts.Bucket,
		prefix:     strings.Trim(opts.Prefix, "/"),
		ncbi:       opts.Bucket == NCBIBucket,
		client:     client,
		downloader: manager.NewDownloader(client),
	}, nil
}

func (s *S3Source) Name() string {
	return "s3://" + s.bucket
}

// objectKey maps an FTP-layout key onto the bucket.
func (s *S3Source) objectKey(ctx context.Context, key string) (string, error) {
	if !s.ncbi {
		return path.Join(s.prefix, key), nil
	}

	name, ok := strings.CutPrefix(key, databasesPrefix+"/")
	if !ok {
		return "", fmt.Errorf("%w: %s holds only databases, not %s", ErrNotFound, s.Name(), key)
	}
	latest, err := s.latestDir(ctx)
	if err != nil {
		return "", err
	}
	return path.Join(latest, name), nil
}

// latestDir reads the dated prefix of the newest NCBI release.
func (s *S3Source) latestDir(ctx context.Context) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(latestDirKey),
	})
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", latestDirKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", latestDirKey, err)
	}
	dir := strings.TrimSpace(string(data))
	if dir == "" {
		return "", fmt.Errorf("%s is empty", latestDirKey)
	}
	return dir, nil
}

func (s *S3Source) Fetch(ctx context.Context, key string, w io.WriterAt) (int64, error) {
	objKey, err := s.objectKey(ctx, key)
	if err != nil {
		return 0, err
	}

	n, err := s.downloader.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return 0, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, objKey)
		}
		return n, fmt.Errorf("downloading s3://%s/%s: %w", s.bucket, objKey, err)
	}
	return n, nil
}

var _ Source = (*S3Source)(nil)
