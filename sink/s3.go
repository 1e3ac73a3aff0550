package sink

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/modexport/data"
)

// S3 uploads artifacts into a bucket of an S3 compatible object store.
type S3 struct {
	mu sync.RWMutex

	client     *minio.Client
	bucketName string
	prefix     string
}

func NewS3(endpoint, bucketName, prefix, accessKey, secretKey string, useSsl bool) (*S3, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSsl,
	})
	if err != nil {
		return nil, err
	}

	return &S3{
		client:     client,
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
	}, nil
}

// ParseS3Address creates an S3 sink from an address of the form
// s3://<endpoint>/<bucket>[/<prefix>]?access_key=<key>&secret_key=<secret>&ssl=<bool>.
// The minio:// scheme is accepted as an alias.
func ParseS3Address(address string) (*S3, error) {
	address = strings.TrimSpace(address)

	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse address '%s': %w", address, data.ErrMalformedAddress)
	}
	if u.Scheme != "s3" && u.Scheme != "minio" {
		return nil, fmt.Errorf("failed to parse address '%s': %w", address, data.ErrUnknownBackend)
	}

	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if u.Host == "" || bucket == "" {
		return nil, fmt.Errorf("failed to parse address '%s': %w: endpoint and bucket required", address, data.ErrMalformedAddress)
	}

	query := u.Query()
	useSsl := true
	if raw := query.Get("ssl"); raw != "" {
		useSsl, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse address '%s': %w: ssl", address, data.ErrMalformedAddress)
		}
	}

	return NewS3(u.Host, bucket, prefix, query.Get("access_key"), query.Get("secret_key"), useSsl)
}

func (*S3) Name() string {
	return "s3"
}

// Open verifies that the target bucket exists.
func (s *S3) Open(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: bucket '%s'", data.ErrNotExist, s.bucketName)
	}

	return nil
}

// Key returns the object key used for name.
func (s *S3) Key(name string) string {
	return path.Join(s.prefix, path.Base(data.NormalizePath(name)))
}

func (s *S3) Write(ctx context.Context, name string, r io.Reader, size int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.Key(name)
	_, err := s.client.PutObject(ctx, s.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: string(data.ArtifactContentType(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload '%s' to bucket '%s': %w", key, s.bucketName, err)
	}

	return nil
}
