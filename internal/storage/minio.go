package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/tags"

	"assetcat/internal/config"
)

// markerName anchors a folder inside the flat object keyspace. Folder tags live as
// object tags on this marker.
const markerName = ".keep"

// objectAPI is the slice of the MinIO client the gateway consumes. *minio.Client
// satisfies it; tests substitute a mock.
type objectAPI interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	GetObjectTagging(ctx context.Context, bucket, key string, opts minio.GetObjectTaggingOptions) (*tags.Tags, error)
	PutObjectTagging(ctx context.Context, bucket, key string, t *tags.Tags, opts minio.PutObjectTaggingOptions) error
	RemoveObjectTagging(ctx context.Context, bucket, key string, opts minio.RemoveObjectTaggingOptions) error
}

// minioGateway implements Gateway on an S3-compatible backend (MinIO, AWS S3, etc.).
// Folders are key prefixes anchored by a zero-byte marker object; renames are
// server-side copy walks. Safe for concurrent use.
type minioGateway struct {
	api    objectAPI
	bucket string
}

// NewMinIO creates a storage gateway backed by MinIO. It validates connectivity and
// ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (Gateway, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, classify(err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, classify(err)
		}
	}

	return &minioGateway{api: cli, bucket: cfg.Bucket}, nil
}

func marker(folder string) string {
	return strings.TrimSuffix(folder, "/") + "/" + markerName
}

// EnsureFolder writes a marker object for every segment of the path. Overwriting an
// existing marker is a no-op, which makes the call idempotent.
func (g *minioGateway) EnsureFolder(ctx context.Context, folder string) error {
	segs := strings.Split(strings.Trim(folder, "/"), "/")
	cur := ""
	for _, seg := range segs {
		if cur == "" {
			cur = seg
		} else {
			cur = cur + "/" + seg
		}
		_, err := g.api.PutObject(ctx, g.bucket, marker(cur), bytes.NewReader(nil), 0, minio.PutObjectOptions{})
		if err != nil {
			return classify(err)
		}
	}
	return nil
}

// RenameFolder moves every object under oldFolder to newFolder via server-side copy,
// then removes the originals.
func (g *minioGateway) RenameFolder(ctx context.Context, oldFolder, newFolder string) error {
	oldPrefix := strings.TrimSuffix(oldFolder, "/") + "/"
	newPrefix := strings.TrimSuffix(newFolder, "/") + "/"

	var keys []string
	for obj := range g.api.ListObjects(ctx, g.bucket, minio.ListObjectsOptions{Prefix: oldPrefix, Recursive: true}) {
		if obj.Err != nil {
			return classify(obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	if len(keys) == 0 {
		// Nothing stored yet; just materialize the new folder.
		return g.EnsureFolder(ctx, newFolder)
	}

	for _, key := range keys {
		dst := newPrefix + strings.TrimPrefix(key, oldPrefix)
		_, err := g.api.CopyObject(ctx,
			minio.CopyDestOptions{Bucket: g.bucket, Object: dst},
			minio.CopySrcOptions{Bucket: g.bucket, Object: key},
		)
		if err != nil {
			return classify(err)
		}
	}
	for _, key := range keys {
		if err := g.api.RemoveObject(ctx, g.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return classify(err)
		}
	}
	return nil
}

// SyncTags reconciles the folder marker's tags with the desired name set. When the
// attached set already matches, no write is issued.
func (g *minioGateway) SyncTags(ctx context.Context, folder string, names []string) error {
	key := marker(folder)

	current, err := g.api.GetObjectTagging(ctx, g.bucket, key, minio.GetObjectTaggingOptions{})
	if err != nil {
		return classify(err)
	}

	desired := make(map[string]string, len(names))
	for _, n := range names {
		desired[n] = "1"
	}

	if tagSetsEqual(current.ToMap(), desired) {
		return nil
	}

	if len(desired) == 0 {
		if err := g.api.RemoveObjectTagging(ctx, g.bucket, key, minio.RemoveObjectTaggingOptions{}); err != nil {
			return classify(err)
		}
		return nil
	}

	t, err := tags.NewTags(desired, true)
	if err != nil {
		return fmt.Errorf("build tag set: %w", err)
	}
	if err := g.api.PutObjectTagging(ctx, g.bucket, key, t, minio.PutObjectTaggingOptions{}); err != nil {
		return classify(err)
	}
	return nil
}

func tagSetsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// WriteFile stores the content under path using streaming I/O only.
func (g *minioGateway) WriteFile(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := g.api.PutObject(ctx, g.bucket, path, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", classify(err)
	}
	return path, nil
}

// DeleteFile removes a single object.
func (g *minioGateway) DeleteFile(ctx context.Context, path string) error {
	if err := g.api.RemoveObject(ctx, g.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return classify(err)
	}
	return nil
}

// DeleteFolderRecursive removes every object under the folder, markers included.
func (g *minioGateway) DeleteFolderRecursive(ctx context.Context, folder string) error {
	prefix := strings.TrimSuffix(folder, "/") + "/"

	var keys []string
	for obj := range g.api.ListObjects(ctx, g.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return classify(obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	// Children first so a partial failure never leaves orphans below a removed parent.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	for _, key := range keys {
		if err := g.api.RemoveObject(ctx, g.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return classify(err)
		}
	}
	return nil
}

// classify maps backend errors onto the gateway taxonomy: missing objects become
// ErrNotFound, connectivity and credential problems become ErrUnavailable with a
// remediation hint, everything else is passed through wrapped.
func classify(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Key)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("%w: storage rejected our credentials (check access key and secret): %v", ErrUnavailable, err)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: storage service unreachable (service down or wrong endpoint address): %v", ErrUnavailable, err)
	}

	return fmt.Errorf("storage: %w", err)
}
