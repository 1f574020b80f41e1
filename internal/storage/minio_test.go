package storage

import (
	"context"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucket, key, size, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *mockObjectAPI) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, dst, src)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *mockObjectAPI) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	args := m.Called(ctx, bucket, key, opts)
	return args.Error(0)
}

func (m *mockObjectAPI) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *mockObjectAPI) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucket, opts)
	return args.Get(0).(<-chan minio.ObjectInfo)
}

func (m *mockObjectAPI) GetObjectTagging(ctx context.Context, bucket, key string, opts minio.GetObjectTaggingOptions) (*tags.Tags, error) {
	args := m.Called(ctx, bucket, key, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tags.Tags), args.Error(1)
}

func (m *mockObjectAPI) PutObjectTagging(ctx context.Context, bucket, key string, t *tags.Tags, opts minio.PutObjectTaggingOptions) error {
	args := m.Called(ctx, bucket, key, t, opts)
	return args.Error(0)
}

func (m *mockObjectAPI) RemoveObjectTagging(ctx context.Context, bucket, key string, opts minio.RemoveObjectTaggingOptions) error {
	args := m.Called(ctx, bucket, key, opts)
	return args.Error(0)
}

func objectChan(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func mustTags(t *testing.T, m map[string]string) *tags.Tags {
	ts, err := tags.NewTags(m, true)
	if err != nil {
		t.Fatalf("build tags: %v", err)
	}
	return ts
}

func TestMinioGateway_EnsureFolder(t *testing.T) {
	api := new(mockObjectAPI)
	g := &minioGateway{api: api, bucket: "assets"}
	ctx := context.Background()

	api.On("PutObject", ctx, "assets", "models/.keep", int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
	api.On("PutObject", ctx, "assets", "models/Pump_A/.keep", int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
	api.On("PutObject", ctx, "assets", "models/Pump_A/v1.0/.keep", int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	err := g.EnsureFolder(ctx, "models/Pump_A/v1.0")

	assert.NoError(t, err)
	api.AssertExpectations(t)
}

func TestMinioGateway_RenameFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("copies then removes every object", func(t *testing.T) {
		api := new(mockObjectAPI)
		g := &minioGateway{api: api, bucket: "assets"}

		api.On("ListObjects", ctx, "assets", mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
			return o.Prefix == "models/Pump_A/" && o.Recursive
		})).Return(objectChan("models/Pump_A/.keep", "models/Pump_A/v1.0/model.zip"))

		api.On("CopyObject", ctx,
			minio.CopyDestOptions{Bucket: "assets", Object: "models/Pump_B/.keep"},
			minio.CopySrcOptions{Bucket: "assets", Object: "models/Pump_A/.keep"},
		).Return(minio.UploadInfo{}, nil)
		api.On("CopyObject", ctx,
			minio.CopyDestOptions{Bucket: "assets", Object: "models/Pump_B/v1.0/model.zip"},
			minio.CopySrcOptions{Bucket: "assets", Object: "models/Pump_A/v1.0/model.zip"},
		).Return(minio.UploadInfo{}, nil)
		api.On("RemoveObject", ctx, "assets", "models/Pump_A/.keep", mock.Anything).Return(nil)
		api.On("RemoveObject", ctx, "assets", "models/Pump_A/v1.0/model.zip", mock.Anything).Return(nil)

		err := g.RenameFolder(ctx, "models/Pump_A", "models/Pump_B")

		assert.NoError(t, err)
		api.AssertExpectations(t)
	})

	t.Run("empty source materializes destination", func(t *testing.T) {
		api := new(mockObjectAPI)
		g := &minioGateway{api: api, bucket: "assets"}

		api.On("ListObjects", ctx, "assets", mock.Anything).Return(objectChan())
		api.On("PutObject", ctx, "assets", "models/.keep", int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
		api.On("PutObject", ctx, "assets", "models/Pump_B/.keep", int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

		err := g.RenameFolder(ctx, "models/Pump_A", "models/Pump_B")

		assert.NoError(t, err)
		api.AssertExpectations(t)
	})
}

func TestMinioGateway_SyncTags(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches desired set when different", func(t *testing.T) {
		api := new(mockObjectAPI)
		g := &minioGateway{api: api, bucket: "assets"}

		api.On("GetObjectTagging", ctx, "assets", "models/Pump_A/.keep", mock.Anything).
			Return(mustTags(t, map[string]string{"OldProject": "1"}), nil)
		api.On("PutObjectTagging", ctx, "assets", "models/Pump_A/.keep", mock.MatchedBy(func(ts *tags.Tags) bool {
			m := ts.ToMap()
			_, a := m["North_Plant"]
			_, b := m["South_Plant"]
			return len(m) == 2 && a && b
		}), mock.Anything).Return(nil)

		err := g.SyncTags(ctx, "models/Pump_A", []string{"North_Plant", "South_Plant"})

		assert.NoError(t, err)
		api.AssertExpectations(t)
	})

	t.Run("second call with same names is a no-op", func(t *testing.T) {
		api := new(mockObjectAPI)
		g := &minioGateway{api: api, bucket: "assets"}

		api.On("GetObjectTagging", ctx, "assets", "models/Pump_A/.keep", mock.Anything).
			Return(mustTags(t, map[string]string{"North_Plant": "1"}), nil)

		err := g.SyncTags(ctx, "models/Pump_A", []string{"North_Plant"})

		assert.NoError(t, err)
		api.AssertExpectations(t)
		api.AssertNotCalled(t, "PutObjectTagging", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		api.AssertNotCalled(t, "RemoveObjectTagging", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty desired set detaches everything", func(t *testing.T) {
		api := new(mockObjectAPI)
		g := &minioGateway{api: api, bucket: "assets"}

		api.On("GetObjectTagging", ctx, "assets", "models/Pump_A/.keep", mock.Anything).
			Return(mustTags(t, map[string]string{"North_Plant": "1"}), nil)
		api.On("RemoveObjectTagging", ctx, "assets", "models/Pump_A/.keep", mock.Anything).Return(nil)

		err := g.SyncTags(ctx, "models/Pump_A", nil)

		assert.NoError(t, err)
		api.AssertExpectations(t)
	})
}

func TestMinioGateway_DeleteFolderRecursive(t *testing.T) {
	api := new(mockObjectAPI)
	g := &minioGateway{api: api, bucket: "assets"}
	ctx := context.Background()

	api.On("ListObjects", ctx, "assets", mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
		return o.Prefix == "models/Pump_A/"
	})).Return(objectChan("models/Pump_A/.keep", "models/Pump_A/v1.0/model.zip"))
	api.On("RemoveObject", ctx, "assets", "models/Pump_A/v1.0/model.zip", mock.Anything).Return(nil)
	api.On("RemoveObject", ctx, "assets", "models/Pump_A/.keep", mock.Anything).Return(nil)

	err := g.DeleteFolderRecursive(ctx, "models/Pump_A")

	assert.NoError(t, err)
	api.AssertExpectations(t)
}

func TestClassify(t *testing.T) {
	t.Run("missing key maps to ErrNotFound", func(t *testing.T) {
		err := classify(minio.ErrorResponse{Code: "NoSuchKey", Key: "models/x/.keep"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("bad credentials map to ErrUnavailable with hint", func(t *testing.T) {
		err := classify(minio.ErrorResponse{Code: "AccessDenied"})
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Contains(t, err.Error(), "credentials")
	})

	t.Run("timeout maps to ErrUnavailable", func(t *testing.T) {
		err := classify(context.DeadlineExceeded)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Contains(t, err.Error(), "unreachable")
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, classify(nil))
	})
}
