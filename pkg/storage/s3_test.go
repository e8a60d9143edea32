package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 records PutObject calls
type fakeS3 struct {
	lastInput *s3.PutObjectInput
	err       error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	store := newS3StoreWithClient(fake, &S3Config{
		Region: "us-east-1",
		Bucket: "fragrance-media",
	})

	url, err := store.Upload(context.Background(), []byte("jpeg-bytes"), "products", "image/jpeg")
	require.NoError(t, err)

	require.NotNil(t, fake.lastInput)
	assert.Equal(t, "fragrance-media", *fake.lastInput.Bucket)
	assert.Equal(t, "image/jpeg", *fake.lastInput.ContentType)
	assert.True(t, strings.HasPrefix(*fake.lastInput.Key, "products/"))

	body, err := io.ReadAll(fake.lastInput.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), body)

	assert.True(t, strings.HasPrefix(url, "https://fragrance-media.s3.us-east-1.amazonaws.com/products/"))
}

func TestUpload_EmptyContentType(t *testing.T) {
	fake := &fakeS3{}
	store := newS3StoreWithClient(fake, &S3Config{Region: "us-east-1", Bucket: "b"})

	_, err := store.Upload(context.Background(), []byte("data"), "products", "")
	require.NoError(t, err)
	assert.Nil(t, fake.lastInput.ContentType)
}

func TestUpload_Error(t *testing.T) {
	putErr := errors.New("access denied")
	fake := &fakeS3{err: putErr}
	store := newS3StoreWithClient(fake, &S3Config{Region: "us-east-1", Bucket: "b"})

	_, err := store.Upload(context.Background(), []byte("data"), "products", "image/png")
	require.ErrorIs(t, err, putErr)
}

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name   string
		config S3Config
		want   string
	}{
		{
			name:   "aws default",
			config: S3Config{Region: "eu-west-1", Bucket: "media"},
			want:   "https://media.s3.eu-west-1.amazonaws.com/products/key",
		},
		{
			name:   "custom endpoint",
			config: S3Config{Region: "us-east-1", Bucket: "media", Endpoint: "http://localhost:9000"},
			want:   "http://localhost:9000/media/products/key",
		},
		{
			name: "public base url wins",
			config: S3Config{
				Region:        "us-east-1",
				Bucket:        "media",
				Endpoint:      "http://localhost:9000",
				PublicBaseURL: "https://cdn.example.com/",
			},
			want: "https://cdn.example.com/products/key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newS3StoreWithClient(&fakeS3{}, &tt.config)
			assert.Equal(t, tt.want, store.objectURL("products/key"))
		})
	}
}
