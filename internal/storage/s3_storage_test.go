package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"hr-calendar/internal/storage"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
	types   map[string]string
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{}, types: map[string]string{}}
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Key)] = string(b)
	f.types[aws.StringValue(in.Key)] = aws.StringValue(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	key := aws.StringValue(in.Key)
	body, ok := f.objects[key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentType:   aws.String(f.types[key]),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func TestS3Storage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store := storage.NewS3Storage(client, "bucket")

	require.NoError(t, store.Upload(ctx, "sick-notes/a.pdf", strings.NewReader("%PDF"), "application/pdf"))

	obj, err := store.Get(ctx, "sick-notes/a.pdf")
	require.NoError(t, err)
	defer obj.Body.Close()
	body, _ := io.ReadAll(obj.Body)
	assert.Equal(t, "%PDF", string(body))
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, int64(4), obj.ContentLength)
}

func TestS3Storage_MissingObject(t *testing.T) {
	store := storage.NewS3Storage(newFakeS3(), "bucket")

	_, err := store.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestS3Storage_UploadFailure(t *testing.T) {
	client := newFakeS3()
	client.putErr = errors.New("denied")
	store := storage.NewS3Storage(client, "bucket")

	err := store.Upload(context.Background(), "k", strings.NewReader("x"), "image/png")

	assert.EqualError(t, err, "denied")
}

func TestDisabledStorage(t *testing.T) {
	store := storage.NewDisabled()

	assert.ErrorIs(t, store.Upload(context.Background(), "k", strings.NewReader("x"), "image/png"), storage.ErrDisabled)
	_, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, storage.ErrDisabled)
}
