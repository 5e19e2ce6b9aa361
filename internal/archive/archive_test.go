package archive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestPut(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		key     string
		wantKey string
	}{
		{name: "no prefix", key: "charts/7.png", wantKey: "charts/7.png"},
		{name: "prefix", prefix: "/exports/", key: "/charts/7.png", wantKey: "exports/charts/7.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeS3{}
			u := NewWithClient(client, "trivia", tt.prefix, "https://cdn.example/trivia/")

			url, err := u.Put(context.Background(), tt.key, "image/png", []byte("png"))
			require.NoError(t, err)
			assert.Equal(t, "https://cdn.example/trivia/"+tt.wantKey, url)
			assert.Equal(t, "trivia", aws.ToString(client.input.Bucket))
			assert.Equal(t, tt.wantKey, aws.ToString(client.input.Key))
			assert.Equal(t, "image/png", aws.ToString(client.input.ContentType))
			assert.Equal(t, int64(3), aws.ToInt64(client.input.ContentLength))
			assert.Equal(t, []byte("png"), client.body)
		})
	}
}

func TestPutError(t *testing.T) {
	u := NewWithClient(&fakeS3{err: errors.New("denied")}, "trivia", "", "https://cdn.example")
	_, err := u.Put(context.Background(), "a.csv", "text/csv", nil)
	assert.ErrorContains(t, err, "denied")
}

func TestNewDisabled(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrDisabled)
}
