package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockS3 struct {
	LastInput *s3.PutObjectInput
	LastBody  string
	Err       error
}

func (m *MockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.LastInput = params
	if params.Body != nil {
		b, _ := io.ReadAll(params.Body)
		m.LastBody = string(b)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_Upload(t *testing.T) {
	testCases := []struct {
		name        string
		filename    string
		contentType string
		wantKey     string
	}{
		{name: "keeps extension", filename: "quentao.png", contentType: "image/png", wantKey: "fixed.png"},
		{name: "lowercases extension", filename: "FOTO.JPG", contentType: "image/jpeg", wantKey: "fixed.jpg"},
		{name: "no extension", filename: "blob", contentType: "", wantKey: "fixed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := &MockS3{}
			u := newS3Uploader(client, "product-images", "https://cdn.example.com/product-images/")
			u.newKey = func(ext string) string { return "fixed" + ext }

			url, err := u.Upload(context.Background(), tc.filename, tc.contentType, strings.NewReader("data"))
			require.NoError(t, err)

			assert.Equal(t, "https://cdn.example.com/product-images/"+tc.wantKey, url)
			assert.Equal(t, "product-images", aws.ToString(client.LastInput.Bucket))
			assert.Equal(t, tc.wantKey, aws.ToString(client.LastInput.Key))
			assert.Equal(t, "data", client.LastBody)
			if tc.contentType == "" {
				assert.Nil(t, client.LastInput.ContentType)
			} else {
				assert.Equal(t, tc.contentType, aws.ToString(client.LastInput.ContentType))
			}
		})
	}
}

func TestS3Uploader_RandomKeys(t *testing.T) {
	client := &MockS3{}
	u := newS3Uploader(client, "b", "https://cdn")

	first, err := u.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	second, err := u.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, ".png"))
}

func TestS3Uploader_Error(t *testing.T) {
	client := &MockS3{Err: errors.New("access denied")}
	u := newS3Uploader(client, "b", "https://cdn")

	_, err := u.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
