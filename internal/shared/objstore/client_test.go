// Package objstore 客户端单元测试（URL 映射与参数校验，不依赖真实 MinIO）
package objstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zensync/internal/config"
)

func testClient(t *testing.T, cfg config.MinIOConfig) *Client {
	t.Helper()
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(config.MinIOConfig{})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewClient(config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "access_key")
}

func TestNewClient_Defaults(t *testing.T) {
	c := testClient(t, config.MinIOConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	assert.Equal(t, "zensync", c.bucket)
	// 未配置 public_url 时从 endpoint 推导
	assert.Equal(t, "http://localhost:9000", c.publicURL)
}

func TestPublicURLRoundTrip(t *testing.T) {
	c := testClient(t, config.MinIOConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "videos",
		PublicURL: "https://cdn.example.com/",
	})

	key := "projects/prj-abc123/video-0011.mp4"
	url := c.PublicURL(key)
	assert.Equal(t, "https://cdn.example.com/videos/"+key, url)
	assert.Equal(t, key, c.KeyFromURL(url))
}

func TestKeyFromURL_ForeignURL(t *testing.T) {
	c := testClient(t, config.MinIOConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "videos",
		PublicURL: "https://cdn.example.com",
	})

	assert.Empty(t, c.KeyFromURL("https://other.example.com/videos/x.mp4"))
	assert.Empty(t, c.KeyFromURL("https://cdn.example.com/otherbucket/x.mp4"))
	assert.Empty(t, c.KeyFromURL(""))
}
