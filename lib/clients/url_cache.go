package clients

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachingS3Client reuses presigned download URLs while they are still
// comfortably valid. A warm Lambda container serves repeated detail views of
// the same attachment without signing again.
type CachingS3Client struct {
	S3ClientInterface
	downloads *expirable.LRU[string, string]
}

// NewCachingS3Client caches up to size download URLs for ttl. ttl must stay
// below the expiry passed to GenerateDownloadURL. A ttl of zero or less
// disables caching.
func NewCachingS3Client(inner S3ClientInterface, size int, ttl time.Duration) *CachingS3Client {
	client := &CachingS3Client{S3ClientInterface: inner}
	if ttl > 0 {
		client.downloads = expirable.NewLRU[string, string](size, nil, ttl)
	}
	return client
}

// GenerateDownloadURL returns a cached URL for key or signs a new one
func (c *CachingS3Client) GenerateDownloadURL(key string, expiry time.Duration) (string, error) {
	if c.downloads == nil {
		return c.S3ClientInterface.GenerateDownloadURL(key, expiry)
	}
	if url, ok := c.downloads.Get(key); ok {
		return url, nil
	}

	url, err := c.S3ClientInterface.GenerateDownloadURL(key, expiry)
	if err != nil {
		return "", err
	}
	c.downloads.Add(key, url)
	return url, nil
}

// DeleteObject deletes the object and forgets its cached URL
func (c *CachingS3Client) DeleteObject(key string) error {
	if c.downloads != nil {
		c.downloads.Remove(key)
	}
	return c.S3ClientInterface.DeleteObject(key)
}
