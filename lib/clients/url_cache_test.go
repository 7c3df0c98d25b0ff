package clients

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockS3Client struct {
	downloadCalls int
	deleted       []string
	fail          bool
}

func (m *MockS3Client) GenerateUploadURL(key, contentType string, expiry time.Duration) (string, error) {
	return "https://upload/" + key, nil
}

func (m *MockS3Client) GenerateDownloadURL(key string, expiry time.Duration) (string, error) {
	if m.fail {
		return "", errors.New("signing failed")
	}
	m.downloadCalls++
	return fmt.Sprintf("https://download/%s?sig=%d", key, m.downloadCalls), nil
}

func (m *MockS3Client) DeleteObject(key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MockS3Client) ObjectExists(key string) (bool, error) {
	return true, nil
}

func Test_CachingS3Client_ReusesDownloadURL(t *testing.T) {
	//Arrange
	mock := &MockS3Client{}
	client := NewCachingS3Client(mock, 10, time.Minute)

	//Act
	first, err := client.GenerateDownloadURL("attachments/a.pdf", time.Hour)
	require.NoError(t, err)
	second, err := client.GenerateDownloadURL("attachments/a.pdf", time.Hour)
	require.NoError(t, err)
	other, err := client.GenerateDownloadURL("attachments/b.pdf", time.Hour)
	require.NoError(t, err)

	//Assert
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Equal(t, 2, mock.downloadCalls)
}

func Test_CachingS3Client_DeleteInvalidates(t *testing.T) {
	mock := &MockS3Client{}
	client := NewCachingS3Client(mock, 10, time.Minute)

	_, err := client.GenerateDownloadURL("attachments/a.pdf", time.Hour)
	require.NoError(t, err)
	require.NoError(t, client.DeleteObject("attachments/a.pdf"))
	_, err = client.GenerateDownloadURL("attachments/a.pdf", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, []string{"attachments/a.pdf"}, mock.deleted)
	assert.Equal(t, 2, mock.downloadCalls)
}

func Test_CachingS3Client_ErrorsAreNotCached(t *testing.T) {
	mock := &MockS3Client{fail: true}
	client := NewCachingS3Client(mock, 10, time.Minute)

	_, err := client.GenerateDownloadURL("attachments/a.pdf", time.Hour)
	assert.Error(t, err)

	mock.fail = false
	url, err := client.GenerateDownloadURL("attachments/a.pdf", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "sig=1")
}

func Test_CachingS3Client_NonPositiveTTLSignsEveryTime(t *testing.T) {
	for _, ttl := range []time.Duration{0, -5 * time.Second} {
		mock := &MockS3Client{}
		client := NewCachingS3Client(mock, 10, ttl)

		first, err := client.GenerateDownloadURL("attachments/a.pdf", time.Hour)
		require.NoError(t, err)
		second, err := client.GenerateDownloadURL("attachments/a.pdf", time.Hour)
		require.NoError(t, err)
		require.NoError(t, client.DeleteObject("attachments/a.pdf"))

		assert.NotEqual(t, first, second)
		assert.Equal(t, 2, mock.downloadCalls)
	}
}
