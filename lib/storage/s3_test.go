package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockS3Client struct {
	Objects   map[string][]byte
	GetErr    error
	PutErr    error
	HeadErr   error
	PutInputs []*s3.PutObjectInput
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.Objects[*params.Bucket+"/"+*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.PutErr != nil {
		return nil, m.PutErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if m.Objects == nil {
		m.Objects = map[string][]byte{}
	}
	m.Objects[*params.Bucket+"/"+*params.Key] = data
	m.PutInputs = append(m.PutInputs, params)
	return &s3.PutObjectOutput{}, nil
}

func (m *MockS3Client) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if m.HeadErr != nil {
		return nil, m.HeadErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func newS3Backend(mock *MockS3Client) *S3Backend {
	return &S3Backend{
		S3:     mock,
		Bucket: "permits-bucket",
		Key:    "store/visit-permit-requests.json",
		Logger: logrus.New(),
	}
}

func Test_S3Backend_ReadMissingObject(t *testing.T) {
	//Arrange
	backend := newS3Backend(&MockS3Client{})

	//Act
	data, err := backend.Read(context.Background())

	//Assert
	require.NoError(t, err)
	assert.Nil(t, data)
}

func Test_S3Backend_WriteThenRead(t *testing.T) {
	//Arrange
	mock := &MockS3Client{}
	backend := newS3Backend(mock)
	ctx := context.Background()

	//Act
	require.NoError(t, backend.Write(ctx, []byte(`[{"id":"1"}]`)))
	data, err := backend.Read(ctx)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(data))
	require.Len(t, mock.PutInputs, 1)
	assert.Equal(t, "application/json", *mock.PutInputs[0].ContentType)
}

func Test_S3Backend_ReadFailure(t *testing.T) {
	//Arrange
	backend := newS3Backend(&MockS3Client{GetErr: errors.New("access denied")})

	//Act
	_, err := backend.Read(context.Background())

	//Assert
	assert.ErrorContains(t, err, "access denied")
}

func Test_S3Backend_WriteFailure(t *testing.T) {
	//Arrange
	backend := newS3Backend(&MockS3Client{PutErr: errors.New("slow down")})

	//Act
	err := backend.Write(context.Background(), []byte(`[]`))

	//Assert
	assert.ErrorContains(t, err, "slow down")
}

func Test_S3Backend_Check(t *testing.T) {
	assert.NoError(t, newS3Backend(&MockS3Client{}).Check(context.Background()))

	err := newS3Backend(&MockS3Client{HeadErr: errors.New("not found")}).Check(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	missingBucket := newS3Backend(&MockS3Client{})
	missingBucket.Bucket = ""
	assert.ErrorIs(t, missingBucket.Check(context.Background()), ErrUnavailable)
}
