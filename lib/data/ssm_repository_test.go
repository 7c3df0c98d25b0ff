package data

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

var (
	ssmRepository SSMRepository
)

func String(v string) *string {
	return &v
}

type MockSSMClient struct {
	TestSuccess bool
	Paths       []string
	calls       int
}

func InitializeSSMClient(mock *MockSSMClient) SSMRepository {
	return &SSMDao{
		SSM:    mock,
		Logger: logrus.New(),
	}
}

// GetParametersByPath serves two pages so pagination is exercised
func (m *MockSSMClient) GetParametersByPath(ctx context.Context, input *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	m.Paths = append(m.Paths, *input.Path)
	if !m.TestSuccess {
		return nil, errors.New("error in GetParametersByPath")
	}

	m.calls++
	if input.NextToken == nil {
		return &ssm.GetParametersByPathOutput{
			Parameters: []types.Parameter{
				{
					Name:  String("/visit-permits/STORAGE_BACKEND"),
					Value: String("s3"),
				},
			},
			NextToken: String("page-2"),
		}, nil
	}
	return &ssm.GetParametersByPathOutput{
		Parameters: []types.Parameter{
			{
				Name:  String("/visit-permits/STORAGE_BUCKET"),
				Value: String("permits-store"),
			},
		},
		NextToken: nil,
	}, nil
}

func Test_GetParameters_Success(t *testing.T) {
	//Arrange
	mock := &MockSSMClient{TestSuccess: true}
	ssmRepository = InitializeSSMClient(mock)

	//Act
	actual, err := ssmRepository.GetParameters()

	//Assert
	assert.NoError(t, err)
	assert.Equal(t, "s3", actual["/visit-permits/STORAGE_BACKEND"])
	assert.Equal(t, "permits-store", actual["/visit-permits/STORAGE_BUCKET"])
	assert.Equal(t, 2, mock.calls)
	assert.Equal(t, []string{"/visit-permits", "/visit-permits"}, mock.Paths)
}

func Test_GetParameters_CustomPath(t *testing.T) {
	mock := &MockSSMClient{TestSuccess: true}
	dao := &SSMDao{SSM: mock, Path: "/visit-permits-staging", Logger: logrus.New()}

	_, err := dao.GetParameters()

	assert.NoError(t, err)
	assert.Equal(t, "/visit-permits-staging", mock.Paths[0])
}

func Test_GetParameters_Failure(t *testing.T) {
	//Arrange
	ssmRepository = InitializeSSMClient(&MockSSMClient{TestSuccess: false})
	expected := "error in GetParametersByPath"

	//Act
	_, actual := ssmRepository.GetParameters()

	//Assert
	assert.Equal(t, expected, actual.Error())
}
