package clients

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewPostgresSQLClient_PingFailure(t *testing.T) {
	//Arrange
	// nothing listens on port 1
	host, port := "127.0.0.1", "1"

	//Act
	db, err := NewPostgresSQLClient(host, port, "permits", "permits", "secret", "disable")

	//Assert
	assert.Nil(t, db)
	assert.ErrorContains(t, err, "failed to ping database")
}
