package main

import (
	"net/http"
	"testing"

	"visitpermits/lib/config"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Handler_Origins(t *testing.T) {
	cfg = config.Config{AllowedOrigins: []string{"https://permits.example", "http://localhost:3000"}}

	tests := []struct {
		name           string
		headers        map[string]string
		expectedStatus int
	}{
		{"allowed origin", map[string]string{"origin": "https://permits.example"}, http.StatusOK},
		{"local origin", map[string]string{"origin": "http://localhost:3000"}, http.StatusOK},
		{"unknown origin", map[string]string{"origin": "https://evil.example"}, http.StatusBadRequest},
		{"missing origin", map[string]string{}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			//Act
			response, err := handler(events.APIGatewayProxyRequest{Headers: tt.headers})

			//Assert
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, response.StatusCode)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.headers["origin"], response.Headers["Access-Control-Allow-Origin"])
			}
		})
	}
}

func Test_Handler_Wildcard(t *testing.T) {
	cfg = config.Config{AllowedOrigins: []string{"*"}}

	response, err := handler(events.APIGatewayProxyRequest{Headers: map[string]string{"origin": "https://any.example"}})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "true", response.Headers["Access-Control-Allow-Credentials"])
}
