package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"visitpermits/lib/models"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ListFacilities(t *testing.T) {
	//Arrange
	request := events.APIGatewayProxyRequest{HTTPMethod: "GET", Resource: "/facilities"}

	//Act
	response, err := Handler(context.Background(), request)

	//Assert
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)
	var list models.FacilityListResponse
	require.NoError(t, json.Unmarshal([]byte(response.Body), &list))
	assert.Equal(t, 10, list.TotalCount)
	assert.Equal(t, "1", list.Facilities[0].ID)
}

func Test_ListFacilities_ByType(t *testing.T) {
	response, err := Handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            "GET",
		Resource:              "/facilities",
		QueryStringParameters: map[string]string{"type": models.FacilityTypeRemandPrison},
	})

	require.NoError(t, err)
	var list models.FacilityListResponse
	require.NoError(t, json.Unmarshal([]byte(response.Body), &list))
	assert.NotZero(t, list.TotalCount)
	for _, facility := range list.Facilities {
		assert.Equal(t, models.FacilityTypeRemandPrison, facility.Type)
	}
}

func Test_GetFacility(t *testing.T) {
	found, err := Handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     "GET",
		Resource:       "/facilities/{facilityId}",
		PathParameters: map[string]string{"facilityId": "2"},
	})
	require.NoError(t, err)
	missing, err := Handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     "GET",
		Resource:       "/facilities/{facilityId}",
		PathParameters: map[string]string{"facilityId": "99"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, found.StatusCode)
	assert.Contains(t, found.Body, "Centre pénitentiaire de Fresnes")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func Test_Facilities_UnknownEndpoint(t *testing.T) {
	response, err := Handler(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "POST", Resource: "/facilities"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}
