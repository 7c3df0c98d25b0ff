package main

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"visitpermits/lib/api"
	"visitpermits/lib/models"
	"visitpermits/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

var (
	logger     *logrus.Logger
	isLocal    bool
	facilities *models.FacilityCatalog
)

// Handler serves the read-only facility catalogue used by the submission form
//
//   GET /facilities                - List facilities, optionally ?type=
//   GET /facilities/{facilityId}   - Facility detail
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"method":    request.HTTPMethod,
		"resource":  request.Resource,
		"operation": "Handler",
	}).Debug("Processing facility request")

	switch {
	case request.Resource == "/facilities" && request.HTTPMethod == "GET":
		return handleListFacilities(request)
	case request.Resource == "/facilities/{facilityId}" && request.HTTPMethod == "GET":
		return handleGetFacility(request)
	default:
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil
	}
}

func handleListFacilities(request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	facilityType := request.QueryStringParameters["type"]

	list := make([]models.Facility, 0)
	for _, facility := range facilities.List() {
		if facilityType != "" && facility.Type != facilityType {
			continue
		}
		list = append(list, facility)
	}

	response := models.FacilityListResponse{
		Facilities: list,
		TotalCount: len(list),
	}
	return api.SuccessResponse(http.StatusOK, response, logger), nil
}

func handleGetFacility(request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	facility, ok := facilities.Get(request.PathParameters["facilityId"])
	if !ok {
		return api.ErrorResponse(http.StatusNotFound, "Facility not found", logger), nil
	}
	return api.SuccessResponse(http.StatusOK, facility, logger), nil
}

func main() {
	lambda.Start(Handler)
}

func init() {
	isLocal, _ = strconv.ParseBool(os.Getenv("IS_LOCAL"))

	logger = logrus.New()
	util.SetLogLevel(logger, os.Getenv("LOG_LEVEL"))
	logger.SetFormatter(&logrus.JSONFormatter{
		PrettyPrint: isLocal,
	})

	var err error
	facilities, err = models.DefaultFacilityCatalog()
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Fatal("Error while loading the facility catalogue")
	}
}
