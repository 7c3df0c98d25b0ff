package main

import (
	"net/http"
	"os"
	"strconv"

	"visitpermits/lib/clients"
	"visitpermits/lib/config"
	"visitpermits/lib/data"
	"visitpermits/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

var (
	logger        *logrus.Logger
	isLocal       bool
	ssmRepository data.SSMRepository
	ssmParams     map[string]string
	cfg           config.Config
)

func handler(request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestOrigin, ok := request.Headers["origin"]
	if !ok {
		logger.WithField("operation", "handler").Warn("origin is not present in the request headers")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
		}, nil
	}

	logger.WithFields(logrus.Fields{
		"origin":          requestOrigin,
		"allowed_origins": cfg.AllowedOrigins,
		"operation":       "handler",
	}).Debug("Checking pre-flight origin")

	if cfg.IsOriginAllowed(requestOrigin) {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers: map[string]string{
				"Access-Control-Allow-Origin":      requestOrigin,
				"Access-Control-Allow-Headers":     "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
				"Access-Control-Allow-Methods":     "GET, PUT, DELETE, POST, OPTIONS",
				"Access-Control-Allow-Credentials": "true",
			},
		}, nil
	}

	logger.WithField("origin", requestOrigin).Warn("unauthorized origin from request header")

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusBadRequest,
	}, nil
}

func main() {
	setup()
	lambda.Start(handler)
}

func init() {
	isLocal, _ = strconv.ParseBool(os.Getenv("IS_LOCAL"))

	logger = logrus.New()
	util.SetLogLevel(logger, os.Getenv("LOG_LEVEL"))
	logger.SetFormatter(&logrus.JSONFormatter{
		PrettyPrint: isLocal,
	})
}

// setup reads the allowed origins from the parameter store
func setup() {
	ssmClient := clients.NewSSMClient(isLocal, config.Region())
	ssmRepository = &data.SSMDao{
		SSM:    ssmClient,
		Logger: logger,
	}

	var err error
	ssmParams, err = ssmRepository.GetParameters()
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Fatal("Error while getting ssm params from param store")
	}
	cfg = config.Load(ssmParams)
}
