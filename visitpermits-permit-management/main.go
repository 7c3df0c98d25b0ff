package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"visitpermits/lib/api"
	"visitpermits/lib/clients"
	"visitpermits/lib/config"
	"visitpermits/lib/data"
	"visitpermits/lib/document"
	"visitpermits/lib/models"
	"visitpermits/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger           *logrus.Logger
	isLocal          bool
	cfg              config.Config
	ssmRepository    data.SSMRepository
	ssmParams        map[string]string
	facilities       *models.FacilityCatalog
	permitRepository data.PermitRepository
	attachmentClient clients.S3ClientInterface
)

// Handler processes API Gateway requests for permit request management
//
// PERMIT API ENDPOINTS:
//
// Requests:
//   GET    /permits                                          - Dashboard listing (status, search, sort, order)
//   POST   /permits                                          - Submit a permit request
//   GET    /permits/stats                                    - Counters per status
//   GET    /permits/{permitId}                               - Permit request detail
//   PUT    /permits/{permitId}                               - Update status fields, comments, attachments
//   DELETE /permits/{permitId}                               - Delete a permit request
//
// Decisions:
//   POST   /permits/{permitId}/approve                       - Approve with a validity date
//   POST   /permits/{permitId}/refuse                        - Refuse with a reason
//   GET    /permits/{permitId}/document                      - Visit permit PDF
//
// Attachments:
//   POST   /attachments/upload-url                           - Presigned upload URL
//   GET    /permits/{permitId}/attachments/{attachmentId}/download-url - Presigned download URL
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"method":      request.HTTPMethod,
		"path":        request.Path,
		"resource":    request.Resource,
		"path_params": request.PathParameters,
		"operation":   "Handler",
	}).Debug("Processing permit management request")

	switch {
	case request.Resource == "/permits" && request.HTTPMethod == "GET":
		return handleListPermits(ctx, request)
	case request.Resource == "/permits" && request.HTTPMethod == "POST":
		return handleCreatePermit(ctx, request)
	case request.Resource == "/permits/stats" && request.HTTPMethod == "GET":
		return handleGetPermitStats(ctx, request)
	case request.Resource == "/permits/{permitId}" && request.HTTPMethod == "GET":
		return handleGetPermit(ctx, request)
	case request.Resource == "/permits/{permitId}" && request.HTTPMethod == "PUT":
		return handleUpdatePermit(ctx, request)
	case request.Resource == "/permits/{permitId}" && request.HTTPMethod == "DELETE":
		return handleDeletePermit(ctx, request)

	case request.Resource == "/permits/{permitId}/approve" && request.HTTPMethod == "POST":
		return handleApprovePermit(ctx, request)
	case request.Resource == "/permits/{permitId}/refuse" && request.HTTPMethod == "POST":
		return handleRefusePermit(ctx, request)
	case request.Resource == "/permits/{permitId}/document" && request.HTTPMethod == "GET":
		return handleGetPermitDocument(ctx, request)

	case request.Resource == "/attachments/upload-url" && request.HTTPMethod == "POST":
		return handleGenerateUploadURL(ctx, request)
	case request.Resource == "/permits/{permitId}/attachments/{attachmentId}/download-url" && request.HTTPMethod == "GET":
		return handleGenerateDownloadURL(ctx, request)

	default:
		logger.WithFields(logrus.Fields{
			"method":    request.HTTPMethod,
			"resource":  request.Resource,
			"operation": "Handler",
		}).Warn("Endpoint not found")
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil
	}
}

// handleListPermits handles GET /permits
func handleListPermits(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	query := request.QueryStringParameters
	filter := models.PermitFilter{
		Status: query["status"],
		Search: query["search"],
		SortBy: query["sort"],
		Order:  query["order"],
	}

	var errs []string
	if filter.Status != "" && !models.IsValidStatus(filter.Status) {
		errs = append(errs, "status must be one of pending, approved, refused")
	}
	if filter.SortBy != "" && filter.SortBy != models.SortByCreatedAt && filter.SortBy != models.SortByName {
		errs = append(errs, "sort must be created_at or name")
	}
	if filter.Order != "" && filter.Order != models.SortOrderAsc && filter.Order != models.SortOrderDesc {
		errs = append(errs, "order must be asc or desc")
	}
	if len(errs) > 0 {
		return api.ValidationErrorResponse("Invalid query parameters", errs, logger), nil
	}

	permits, err := permitRepository.FilterPermits(ctx, filter)
	if err != nil {
		return permitErrorResponse(err, "handleListPermits"), nil
	}

	response := models.PermitListResponse{
		Permits:    permits,
		TotalCount: len(permits),
	}
	return api.SuccessResponse(http.StatusOK, response, logger), nil
}

// handleCreatePermit handles POST /permits
func handleCreatePermit(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var draft models.PermitDraft
	if err := api.ParseJSONBody(request.Body, &draft); err != nil {
		logger.WithError(err).Error("Invalid request body for create permit")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger), nil
	}

	errs, err := checkUploadedAttachments(draft.Attachments)
	if err != nil {
		return api.ErrorResponse(http.StatusBadGateway, "Failed to verify attachments", logger), nil
	}
	if len(errs) > 0 {
		return api.ValidationErrorResponse("Invalid permit request", errs, logger), nil
	}

	permit, err := permitRepository.CreatePermit(ctx, &draft)
	if err != nil {
		return permitErrorResponse(err, "handleCreatePermit"), nil
	}

	return api.SuccessResponse(http.StatusCreated, permit, logger), nil
}

// handleGetPermitStats handles GET /permits/stats
func handleGetPermitStats(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	stats, err := permitRepository.GetPermitStats(ctx)
	if err != nil {
		return permitErrorResponse(err, "handleGetPermitStats"), nil
	}
	return api.SuccessResponse(http.StatusOK, stats, logger), nil
}

// handleGetPermit handles GET /permits/{permitId}
func handleGetPermit(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	permit, err := permitRepository.GetPermit(ctx, request.PathParameters["permitId"])
	if err != nil {
		return permitErrorResponse(err, "handleGetPermit"), nil
	}
	return api.SuccessResponse(http.StatusOK, permit, logger), nil
}

// handleUpdatePermit handles PUT /permits/{permitId}
func handleUpdatePermit(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var update models.PermitUpdate
	if err := api.ParseJSONBody(request.Body, &update); err != nil {
		logger.WithError(err).Error("Invalid request body for update permit")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger), nil
	}

	if update.Attachments != nil {
		errs, err := checkUploadedAttachments(*update.Attachments)
		if err != nil {
			return api.ErrorResponse(http.StatusBadGateway, "Failed to verify attachments", logger), nil
		}
		if len(errs) > 0 {
			return api.ValidationErrorResponse("Invalid permit update", errs, logger), nil
		}
	}

	permit, err := permitRepository.UpdatePermit(ctx, request.PathParameters["permitId"], &update)
	if err != nil {
		return permitErrorResponse(err, "handleUpdatePermit"), nil
	}
	return api.SuccessResponse(http.StatusOK, permit, logger), nil
}

// handleDeletePermit handles DELETE /permits/{permitId}. Uploaded attachment
// objects are removed after the record; a failure there is only logged.
func handleDeletePermit(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	permitID := request.PathParameters["permitId"]

	permit, err := permitRepository.GetPermit(ctx, permitID)
	if err != nil {
		return permitErrorResponse(err, "handleDeletePermit"), nil
	}

	removed, err := permitRepository.DeletePermit(ctx, permitID)
	if err != nil {
		return permitErrorResponse(err, "handleDeletePermit"), nil
	}
	if !removed {
		return api.ErrorResponse(http.StatusNotFound, "Permit request not found", logger), nil
	}

	if attachmentClient != nil {
		for _, attachment := range permit.Attachments {
			if attachment.IsInline() {
				continue
			}
			if err := attachmentClient.DeleteObject(attachment.ContentRef); err != nil {
				logger.WithError(err).WithFields(logrus.Fields{
					"permit_id":     permitID,
					"attachment_id": attachment.ID,
					"operation":     "handleDeletePermit",
				}).Warn("Failed to delete attachment object")
			}
		}
	}

	return api.NoContentResponse(), nil
}

// handleApprovePermit handles POST /permits/{permitId}/approve
func handleApprovePermit(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var approveReq models.ApprovePermitRequest
	if err := api.ParseJSONBody(request.Body, &approveReq); err != nil {
		logger.WithError(err).Error("Invalid request body for approve permit")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger), nil
	}

	permit, err := permitRepository.ApprovePermit(ctx, request.PathParameters["permitId"], approveReq.ValidUntil)
	if err != nil {
		return permitErrorResponse(err, "handleApprovePermit"), nil
	}
	return api.SuccessResponse(http.StatusOK, permit, logger), nil
}

// handleRefusePermit handles POST /permits/{permitId}/refuse
func handleRefusePermit(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var refuseReq models.RefusePermitRequest
	if err := api.ParseJSONBody(request.Body, &refuseReq); err != nil {
		logger.WithError(err).Error("Invalid request body for refuse permit")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger), nil
	}

	permit, err := permitRepository.RefusePermit(ctx, request.PathParameters["permitId"], refuseReq.Reason)
	if err != nil {
		return permitErrorResponse(err, "handleRefusePermit"), nil
	}
	return api.SuccessResponse(http.StatusOK, permit, logger), nil
}

// handleGetPermitDocument handles GET /permits/{permitId}/document
func handleGetPermitDocument(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	permit, err := permitRepository.GetPermit(ctx, request.PathParameters["permitId"])
	if err != nil {
		return permitErrorResponse(err, "handleGetPermitDocument"), nil
	}

	content, err := document.RenderPermitPDF(permit)
	if err != nil {
		return permitErrorResponse(err, "handleGetPermitDocument"), nil
	}

	logger.WithFields(logrus.Fields{
		"permit_id": permit.ID,
		"bytes":     len(content),
		"operation": "handleGetPermitDocument",
	}).Info("Permit document generated")

	return api.FileResponse(content, document.PermitContentType, document.PermitFileName(permit)), nil
}

// handleGenerateUploadURL handles POST /attachments/upload-url
func handleGenerateUploadURL(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if attachmentClient == nil {
		return api.ErrorResponse(http.StatusServiceUnavailable, "Attachment storage is not configured", logger), nil
	}

	var uploadReq models.AttachmentUploadRequest
	if err := api.ParseJSONBody(request.Body, &uploadReq); err != nil {
		logger.WithError(err).Error("Invalid request body for upload URL")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger), nil
	}

	if uploadReq.FileName == "" {
		return api.ErrorResponse(http.StatusBadRequest, "Missing required fields", logger), nil
	}
	if !models.ValidateFileType(uploadReq.FileName) {
		return api.ErrorResponse(http.StatusBadRequest, "File type not allowed", logger), nil
	}
	if uploadReq.FileSize <= 0 || uploadReq.FileSize > models.MaxAttachmentSize {
		return api.ErrorResponse(http.StatusBadRequest, "File size must be between 1 byte and 10MB", logger), nil
	}

	now := time.Now().UTC()
	attachment := models.Attachment{
		ID:         uuid.NewString(),
		Name:       uploadReq.FileName,
		MimeType:   models.GetMimeType(uploadReq.FileName),
		UploadedAt: now,
	}
	attachment.ContentRef = models.GenerateAttachmentS3Key(attachment.ID, attachment.Name, now)

	uploadURL, err := attachmentClient.GenerateUploadURL(attachment.ContentRef, attachment.MimeType, config.UploadURLExpiry)
	if err != nil {
		logger.WithError(err).Error("Failed to generate upload URL")
		return api.ErrorResponse(http.StatusInternalServerError, "Failed to generate upload URL", logger), nil
	}

	response := models.AttachmentUploadResponse{
		Attachment: attachment,
		UploadURL:  uploadURL,
		ExpiresAt:  now.Add(config.UploadURLExpiry).Format(time.RFC3339),
	}
	return api.SuccessResponse(http.StatusOK, response, logger), nil
}

// handleGenerateDownloadURL handles GET /permits/{permitId}/attachments/{attachmentId}/download-url
func handleGenerateDownloadURL(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if attachmentClient == nil {
		return api.ErrorResponse(http.StatusServiceUnavailable, "Attachment storage is not configured", logger), nil
	}

	permit, err := permitRepository.GetPermit(ctx, request.PathParameters["permitId"])
	if err != nil {
		return permitErrorResponse(err, "handleGenerateDownloadURL"), nil
	}

	attachmentID := request.PathParameters["attachmentId"]
	var attachment *models.Attachment
	for i := range permit.Attachments {
		if permit.Attachments[i].ID == attachmentID {
			attachment = &permit.Attachments[i]
			break
		}
	}
	if attachment == nil {
		return api.ErrorResponse(http.StatusNotFound, "Attachment not found", logger), nil
	}
	if attachment.IsInline() {
		return api.ErrorResponse(http.StatusConflict, "Attachment content is stored in the permit request", logger), nil
	}

	downloadURL, err := attachmentClient.GenerateDownloadURL(attachment.ContentRef, config.DownloadURLExpiry)
	if err != nil {
		logger.WithError(err).Error("Failed to generate download URL")
		return api.ErrorResponse(http.StatusInternalServerError, "Failed to generate download URL", logger), nil
	}

	// A cached URL was signed up to URLCacheTTL ago
	response := models.AttachmentDownloadResponse{
		DownloadURL: downloadURL,
		FileName:    attachment.Name,
		MimeType:    attachment.MimeType,
		ExpiresAt:   time.Now().Add(config.DownloadURLExpiry - cfg.URLCacheTTL).Format(time.RFC3339),
	}
	return api.SuccessResponse(http.StatusOK, response, logger), nil
}

// checkUploadedAttachments makes sure S3 attachments were actually uploaded
// before a record references them
func checkUploadedAttachments(attachments []models.Attachment) ([]string, error) {
	if attachmentClient == nil {
		return nil, nil
	}

	var errs []string
	for i, attachment := range attachments {
		if attachment.ContentRef == "" || attachment.IsInline() {
			continue
		}
		exists, err := attachmentClient.ObjectExists(attachment.ContentRef)
		if err != nil {
			logger.WithError(err).WithField("key", attachment.ContentRef).Error("Failed to check attachment object")
			return nil, fmt.Errorf("failed to check attachment %s: %w", attachment.ContentRef, err)
		}
		if !exists {
			errs = append(errs, fmt.Sprintf("attachments[%d] has not been uploaded", i))
		}
	}
	return errs, nil
}

// permitErrorResponse maps repository and document errors to HTTP responses
func permitErrorResponse(err error, operation string) events.APIGatewayProxyResponse {
	var validationErrs models.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return api.ValidationErrorResponse("Invalid permit request", validationErrs, logger)
	case errors.Is(err, data.ErrPermitNotFound):
		return api.ErrorResponse(http.StatusNotFound, "Permit request not found", logger)
	case errors.Is(err, data.ErrInvalidTransition):
		return api.ErrorResponse(http.StatusConflict, "Permit request has already been decided", logger)
	case errors.Is(err, document.ErrNotApproved):
		return api.ErrorResponse(http.StatusConflict, "Permit request is not approved", logger)
	}

	logger.WithError(err).WithField("operation", operation).Error("Permit request operation failed")
	return api.ErrorResponse(http.StatusInternalServerError, "Internal server error", logger)
}

func init() {
	isLocal = parseIsLocal()

	// Logger Setup
	logger = setupLogger(isLocal)
}

func main() {
	if err := setup(context.Background()); err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "main",
			"error":     err.Error(),
		}).Fatal("Error initializing permit management service")
	}
	lambda.Start(Handler)
}

// setup loads the configuration and opens the permit store once per container
func setup(ctx context.Context) error {
	var err error

	// Initialize AWS SSM Parameter Store client
	ssmClient := clients.NewSSMClient(isLocal, config.Region())
	ssmRepository = &data.SSMDao{
		SSM:    ssmClient,
		Logger: logger,
	}

	ssmParams, err = ssmRepository.GetParameters()
	if err != nil {
		return fmt.Errorf("error while getting SSM params from parameter store: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"operation":    "setup",
		"params_count": len(ssmParams),
	}).Debug("Retrieved SSM parameters")

	cfg = config.Load(ssmParams)

	facilities, err = models.DefaultFacilityCatalog()
	if err != nil {
		return fmt.Errorf("error loading facility catalogue: %w", err)
	}

	backend, err := config.NewBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("error opening storage backend: %w", err)
	}

	permitRepository, err = data.NewPermitDao(ctx, backend, facilities, logger)
	if err != nil {
		return fmt.Errorf("error creating permit repository: %w", err)
	}

	if cfg.AttachmentBucket != "" {
		s3Client := clients.NewS3Client(clients.NewS3Service(cfg.IsLocal, cfg.Region), cfg.AttachmentBucket)
		if cfg.URLCacheTTL > 0 {
			attachmentClient = clients.NewCachingS3Client(s3Client, cfg.URLCacheSize, cfg.URLCacheTTL)
		} else {
			attachmentClient = s3Client
		}
	} else {
		logger.WithField("operation", "setup").Warn("ATTACHMENT_BUCKET is not set, attachment URLs are disabled")
	}

	logger.WithFields(logrus.Fields{
		"operation": "setup",
		"backend":   cfg.StorageBackend,
	}).Info("Permit management service initialized successfully")

	return nil
}

func parseIsLocal() bool {
	isLocal, _ := strconv.ParseBool(os.Getenv("IS_LOCAL"))
	return isLocal
}

func setupLogger(isLocal bool) *logrus.Logger {
	logger := logrus.New()
	util.SetLogLevel(logger, os.Getenv("LOG_LEVEL"))
	logger.SetFormatter(&logrus.JSONFormatter{PrettyPrint: isLocal})
	return logger
}
