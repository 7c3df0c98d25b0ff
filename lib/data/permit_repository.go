package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"visitpermits/lib/models"
	"visitpermits/lib/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	ErrPermitNotFound    = errors.New("permit request not found")
	ErrInvalidTransition = errors.New("invalid permit status transition")
	ErrMalformedData     = errors.New("malformed stored permit data")
)

// PermitRepository defines the interface for permit request operations
type PermitRepository interface {
	ListPermits(ctx context.Context) ([]models.PermitRequest, error)
	GetPermit(ctx context.Context, permitID string) (*models.PermitRequest, error)
	CreatePermit(ctx context.Context, draft *models.PermitDraft) (*models.PermitRequest, error)
	UpdatePermit(ctx context.Context, permitID string, update *models.PermitUpdate) (*models.PermitRequest, error)
	ApprovePermit(ctx context.Context, permitID string, validUntil string) (*models.PermitRequest, error)
	RefusePermit(ctx context.Context, permitID string, reason string) (*models.PermitRequest, error)
	DeletePermit(ctx context.Context, permitID string) (bool, error)
	FilterPermits(ctx context.Context, filter models.PermitFilter) ([]models.PermitRequest, error)
	GetPermitStats(ctx context.Context) (*models.PermitStats, error)
}

// PermitDao implements the PermitRepository interface over a storage backend
// holding the whole collection. Every operation reads the collection, works on
// it in memory and, for mutations, writes it back whole.
type PermitDao struct {
	Backend    storage.Backend
	Facilities *models.FacilityCatalog
	Logger     *logrus.Logger

	// Now and NewID default to time.Now and uuid.NewString
	Now   func() time.Time
	NewID func() string
}

// NewPermitDao checks the backend before handing out a repository, so an
// unusable storage medium fails here instead of on the first request.
func NewPermitDao(ctx context.Context, backend storage.Backend, facilities *models.FacilityCatalog, logger *logrus.Logger) (*PermitDao, error) {
	if err := storage.Check(ctx, backend); err != nil {
		if !errors.Is(err, storage.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
		}
		return nil, err
	}
	if facilities == nil {
		return nil, fmt.Errorf("facility catalogue is required")
	}

	return &PermitDao{
		Backend:    backend,
		Facilities: facilities,
		Logger:     logger,
	}, nil
}

func (dao *PermitDao) now() time.Time {
	if dao.Now != nil {
		return dao.Now().UTC()
	}
	return time.Now().UTC()
}

func (dao *PermitDao) newID() string {
	if dao.NewID != nil {
		return dao.NewID()
	}
	return uuid.NewString()
}

// load reads and decodes the whole collection
func (dao *PermitDao) load(ctx context.Context) ([]models.PermitRequest, error) {
	raw, err := dao.Backend.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read permit requests: %w", err)
	}

	permits := []models.PermitRequest{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return permits, nil
	}
	if err := json.Unmarshal(raw, &permits); err != nil {
		dao.Logger.WithError(err).WithField("operation", "load").Error("Stored permit requests cannot be decoded")
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if permits == nil {
		permits = []models.PermitRequest{}
	}
	return permits, nil
}

// save encodes and writes the whole collection
func (dao *PermitDao) save(ctx context.Context, permits []models.PermitRequest) error {
	raw, err := json.Marshal(permits)
	if err != nil {
		return fmt.Errorf("failed to encode permit requests: %w", err)
	}
	if err := dao.Backend.Write(ctx, raw); err != nil {
		return fmt.Errorf("failed to write permit requests: %w", err)
	}
	return nil
}

// ListPermits returns every stored permit request in insertion order
func (dao *PermitDao) ListPermits(ctx context.Context) ([]models.PermitRequest, error) {
	return dao.load(ctx)
}

// GetPermit retrieves a permit request by ID
func (dao *PermitDao) GetPermit(ctx context.Context, permitID string) (*models.PermitRequest, error) {
	permits, err := dao.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range permits {
		if permits[i].ID == permitID {
			return &permits[i], nil
		}
	}
	return nil, ErrPermitNotFound
}

// CreatePermit validates a draft and appends a new pending permit request
func (dao *PermitDao) CreatePermit(ctx context.Context, draft *models.PermitDraft) (*models.PermitRequest, error) {
	if draft == nil {
		return nil, models.ValidationErrors{"permit draft is required"}
	}
	errs := models.ValidateDraft(draft)

	facility, found := dao.Facilities.Get(draft.Detainee.FacilityID)
	if draft.Detainee.FacilityID != "" && !found {
		errs = append(errs, "detainee.facility_id does not reference a known facility")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	permits, err := dao.load(ctx)
	if err != nil {
		return nil, err
	}

	now := dao.now()
	permit := models.PermitRequest{
		ID:         dao.newID(),
		CreatedAt:  now,
		ModifiedAt: now,
		Status:     models.PermitStatusPending,
		Visitor:    draft.Visitor,
		Detainee: models.Detainee{
			LastName:           draft.Detainee.LastName,
			FirstName:          draft.Detainee.FirstName,
			RegistrationNumber: draft.Detainee.RegistrationNumber,
			Facility:           facility,
		},
		RelationToDetainee: draft.RelationToDetainee,
		Attachments:        make([]models.Attachment, 0, len(draft.Attachments)),
		Comments:           trimmedOrNil(draft.Comments),
	}

	if permit.RelationToDetainee == models.RelationOther {
		permit.RelationDetail = trimmedOrNil(draft.RelationDetail)
	}

	for _, attachment := range draft.Attachments {
		if attachment.ID == "" {
			attachment.ID = dao.newID()
		}
		if attachment.UploadedAt.IsZero() {
			attachment.UploadedAt = now
		}
		permit.Attachments = append(permit.Attachments, attachment)
	}

	permits = append(permits, permit)
	if err := dao.save(ctx, permits); err != nil {
		dao.Logger.WithError(err).WithField("operation", "CreatePermit").Error("Failed to create permit request")
		return nil, err
	}

	dao.Logger.WithFields(logrus.Fields{
		"permit_id":   permit.ID,
		"facility_id": facility.ID,
		"attachments": len(permit.Attachments),
		"operation":   "CreatePermit",
	}).Info("Permit request created successfully")

	return &permit, nil
}

// UpdatePermit merges the given fields into an existing permit request
func (dao *PermitDao) UpdatePermit(ctx context.Context, permitID string, update *models.PermitUpdate) (*models.PermitRequest, error) {
	if errs := validateUpdate(update); len(errs) > 0 {
		return nil, errs
	}

	permits, err := dao.load(ctx)
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range permits {
		if permits[i].ID == permitID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, ErrPermitNotFound
	}

	permit := permits[index]
	if update.Status != nil && !ValidTransition(permit.Status, *update.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, permit.Status, *update.Status)
	}

	applyUpdate(&permit, update)
	if errs := checkStatusFields(&permit); len(errs) > 0 {
		return nil, errs
	}
	permit.ModifiedAt = dao.now()

	permits[index] = permit
	if err := dao.save(ctx, permits); err != nil {
		dao.Logger.WithError(err).WithFields(logrus.Fields{
			"permit_id": permitID,
			"operation": "UpdatePermit",
		}).Error("Failed to update permit request")
		return nil, err
	}

	return &permit, nil
}

// ApprovePermit marks a pending permit request as approved until validUntil
func (dao *PermitDao) ApprovePermit(ctx context.Context, permitID string, validUntil string) (*models.PermitRequest, error) {
	if !models.IsValidDate(validUntil) {
		return nil, models.ValidationErrors{"valid_until must be a YYYY-MM-DD date"}
	}

	status := models.PermitStatusApproved
	permit, err := dao.UpdatePermit(ctx, permitID, &models.PermitUpdate{
		Status:     &status,
		ValidUntil: &validUntil,
	})
	if err != nil {
		return nil, err
	}

	dao.Logger.WithFields(logrus.Fields{
		"permit_id":   permitID,
		"valid_until": validUntil,
		"operation":   "ApprovePermit",
	}).Info("Permit request approved")

	return permit, nil
}

// RefusePermit marks a pending permit request as refused
func (dao *PermitDao) RefusePermit(ctx context.Context, permitID string, reason string) (*models.PermitRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, models.ValidationErrors{"reason is required"}
	}

	status := models.PermitStatusRefused
	permit, err := dao.UpdatePermit(ctx, permitID, &models.PermitUpdate{
		Status:        &status,
		RefusalReason: &reason,
	})
	if err != nil {
		return nil, err
	}

	dao.Logger.WithFields(logrus.Fields{
		"permit_id": permitID,
		"operation": "RefusePermit",
	}).Info("Permit request refused")

	return permit, nil
}

// DeletePermit removes a permit request, reporting whether one was removed
func (dao *PermitDao) DeletePermit(ctx context.Context, permitID string) (bool, error) {
	permits, err := dao.load(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]models.PermitRequest, 0, len(permits))
	for _, permit := range permits {
		if permit.ID != permitID {
			kept = append(kept, permit)
		}
	}
	if len(kept) == len(permits) {
		return false, nil
	}

	if err := dao.save(ctx, kept); err != nil {
		dao.Logger.WithError(err).WithFields(logrus.Fields{
			"permit_id": permitID,
			"operation": "DeletePermit",
		}).Error("Failed to delete permit request")
		return false, err
	}

	dao.Logger.WithFields(logrus.Fields{
		"permit_id": permitID,
		"operation": "DeletePermit",
	}).Info("Permit request deleted")

	return true, nil
}

// FilterPermits returns the dashboard view: status filter, name search, sort
func (dao *PermitDao) FilterPermits(ctx context.Context, filter models.PermitFilter) ([]models.PermitRequest, error) {
	permits, err := dao.load(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	filtered := make([]models.PermitRequest, 0, len(permits))
	for _, permit := range permits {
		if filter.Status != "" && permit.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(permit.VisitorName()), search) &&
			!strings.Contains(strings.ToLower(permit.DetaineeName()), search) {
			continue
		}
		filtered = append(filtered, permit)
	}

	ascending := filter.Order == models.SortOrderAsc
	switch filter.SortBy {
	case models.SortByName:
		collator := collate.New(language.French, collate.IgnoreCase)
		sort.SliceStable(filtered, func(i, j int) bool {
			cmp := collator.CompareString(filtered[i].Visitor.LastName, filtered[j].Visitor.LastName)
			if ascending {
				return cmp < 0
			}
			return cmp > 0
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			if ascending {
				return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
			}
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	}

	return filtered, nil
}

// GetPermitStats returns the number of permit requests per status
func (dao *PermitDao) GetPermitStats(ctx context.Context) (*models.PermitStats, error) {
	permits, err := dao.load(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.PermitStats{
		Total: len(permits),
		ByStatus: map[string]int{
			models.PermitStatusPending:  0,
			models.PermitStatusApproved: 0,
			models.PermitStatusRefused:  0,
		},
	}
	for _, permit := range permits {
		stats.ByStatus[permit.Status]++
	}
	return stats, nil
}

func validateUpdate(update *models.PermitUpdate) models.ValidationErrors {
	if update == nil {
		return models.ValidationErrors{"permit update is required"}
	}

	var errs models.ValidationErrors
	if update.Status != nil && !models.IsValidStatus(*update.Status) {
		errs = append(errs, "status must be one of pending, approved, refused")
	}
	if update.ValidUntil != nil && !models.IsValidDate(*update.ValidUntil) {
		errs = append(errs, "valid_until must be a YYYY-MM-DD date")
	}
	if update.RefusalReason != nil && strings.TrimSpace(*update.RefusalReason) == "" {
		errs = append(errs, "refusal_reason must not be empty")
	}
	if update.Attachments != nil {
		for i, attachment := range *update.Attachments {
			if !models.IsAllowedMimeType(attachment.MimeType) {
				errs = append(errs, fmt.Sprintf("attachments[%d] must be a PDF, JPG or PNG file", i))
			}
		}
	}
	return errs
}

func applyUpdate(permit *models.PermitRequest, update *models.PermitUpdate) {
	if update.Status != nil {
		permit.Status = *update.Status
	}
	if update.ValidUntil != nil {
		permit.ValidUntil = update.ValidUntil
	}
	if update.RefusalReason != nil {
		reason := *update.RefusalReason
		permit.RefusalReason = &reason
	}
	if update.Comments != nil {
		permit.Comments = trimmedOrNil(update.Comments)
	}
	if update.Attachments != nil {
		permit.Attachments = append([]models.Attachment{}, (*update.Attachments)...)
	}

	// A status carries only its own field
	if permit.Status != models.PermitStatusApproved {
		permit.ValidUntil = nil
	}
	if permit.Status != models.PermitStatusRefused {
		permit.RefusalReason = nil
	}
}

func checkStatusFields(permit *models.PermitRequest) models.ValidationErrors {
	switch {
	case permit.Status == models.PermitStatusApproved && permit.ValidUntil == nil:
		return models.ValidationErrors{"valid_until is required for an approved permit request"}
	case permit.Status == models.PermitStatusRefused && permit.RefusalReason == nil:
		return models.ValidationErrors{"refusal_reason is required for a refused permit request"}
	}
	return nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
