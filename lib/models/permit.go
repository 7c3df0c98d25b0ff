package models

import (
	"time"
)

// PermitRequest represents a visitor's request for a visit permit to a detainee
type PermitRequest struct {
	ID                 string       `json:"id"`
	CreatedAt          time.Time    `json:"created_at"`
	ModifiedAt         time.Time    `json:"modified_at"`
	Status             string       `json:"status"`
	Visitor            Visitor      `json:"visitor"`
	Detainee           Detainee     `json:"detainee"`
	RelationToDetainee string       `json:"relation_to_detainee"`
	RelationDetail     *string      `json:"relation_detail,omitempty"` // Only when relation is "other"
	Attachments        []Attachment `json:"attachments"`
	Comments           *string      `json:"comments,omitempty"`
	ValidUntil         *string      `json:"valid_until,omitempty"`    // YYYY-MM-DD, only when approved
	RefusalReason      *string      `json:"refusal_reason,omitempty"` // Only when refused
}

// Visitor represents the person requesting the permit
type Visitor struct {
	LastName   string  `json:"last_name"`
	FirstName  string  `json:"first_name"`
	BirthDate  string  `json:"birth_date"` // YYYY-MM-DD
	Address    string  `json:"address"`
	PostalCode string  `json:"postal_code"`
	City       string  `json:"city"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone,omitempty"`
}

// Detainee represents the person being visited. The facility is copied by
// value at submission time.
type Detainee struct {
	LastName           string   `json:"last_name"`
	FirstName          string   `json:"first_name"`
	RegistrationNumber string   `json:"registration_number"`
	Facility           Facility `json:"facility"`
}

// Attachment represents a supporting document attached to a permit request
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
	ContentRef string    `json:"content_ref"` // S3 key or data URL
}

// PermitDraft represents the validated output of the submission form
type PermitDraft struct {
	Visitor            Visitor       `json:"visitor"`
	Detainee           DraftDetainee `json:"detainee"`
	RelationToDetainee string        `json:"relation_to_detainee"`
	RelationDetail     *string       `json:"relation_detail,omitempty"`
	Attachments        []Attachment  `json:"attachments,omitempty"`
	Comments           *string       `json:"comments,omitempty"`
}

// DraftDetainee identifies the detainee in a draft; the facility is referenced
// by id and resolved against the catalogue on creation.
type DraftDetainee struct {
	LastName           string `json:"last_name"`
	FirstName          string `json:"first_name"`
	RegistrationNumber string `json:"registration_number"`
	FacilityID         string `json:"facility_id"`
}

// PermitUpdate carries the fields a partial update may change. Nil fields are
// left untouched.
type PermitUpdate struct {
	Status        *string       `json:"status,omitempty"`
	ValidUntil    *string       `json:"valid_until,omitempty"`
	RefusalReason *string       `json:"refusal_reason,omitempty"`
	Comments      *string       `json:"comments,omitempty"`
	Attachments   *[]Attachment `json:"attachments,omitempty"`
}

// ApprovePermitRequest is the body of an approval action
type ApprovePermitRequest struct {
	ValidUntil string `json:"valid_until"`
}

// RefusePermitRequest is the body of a refusal action
type RefusePermitRequest struct {
	Reason string `json:"reason"`
}

// PermitFilter holds the dashboard listing criteria
type PermitFilter struct {
	Status string // empty means all statuses
	Search string // matched against visitor and detainee names
	SortBy string // SortByCreatedAt or SortByName
	Order  string // SortOrderAsc or SortOrderDesc
}

// PermitListResponse represents a filtered list of permit requests
type PermitListResponse struct {
	Permits    []PermitRequest `json:"permits"`
	TotalCount int             `json:"total_count"`
}

// PermitStats represents the dashboard counters
type PermitStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// Status constants
const (
	PermitStatusPending  = "pending"
	PermitStatusApproved = "approved"
	PermitStatusRefused  = "refused"
)

// Relation constants
const (
	RelationFamily = "family"
	RelationSpouse = "spouse"
	RelationFriend = "friend"
	RelationLawyer = "lawyer"
	RelationOther  = "other"
)

// Sort constants
const (
	SortByCreatedAt = "created_at"
	SortByName      = "name"
	SortOrderAsc    = "asc"
	SortOrderDesc   = "desc"
)

// DateLayout is the layout of calendar dates (birth date, validity date)
const DateLayout = "2006-01-02"

// IsValidStatus reports whether status is one of the permit statuses
func IsValidStatus(status string) bool {
	switch status {
	case PermitStatusPending, PermitStatusApproved, PermitStatusRefused:
		return true
	}
	return false
}

// IsValidRelation reports whether relation is one of the accepted relations
func IsValidRelation(relation string) bool {
	switch relation {
	case RelationFamily, RelationSpouse, RelationFriend, RelationLawyer, RelationOther:
		return true
	}
	return false
}

// IsTerminal reports whether no transition is defined out of status
func IsTerminal(status string) bool {
	return status == PermitStatusApproved || status == PermitStatusRefused
}

// VisitorName returns "last first" for display and search
func (p *PermitRequest) VisitorName() string {
	return p.Visitor.LastName + " " + p.Visitor.FirstName
}

// DetaineeName returns "last first" for display and search
func (p *PermitRequest) DetaineeName() string {
	return p.Detainee.LastName + " " + p.Detainee.FirstName
}
