package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	postalCodePattern = regexp.MustCompile(`^[0-9]{5}$`)
)

// ValidationErrors lists every field that failed validation
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(v, "; ")
}

// ValidateDraft checks a draft the way the submission form does: required
// fields, email and postal code shapes, and the relation detail rule.
// Facility resolution is left to the caller.
func ValidateDraft(draft *PermitDraft) ValidationErrors {
	var errs ValidationErrors

	required := func(value, message string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, message)
		}
	}

	v := draft.Visitor
	required(v.LastName, "visitor.last_name is required")
	required(v.FirstName, "visitor.first_name is required")
	required(v.Address, "visitor.address is required")
	required(v.PostalCode, "visitor.postal_code is required")
	required(v.City, "visitor.city is required")
	required(v.Email, "visitor.email is required")

	if v.BirthDate == "" {
		errs = append(errs, "visitor.birth_date is required")
	} else if !IsValidDate(v.BirthDate) {
		errs = append(errs, "visitor.birth_date must be a YYYY-MM-DD date")
	}
	if v.Email != "" && !emailPattern.MatchString(v.Email) {
		errs = append(errs, "visitor.email is not a valid email address")
	}
	if v.PostalCode != "" && !postalCodePattern.MatchString(v.PostalCode) {
		errs = append(errs, "visitor.postal_code must contain 5 digits")
	}

	d := draft.Detainee
	required(d.LastName, "detainee.last_name is required")
	required(d.FirstName, "detainee.first_name is required")
	required(d.RegistrationNumber, "detainee.registration_number is required")
	required(d.FacilityID, "detainee.facility_id is required")

	if !IsValidRelation(draft.RelationToDetainee) {
		errs = append(errs, "relation_to_detainee must be one of family, spouse, friend, lawyer, other")
	} else if draft.RelationToDetainee == RelationOther &&
		(draft.RelationDetail == nil || strings.TrimSpace(*draft.RelationDetail) == "") {
		errs = append(errs, "relation_detail is required when relation_to_detainee is other")
	}

	for i, attachment := range draft.Attachments {
		if attachment.Name == "" || attachment.ContentRef == "" {
			errs = append(errs, fmt.Sprintf("attachments[%d] requires name and content_ref", i))
			continue
		}
		if !IsAllowedMimeType(attachment.MimeType) {
			errs = append(errs, fmt.Sprintf("attachments[%d] must be a PDF, JPG or PNG file", i))
		}
	}

	return errs
}

// IsValidDate reports whether value is a YYYY-MM-DD calendar date
func IsValidDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

