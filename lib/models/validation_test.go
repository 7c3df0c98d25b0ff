package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDraft() *PermitDraft {
	return &PermitDraft{
		Visitor: Visitor{
			LastName:   "Dupont",
			FirstName:  "Jean",
			BirthDate:  "1980-05-12",
			Address:    "12 rue des Lilas",
			PostalCode: "75011",
			City:       "Paris",
			Email:      "jean.dupont@example.fr",
		},
		Detainee: DraftDetainee{
			LastName:           "Martin",
			FirstName:          "Paul",
			RegistrationNumber: "123456",
			FacilityID:         "3",
		},
		RelationToDetainee: RelationSpouse,
	}
}

func Test_ValidateDraft_Valid(t *testing.T) {
	assert.Empty(t, ValidateDraft(validDraft()))
}

func Test_ValidateDraft_Fields(t *testing.T) {
	blank := "  "
	cases := []struct {
		name   string
		mutate func(d *PermitDraft)
		want   string
	}{
		{"missing first name", func(d *PermitDraft) { d.Visitor.FirstName = " " }, "visitor.first_name is required"},
		{"missing birth date", func(d *PermitDraft) { d.Visitor.BirthDate = "" }, "visitor.birth_date is required"},
		{"bad birth date", func(d *PermitDraft) { d.Visitor.BirthDate = "12/05/1980" }, "visitor.birth_date must be a YYYY-MM-DD date"},
		{"bad email", func(d *PermitDraft) { d.Visitor.Email = "jean@dupont" }, "visitor.email is not a valid email address"},
		{"bad postal code", func(d *PermitDraft) { d.Visitor.PostalCode = "7501A" }, "visitor.postal_code must contain 5 digits"},
		{"missing registration", func(d *PermitDraft) { d.Detainee.RegistrationNumber = "" }, "detainee.registration_number is required"},
		{"missing facility", func(d *PermitDraft) { d.Detainee.FacilityID = "" }, "detainee.facility_id is required"},
		{"unknown relation", func(d *PermitDraft) { d.RelationToDetainee = "cousin" }, "relation_to_detainee must be one of family, spouse, friend, lawyer, other"},
		{"other without detail", func(d *PermitDraft) {
			d.RelationToDetainee = RelationOther
			d.RelationDetail = &blank
		}, "relation_detail is required when relation_to_detainee is other"},
		{"attachment type", func(d *PermitDraft) {
			d.Attachments = []Attachment{{Name: "a.gif", MimeType: "image/gif", ContentRef: "k"}}
		}, "attachments[0] must be a PDF, JPG or PNG file"},
		{"attachment without content", func(d *PermitDraft) {
			d.Attachments = []Attachment{{Name: "a.pdf", MimeType: "application/pdf"}}
		}, "attachments[0] requires name and content_ref"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(draft)

			errs := ValidateDraft(draft)

			assert.Equal(t, ValidationErrors{tt.want}, errs)
		})
	}
}

func Test_ValidationErrors_Error(t *testing.T) {
	err := ValidationErrors{"a is required", "b is required"}

	assert.EqualError(t, err, "validation failed: a is required; b is required")
}
