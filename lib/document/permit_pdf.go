package document

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"visitpermits/lib/models"
	"visitpermits/lib/util"

	"github.com/go-pdf/fpdf"
)

// ErrNotApproved is returned when a permit document is requested for a
// request that has not been approved
var ErrNotApproved = errors.New("permit request is not approved")

// PermitContentType is the MIME type of rendered permits
const PermitContentType = "application/pdf"

const displayDateLayout = "02/01/2006"

var relationLabels = map[string]string{
	models.RelationFamily: "Famille",
	models.RelationSpouse: "Conjoint",
	models.RelationFriend: "Ami",
	models.RelationLawyer: "Avocat",
	models.RelationOther:  "Autre",
}

// PermitFileName returns the download name of a permit document
func PermitFileName(permit *models.PermitRequest) string {
	return fmt.Sprintf("permis_visite_%s.pdf", permit.ID)
}

// RenderPermitPDF renders the visit permit issued for an approved request
func RenderPermitPDF(permit *models.PermitRequest) ([]byte, error) {
	if permit.Status != models.PermitStatusApproved || permit.ValidUntil == nil {
		return nil, ErrNotApproved
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(permit.ModifiedAt)
	pdf.SetTitle("Permis de visite "+permit.ID, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 6, tr("RÉPUBLIQUE FRANÇAISE"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr("Liberté - Égalité - Fraternité"), "", 1, "C", false, 0, "")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "PERMIS DE VISITE", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	line := func(indent float64, text string) {
		pdf.SetX(20 + indent)
		pdf.CellFormat(0, 10, tr(text), "", 1, "L", false, 0, "")
	}
	section := func(title string) {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 14)
		line(0, title)
		pdf.SetFont("Helvetica", "", 12)
	}

	pdf.SetFont("Helvetica", "", 12)
	line(0, "Permis N° "+permit.ID)
	line(0, "Date de délivrance : "+permit.ModifiedAt.Format(displayDateLayout))
	line(0, "Valable jusqu'au : "+formatDate(*permit.ValidUntil))

	section("Visiteur")
	line(10, "Nom : "+permit.Visitor.LastName)
	line(10, "Prénom : "+permit.Visitor.FirstName)
	line(10, "Date de naissance : "+formatDate(permit.Visitor.BirthDate))
	line(10, "Adresse : "+permit.Visitor.Address)
	line(10, permit.Visitor.PostalCode+" "+permit.Visitor.City)

	section("Détenu")
	line(10, "Nom : "+permit.Detainee.LastName)
	line(10, "Prénom : "+permit.Detainee.FirstName)
	line(10, "Numéro d'écrou : "+permit.Detainee.RegistrationNumber)
	line(10, "Établissement : "+permit.Detainee.Facility.Name)
	line(10, permit.Detainee.Facility.Address+", "+permit.Detainee.Facility.PostalCode+" "+permit.Detainee.Facility.City)

	pdf.Ln(4)
	relation := relationLabels[permit.RelationToDetainee]
	if permit.RelationDetail != nil {
		relation += util.ConditionalString(*permit.RelationDetail != "", " ("+*permit.RelationDetail+")", "")
	}
	line(0, "Lien avec le détenu : "+relation)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(20)
	pdf.MultiCell(170, 5, tr("Ce permis doit être présenté à chaque visite avec une pièce d'identité en cours de validité."), "", "L", false)
	pdf.SetX(20)
	pdf.MultiCell(170, 5, tr("L'administration pénitentiaire se réserve le droit de suspendre ou de retirer ce permis à tout moment."), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render permit %s: %w", permit.ID, err)
	}
	return buf.Bytes(), nil
}

// formatDate turns a YYYY-MM-DD date into the French display format
func formatDate(value string) string {
	date, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return value
	}
	return date.Format(displayDateLayout)
}
