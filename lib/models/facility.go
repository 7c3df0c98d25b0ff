package models

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed facilities.yaml
var facilitiesYAML []byte

// Facility represents a penitentiary establishment (static reference data)
type Facility struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Address    string `json:"address" yaml:"address"`
	PostalCode string `json:"postal_code" yaml:"postal_code"`
	City       string `json:"city" yaml:"city"`
}

// FacilityListResponse represents the facility catalogue
type FacilityListResponse struct {
	Facilities []Facility `json:"facilities"`
	TotalCount int        `json:"total_count"`
}

// Facility type constants
const (
	FacilityTypeRemandPrison       = "remand_prison"
	FacilityTypeDetentionCentre    = "detention_centre"
	FacilityTypeCentralPrison      = "central_prison"
	FacilityTypePenitentiaryCentre = "penitentiary_centre"
	FacilityTypeJuvenile           = "juvenile_facility"
)

var facilityTypeLabels = map[string]string{
	FacilityTypeRemandPrison:       "Maison d'arrêt",
	FacilityTypeDetentionCentre:    "Centre de détention",
	FacilityTypeCentralPrison:      "Maison centrale",
	FacilityTypePenitentiaryCentre: "Centre pénitentiaire",
	FacilityTypeJuvenile:           "Établissement pour mineurs",
}

// FacilityTypeLabel returns the display label of a facility type
func FacilityTypeLabel(facilityType string) string {
	if label, ok := facilityTypeLabels[facilityType]; ok {
		return label
	}
	return facilityType
}

// FacilityCatalog is the read-only list of facilities, in catalogue order
type FacilityCatalog struct {
	facilities []Facility
	byID       map[string]Facility
}

// NewFacilityCatalog parses a YAML list of facilities
func NewFacilityCatalog(data []byte) (*FacilityCatalog, error) {
	var facilities []Facility
	if err := yaml.Unmarshal(data, &facilities); err != nil {
		return nil, fmt.Errorf("failed to parse facility catalogue: %w", err)
	}

	catalog := &FacilityCatalog{
		facilities: facilities,
		byID:       make(map[string]Facility, len(facilities)),
	}
	for _, facility := range facilities {
		if facility.ID == "" || facility.Name == "" {
			return nil, fmt.Errorf("facility catalogue entry without id or name")
		}
		if _, ok := facilityTypeLabels[facility.Type]; !ok {
			return nil, fmt.Errorf("facility %s has unknown type %q", facility.ID, facility.Type)
		}
		if _, dup := catalog.byID[facility.ID]; dup {
			return nil, fmt.Errorf("duplicate facility id %s", facility.ID)
		}
		catalog.byID[facility.ID] = facility
	}

	return catalog, nil
}

// DefaultFacilityCatalog returns the catalogue embedded in the binary
func DefaultFacilityCatalog() (*FacilityCatalog, error) {
	return NewFacilityCatalog(facilitiesYAML)
}

// List returns a copy of all facilities
func (c *FacilityCatalog) List() []Facility {
	out := make([]Facility, len(c.facilities))
	copy(out, c.facilities)
	return out
}

// Get returns the facility with the given id
func (c *FacilityCatalog) Get(id string) (Facility, bool) {
	facility, ok := c.byID[id]
	return facility, ok
}
