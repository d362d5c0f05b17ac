package entity

import "github.com/shopspring/decimal"

// Section is a logical group of onboarding fields gating submission
type Section string

const (
	SectionPersonal     Section = "personal"
	SectionAddress      Section = "address"
	SectionMedical      Section = "medical"
	SectionDocuments    Section = "documents"
	SectionAvailability Section = "availability"
)

// Sections lists every section in form order
var Sections = []Section{
	SectionPersonal,
	SectionAddress,
	SectionMedical,
	SectionDocuments,
	SectionAvailability,
}

func (s Section) Valid() bool {
	for _, section := range Sections {
		if s == section {
			return true
		}
	}
	return false
}

// Editable reports whether the section is stored in the draft object.
// Documents are tracked by the document registry instead.
func (s Section) Editable() bool {
	return s.Valid() && s != SectionDocuments
}

type PersonalInfo struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender,omitempty"`
}

type AddressInfo struct {
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country,omitempty"`
}

type MedicalInfo struct {
	RegistrationNumber string `json:"registration_number"`
	Council            string `json:"council"`
	Specialization     string `json:"specialization"`
	Qualification      string `json:"qualification,omitempty"`
	YearsOfExperience  int    `json:"years_of_experience,omitempty"`
}

type AvailabilityInfo struct {
	ConsultationFee *decimal.Decimal `json:"consultation_fee,omitempty"`
	Languages       []string         `json:"languages"`
	Days            []string         `json:"days,omitempty"`
}

// ApplicationDraft is the physician's in-progress form data, persisted
// incrementally per section while the application is a draft
type ApplicationDraft struct {
	Personal     PersonalInfo     `json:"personal"`
	Address      AddressInfo      `json:"address"`
	Medical      MedicalInfo      `json:"medical"`
	Availability AvailabilityInfo `json:"availability"`
}

// WithSection returns a copy of d whose section is taken from src.
// It reports false for sections that are not stored in the draft.
func (d ApplicationDraft) WithSection(section Section, src ApplicationDraft) (ApplicationDraft, bool) {
	switch section {
	case SectionPersonal:
		d.Personal = src.Personal
	case SectionAddress:
		d.Address = src.Address
	case SectionMedical:
		d.Medical = src.Medical
	case SectionAvailability:
		d.Availability = src.Availability
	default:
		return d, false
	}
	return d, true
}
