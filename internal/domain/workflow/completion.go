package workflow

import (
	"strings"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
)

// SectionData is the raw input the completion predicates are evaluated over.
type SectionData struct {
	Draft             entity.ApplicationDraft
	UploadedDocuments int
	MinDocuments      int
}

// Readiness is the per-section completion view of an application.
type Readiness struct {
	Sections map[entity.Section]bool `json:"sections"`
	Ready    bool                    `json:"ready"`
}

// Incomplete returns the sections that are not complete, in form order.
func (r Readiness) Incomplete() []entity.Section {
	var missing []entity.Section
	for _, section := range entity.Sections {
		if !r.Sections[section] {
			missing = append(missing, section)
		}
	}
	return missing
}

// IsSectionComplete reports whether a section's required fields are filled.
func IsSectionComplete(section entity.Section, data SectionData) bool {
	switch section {
	case entity.SectionPersonal:
		p := data.Draft.Personal
		return filled(p.FirstName, p.LastName, p.Phone, p.DateOfBirth)
	case entity.SectionAddress:
		a := data.Draft.Address
		return filled(a.AddressLine1, a.City, a.State, a.PostalCode)
	case entity.SectionMedical:
		m := data.Draft.Medical
		return filled(m.RegistrationNumber, m.Council, m.Specialization)
	case entity.SectionDocuments:
		return data.UploadedDocuments >= data.MinDocuments
	case entity.SectionAvailability:
		av := data.Draft.Availability
		return av.ConsultationFee != nil && av.ConsultationFee.IsPositive() && hasLanguage(av.Languages)
	default:
		return false
	}
}

// Evaluate computes completion for every section. Overall readiness is the
// logical AND of all of them.
func Evaluate(data SectionData) Readiness {
	r := Readiness{Sections: make(map[entity.Section]bool, len(entity.Sections)), Ready: true}
	for _, section := range entity.Sections {
		complete := IsSectionComplete(section, data)
		r.Sections[section] = complete
		r.Ready = r.Ready && complete
	}
	return r
}

func filled(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func hasLanguage(languages []string) bool {
	for _, l := range languages {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}
