package workflow

import (
	"strings"
	"sync/atomic"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
)

// VerificationMode decides how application-level verification relates to
// component decisions.
type VerificationMode string

const (
	// VerificationIndependent lets admins verify regardless of components.
	VerificationIndependent VerificationMode = "independent"
	// VerificationStrict requires every current component to be verified.
	VerificationStrict VerificationMode = "strict"
)

// DefaultMinDocuments is the observed "at least 3 of 4" coverage rule.
const DefaultMinDocuments = 3

// Policy holds the deployment-configurable workflow rules.
type Policy struct {
	MinDocuments     int
	VerificationMode VerificationMode
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{MinDocuments: DefaultMinDocuments, VerificationMode: VerificationIndependent}
}

// ParseVerificationMode falls back to independent for unknown values.
func ParseVerificationMode(s string) VerificationMode {
	if VerificationMode(strings.ToLower(strings.TrimSpace(s))) == VerificationStrict {
		return VerificationStrict
	}
	return VerificationIndependent
}

// Normalize fills unset values with defaults and caps the document
// requirement at the number of slots.
func (p Policy) Normalize() Policy {
	if p.MinDocuments <= 0 {
		p.MinDocuments = DefaultMinDocuments
	}
	if p.MinDocuments > len(entity.DocumentKinds) {
		p.MinDocuments = len(entity.DocumentKinds)
	}
	if p.VerificationMode != VerificationStrict {
		p.VerificationMode = VerificationIndependent
	}
	return p
}

// PolicyProvider supplies the policy in effect for an operation.
type PolicyProvider interface {
	Policy() Policy
}

// PolicyHolder is a PolicyProvider whose policy can be swapped at runtime,
// e.g. when the configuration file changes.
type PolicyHolder struct {
	current atomic.Pointer[Policy]
}

func NewPolicyHolder(p Policy) *PolicyHolder {
	h := &PolicyHolder{}
	h.Store(p)
	return h
}

func (h *PolicyHolder) Policy() Policy {
	return *h.current.Load()
}

func (h *PolicyHolder) Store(p Policy) {
	p = p.Normalize()
	h.current.Store(&p)
}
