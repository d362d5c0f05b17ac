package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
)

// Event is something that asks an application to change status.
type Event string

const (
	EventSubmit Event = "submit"
	EventAssign Event = "assign"
	EventVerify Event = "verify"
	EventReject Event = "reject"
	EventReopen Event = "reopen"
)

var transitions = map[entity.ApplicationStatus]map[Event]entity.ApplicationStatus{
	entity.ApplicationStatusDraft: {
		EventSubmit: entity.ApplicationStatusSubmitted,
	},
	entity.ApplicationStatusSubmitted: {
		EventAssign: entity.ApplicationStatusUnderReview,
		EventVerify: entity.ApplicationStatusVerified,
		EventReject: entity.ApplicationStatusRejected,
	},
	entity.ApplicationStatusUnderReview: {
		EventVerify: entity.ApplicationStatusVerified,
		EventReject: entity.ApplicationStatusRejected,
	},
	entity.ApplicationStatusRejected: {
		EventReopen: entity.ApplicationStatusDraft,
	},
}

// Transition returns the status an event leads to, or an INVALID_TRANSITION
// error when the pair is not in the table. Verified accepts no events.
func Transition(from entity.ApplicationStatus, ev Event) (entity.ApplicationStatus, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, apperror.New(apperror.CodeInvalidTransition,
		fmt.Sprintf("cannot %s an application in status %s", ev, from))
}

// Apply moves the application through the event and performs the
// timestamp side effects. The application is left untouched on error.
func Apply(app *entity.Application, ev Event, at time.Time, reason string) error {
	to, err := Transition(app.Status, ev)
	if err != nil {
		return err
	}

	at = at.UTC()
	switch ev {
	case EventSubmit:
		app.SubmittedAt = &at
	case EventVerify:
		app.VerifiedAt = &at
	case EventReject:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return apperror.New(apperror.CodeInvalidTransition, "rejection reason is required")
		}
		app.RejectedAt = &at
		app.RejectionReason = &reason
	case EventReopen:
		app.SubmittedAt = nil
		app.VerifiedAt = nil
		app.RejectedAt = nil
		app.RejectionReason = nil
		app.Cycle++
	}
	app.Status = to
	return nil
}

// SubmitGuard blocks submission until every section is complete.
func SubmitGuard(r Readiness) error {
	if r.Ready {
		return nil
	}
	names := make([]string, 0, len(entity.Sections))
	for _, section := range r.Incomplete() {
		names = append(names, string(section))
	}
	return apperror.New(apperror.CodeInvalidTransition,
		"application is incomplete: "+strings.Join(names, ", "))
}

// VerifyGuard enforces the strict policy: all current components verified.
func VerifyGuard(p Policy, components []entity.Component) error {
	if p.VerificationMode != VerificationStrict {
		return nil
	}
	if len(components) == 0 {
		return apperror.New(apperror.CodeInvalidTransition, "application has no components to verify")
	}
	for _, c := range components {
		if c.Status != entity.ComponentStatusVerified {
			return apperror.New(apperror.CodeInvalidTransition,
				fmt.Sprintf("component %s is %s", c.Kind, c.Status))
		}
	}
	return nil
}

// CheckInvariants validates the timestamp invariants of an application.
func CheckInvariants(app *entity.Application) error {
	if !app.Status.Valid() {
		return fmt.Errorf("unknown status %q", app.Status)
	}
	if (app.SubmittedAt != nil) != (app.Status != entity.ApplicationStatusDraft) {
		return fmt.Errorf("submitted_at set=%v with status %s", app.SubmittedAt != nil, app.Status)
	}
	if app.VerifiedAt != nil && app.RejectedAt != nil {
		return fmt.Errorf("verified_at and rejected_at both set")
	}
	if (app.VerifiedAt != nil) != (app.Status == entity.ApplicationStatusVerified) {
		return fmt.Errorf("verified_at set=%v with status %s", app.VerifiedAt != nil, app.Status)
	}
	if (app.RejectedAt != nil) != (app.Status == entity.ApplicationStatusRejected) {
		return fmt.Errorf("rejected_at set=%v with status %s", app.RejectedAt != nil, app.Status)
	}
	if (app.RejectionReason != nil) != (app.Status == entity.ApplicationStatusRejected) {
		return fmt.Errorf("rejection_reason set=%v with status %s", app.RejectionReason != nil, app.Status)
	}
	return nil
}
