package usecase

import (
	"testing"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"

	"github.com/google/uuid"
)

func TestDecideWithoutCommentChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Leela")
	reviewer := env.staffUser(entity.RoleReviewer, "Raj")
	component := env.currentComponents(physician, applicationID)[0]

	_, err := env.workflow.Decide(env.ctx, reviewer, component.ID, entity.ComponentStatusRejected, " \n\t")
	assertCode(t, err, apperror.CodeCommentRequired)

	after := env.currentComponents(physician, applicationID)[0]
	if after.Status != entity.ComponentStatusPending || after.DecidedBy != nil {
		t.Fatalf("expected component untouched, got %+v", after)
	}
	comments, err := env.workflow.History(env.ctx, reviewer, component.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("expected empty trail, got %d comments", len(comments))
	}
}

func TestRepeatedDecisionsAppendToTrail(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Omar")
	reviewer := env.staffUser(entity.RoleReviewer, "Riya")
	component := env.currentComponents(physician, applicationID)[2]

	if _, err := env.workflow.Decide(env.ctx, reviewer, component.ID, entity.ComponentStatusRejected, "degree scan is blurry"); err != nil {
		t.Fatalf("first decision: %v", err)
	}
	decided, err := env.workflow.Decide(env.ctx, reviewer, component.ID, entity.ComponentStatusVerified, "clear copy received by email")
	if err != nil {
		t.Fatalf("second decision: %v", err)
	}
	if decided.Status != entity.ComponentStatusVerified || decided.DecidedBy == nil || *decided.DecidedBy != reviewer.UserID {
		t.Fatalf("unexpected decided component: %+v", decided)
	}

	comments, err := env.workflow.History(env.ctx, physician, component.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected two comments, got %d", len(comments))
	}
	if comments[0].Body != "degree scan is blurry" || comments[0].Decision != string(entity.ComponentStatusRejected) {
		t.Fatalf("unexpected first comment: %+v", comments[0])
	}
	if comments[1].Body != "clear copy received by email" || comments[1].AuthorID != reviewer.UserID {
		t.Fatalf("unexpected second comment: %+v", comments[1])
	}

	// Component decisions never move the application.
	if got := env.application(reviewer, applicationID).Status; got != entity.ApplicationStatusSubmitted {
		t.Fatalf("expected application still submitted, got %s", got)
	}
}

func TestDecideRejectsNonDecisionStatus(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Priya")
	reviewer := env.staffUser(entity.RoleReviewer, "Ronan")
	component := env.currentComponents(physician, applicationID)[0]

	_, err := env.workflow.Decide(env.ctx, reviewer, component.ID, entity.ComponentStatusPending, "resetting")
	assertCode(t, err, apperror.CodeInvalidTransition)
}

func TestDecideAuthorization(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Hari")
	assignee := env.staffUser(entity.RoleReviewer, "Reva")
	outsider := env.staffUser(entity.RoleReviewer, "Rafi")
	admin := env.staffUser(entity.RoleAdmin, "Abel")
	component := env.currentComponents(physician, applicationID)[1]

	_, err := env.workflow.Decide(env.ctx, physician, component.ID, entity.ComponentStatusVerified, "looks fine to me")
	assertCode(t, err, apperror.CodeForbidden)

	if _, err := env.workflow.Assign(env.ctx, assignee, applicationID, assignee.UserID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	_, err = env.workflow.Decide(env.ctx, outsider, component.ID, entity.ComponentStatusVerified, "checked")
	assertCode(t, err, apperror.CodeForbidden)

	if _, err := env.workflow.Decide(env.ctx, assignee, component.ID, entity.ComponentStatusVerified, "checked"); err != nil {
		t.Fatalf("assignee decision: %v", err)
	}
	if _, err := env.workflow.Decide(env.ctx, admin, component.ID, entity.ComponentStatusVerified, "double-checked"); err != nil {
		t.Fatalf("admin decision: %v", err)
	}

	_, err = env.workflow.Decide(env.ctx, admin, uuid.New(), entity.ComponentStatusVerified, "missing")
	assertCode(t, err, apperror.CodeNotFound)
}

func TestDecideAfterReviewClosedIsLocked(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Gita")
	admin := env.staffUser(entity.RoleAdmin, "Anil")
	first := env.currentComponents(physician, applicationID)[0]

	if _, err := env.workflow.RejectApplication(env.ctx, admin, applicationID, "incomplete registration"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := env.workflow.Decide(env.ctx, admin, first.ID, entity.ComponentStatusVerified, "after the fact")
	assertCode(t, err, apperror.CodeApplicationLocked)

	if _, err := env.workflow.ReopenApplication(env.ctx, physician, applicationID); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := env.workflow.SubmitApplication(env.ctx, physician, applicationID); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	// First-cycle components are history even while the new cycle is open.
	_, err = env.workflow.Decide(env.ctx, admin, first.ID, entity.ComponentStatusVerified, "stale")
	assertCode(t, err, apperror.CodeApplicationLocked)

	current := env.currentComponents(physician, applicationID)[0]
	if _, err := env.workflow.Decide(env.ctx, admin, current.ID, entity.ComponentStatusVerified, "fresh"); err != nil {
		t.Fatalf("decide current cycle: %v", err)
	}
}

func TestHistoryHiddenFromOtherPhysicians(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Jaya")
	stranger, _ := env.physician("Stranger")
	component := env.currentComponents(physician, applicationID)[0]

	_, err := env.workflow.History(env.ctx, stranger, component.ID)
	assertCode(t, err, apperror.CodeForbidden)

	_, _, err = env.workflow.ListComponents(env.ctx, stranger, applicationID, false)
	assertCode(t, err, apperror.CodeForbidden)
}

func componentOfKind(t *testing.T, components []entity.Component, kind entity.ComponentKind) entity.Component {
	t.Helper()
	for _, c := range components {
		if c.Kind == kind {
			return c
		}
	}
	t.Fatalf("no %s component among %d", kind, len(components))
	return entity.Component{}
}

func TestRejectedRegistrationLeavesApplicationUnderReview(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Farah")
	reviewer := env.staffUser(entity.RoleReviewer, "Rohit")
	if _, err := env.workflow.Assign(env.ctx, reviewer, applicationID, reviewer.UserID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	registration := componentOfKind(t, env.currentComponents(physician, applicationID), entity.ComponentKindMedicalRegistration)

	for i := 1; i <= 2; i++ {
		decided, err := env.workflow.Decide(env.ctx, reviewer, registration.ID, entity.ComponentStatusRejected, "Registration number mismatch")
		if err != nil {
			t.Fatalf("decision %d: %v", i, err)
		}
		if decided.Status != entity.ComponentStatusRejected {
			t.Fatalf("decision %d: expected rejected, got %s", i, decided.Status)
		}

		comments, err := env.workflow.History(env.ctx, reviewer, registration.ID)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(comments) != i {
			t.Fatalf("expected %d comments after decision %d, got %d", i, i, len(comments))
		}
		if got := env.application(reviewer, applicationID).Status; got != entity.ApplicationStatusUnderReview {
			t.Fatalf("expected application under review, got %s", got)
		}
	}

	comments, _ := env.workflow.History(env.ctx, physician, registration.ID)
	for _, c := range comments {
		if c.Body != "Registration number mismatch" || c.AuthorID != reviewer.UserID || c.Decision != string(entity.ComponentStatusRejected) {
			t.Fatalf("unexpected comment: %+v", c)
		}
	}
}

func TestDecideRetriesAfterLosingConcurrentUpdates(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Ishaan")
	admin := env.staffUser(entity.RoleAdmin, "Aditi")
	component := env.currentComponents(physician, applicationID)[0]

	env.apps.loseTouches(maxCASAttempts)
	_, err := env.workflow.Decide(env.ctx, admin, component.ID, entity.ComponentStatusVerified, "identity matches")
	assertCode(t, err, apperror.CodeStorageFailure)

	after := componentOfKind(t, env.currentComponents(physician, applicationID), component.Kind)
	if after.Status != entity.ComponentStatusPending {
		t.Fatalf("expected component untouched, got %s", after.Status)
	}
	comments, err := env.workflow.History(env.ctx, admin, component.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("expected no comments, got %d", len(comments))
	}

	env.apps.loseTouches(maxCASAttempts - 1)
	if _, err := env.workflow.Decide(env.ctx, admin, component.ID, entity.ComponentStatusVerified, "identity matches"); err != nil {
		t.Fatalf("decide: %v", err)
	}
	comments, _ = env.workflow.History(env.ctx, admin, component.ID)
	if len(comments) != 1 {
		t.Fatalf("expected one comment, got %d", len(comments))
	}
}

func TestDecideOutsideScopeIsForbiddenBeforeCommentCheck(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Tanvi")
	assignee := env.staffUser(entity.RoleReviewer, "Ravi")
	outsider := env.staffUser(entity.RoleReviewer, "Rekha")
	component := env.currentComponents(physician, applicationID)[0]
	if _, err := env.workflow.Assign(env.ctx, assignee, applicationID, assignee.UserID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	_, err := env.workflow.Decide(env.ctx, outsider, component.ID, entity.ComponentStatusRejected, "")
	assertCode(t, err, apperror.CodeForbidden)

	_, err = env.workflow.Decide(env.ctx, assignee, component.ID, entity.ComponentStatusRejected, "")
	assertCode(t, err, apperror.CodeCommentRequired)
}
