package usecase

import (
	"sync"
	"testing"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/service"

	"github.com/google/uuid"
)

func TestConcurrentClaimsHaveSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Vikram")

	reviewers := make([]entity.Actor, 5)
	for i := range reviewers {
		reviewers[i] = env.staffUser(entity.RoleReviewer, "reviewer"+string(rune('a'+i)))
	}

	errs := make([]error, len(reviewers))
	var wg sync.WaitGroup
	for i, reviewer := range reviewers {
		wg.Add(1)
		go func(i int, reviewer entity.Actor) {
			defer wg.Done()
			_, errs[i] = env.workflow.Assign(env.ctx, reviewer, applicationID, reviewer.UserID)
		}(i, reviewer)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case apperror.IsCode(err, apperror.CodeAlreadyAssigned):
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one successful claim, got %d", winners)
	}

	detail, err := env.workflow.GetApplication(env.ctx, physician, applicationID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if detail.Application.Status != entity.ApplicationStatusUnderReview || detail.Assignment == nil {
		t.Fatalf("expected under review with an assignment, got %s", detail.Application.Status)
	}
	if env.notifier.count(service.EventApplicationAssigned) != 1 {
		t.Fatalf("expected one assigned notification")
	}
}

func TestAssignRequiresSubmittedApplication(t *testing.T) {
	env := newTestEnv(t)
	_, applicationID := env.physician("Neel")
	admin := env.staffUser(entity.RoleAdmin, "Aria")
	reviewer := env.staffUser(entity.RoleReviewer, "Roy")

	_, err := env.workflow.Assign(env.ctx, admin, applicationID, reviewer.UserID)
	assertCode(t, err, apperror.CodeInvalidTransition)

	_, err = env.workflow.Assign(env.ctx, admin, uuid.New(), reviewer.UserID)
	assertCode(t, err, apperror.CodeNotFound)
}

func TestAssignAuthorization(t *testing.T) {
	env := newTestEnv(t)
	physician, applicationID := env.submittedApplication("Lata")
	reviewer := env.staffUser(entity.RoleReviewer, "Rani")
	colleague := env.staffUser(entity.RoleReviewer, "Rishi")
	admin := env.staffUser(entity.RoleAdmin, "Asif")

	_, err := env.workflow.Assign(env.ctx, physician, applicationID, physician.UserID)
	assertCode(t, err, apperror.CodeForbidden)

	_, err = env.workflow.Assign(env.ctx, reviewer, applicationID, colleague.UserID)
	assertCode(t, err, apperror.CodeForbidden)

	_, err = env.workflow.Assign(env.ctx, admin, applicationID, physician.UserID)
	assertCode(t, err, apperror.CodeNotFound)

	assignment, err := env.workflow.Assign(env.ctx, admin, applicationID, colleague.UserID)
	if err != nil {
		t.Fatalf("admin assign: %v", err)
	}
	if assignment.ReviewerID != colleague.UserID || assignment.AssignedBy == nil || *assignment.AssignedBy != admin.UserID {
		t.Fatalf("unexpected assignment: %+v", assignment)
	}

	_, err = env.workflow.Assign(env.ctx, admin, applicationID, reviewer.UserID)
	assertCode(t, err, apperror.CodeAlreadyAssigned)

	_, err = env.workflow.VerifyApplication(env.ctx, reviewer, applicationID)
	assertCode(t, err, apperror.CodeForbidden)
	if _, err := env.workflow.VerifyApplication(env.ctx, colleague, applicationID); err != nil {
		t.Fatalf("assignee verify: %v", err)
	}
}

func TestAutoAssignPicksLeastLoadedReviewer(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffUser(entity.RoleAdmin, "Arun")
	busy := env.staffUser(entity.RoleReviewer, "Busy")
	idle := env.staffUser(entity.RoleReviewer, "Idle")

	_, first := env.submittedApplication("First")
	_, second := env.submittedApplication("Second")

	if _, err := env.workflow.Assign(env.ctx, admin, first, busy.UserID); err != nil {
		t.Fatalf("assign first: %v", err)
	}

	assignment, err := env.workflow.AutoAssign(env.ctx, admin, second)
	if err != nil {
		t.Fatalf("auto-assign: %v", err)
	}
	if assignment.ReviewerID != idle.UserID {
		t.Fatalf("expected idle reviewer to be picked, got %s", assignment.ReviewerID)
	}

	_, err = env.workflow.AutoAssign(env.ctx, busy, second)
	assertCode(t, err, apperror.CodeForbidden)
}

func TestAutoAssignWithoutReviewers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffUser(entity.RoleAdmin, "Anya")
	_, applicationID := env.submittedApplication("Lonely")

	_, err := env.workflow.AutoAssign(env.ctx, admin, applicationID)
	assertCode(t, err, apperror.CodeNotFound)

	queue, err := env.workflow.ListUnassigned(env.ctx, admin)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("expected application to stay queued, got %d", len(queue))
	}
}

func TestLeastLoadedBreaksTiesBySeniority(t *testing.T) {
	inactive := false
	senior := entity.User{ID: uuid.New(), RoleID: entity.RoleIDReviewer}
	junior := entity.User{ID: uuid.New(), RoleID: entity.RoleIDReviewer}
	disabled := entity.User{ID: uuid.New(), RoleID: entity.RoleIDReviewer, IsActive: &inactive}

	picked := leastLoaded([]entity.User{disabled, senior, junior}, nil)
	if picked == nil || picked.ID != senior.ID {
		t.Fatalf("expected senior reviewer on a tie, got %v", picked)
	}

	picked = leastLoaded([]entity.User{senior, junior}, []entity.ReviewerWorkload{
		{ReviewerID: senior.ID, Workload: 2},
		{ReviewerID: junior.ID, Workload: 1},
	})
	if picked == nil || picked.ID != junior.ID {
		t.Fatalf("expected junior reviewer with lower workload, got %v", picked)
	}

	if leastLoaded([]entity.User{disabled}, nil) != nil {
		t.Fatalf("expected no pick when every reviewer is disabled")
	}
}

func TestWorkloadAndAssignedLists(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffUser(entity.RoleAdmin, "Asha")
	reviewer := env.staffUser(entity.RoleReviewer, "Rekha")
	other := env.staffUser(entity.RoleReviewer, "Ritu")

	_, first := env.submittedApplication("Anand")
	_, second := env.submittedApplication("Bela")
	_, third := env.submittedApplication("Chetan")

	for _, applicationID := range []uuid.UUID{first, second} {
		if _, err := env.workflow.Assign(env.ctx, reviewer, applicationID, reviewer.UserID); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}

	workload, err := env.workflow.WorkloadOf(env.ctx, reviewer, reviewer.UserID)
	if err != nil {
		t.Fatalf("workload: %v", err)
	}
	if workload != 2 {
		t.Fatalf("expected workload 2, got %d", workload)
	}

	// Closed reviews leave the workload.
	if _, err := env.workflow.VerifyApplication(env.ctx, reviewer, first); err != nil {
		t.Fatalf("verify: %v", err)
	}
	workload, err = env.workflow.WorkloadOf(env.ctx, admin, reviewer.UserID)
	if err != nil {
		t.Fatalf("workload: %v", err)
	}
	if workload != 1 {
		t.Fatalf("expected workload 1 after verify, got %d", workload)
	}

	_, err = env.workflow.WorkloadOf(env.ctx, other, reviewer.UserID)
	assertCode(t, err, apperror.CodeForbidden)
	_, err = env.workflow.WorkloadOf(env.ctx, admin, uuid.New())
	assertCode(t, err, apperror.CodeNotFound)

	assigned, err := env.workflow.ListAssignedTo(env.ctx, reviewer, reviewer.UserID)
	if err != nil {
		t.Fatalf("assigned: %v", err)
	}
	if len(assigned) != 2 {
		t.Fatalf("expected two assigned applications, got %d", len(assigned))
	}

	queue, err := env.workflow.ListUnassigned(env.ctx, other)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != third {
		t.Fatalf("expected only the third application queued, got %d", len(queue))
	}
}
