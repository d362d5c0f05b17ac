package usecase

// Workflow is the single entry point of the onboarding core. Each mutating
// operation checks the actor's role before touching storage.
type Workflow interface {
	ApplicationUsecase
	DocumentUsecase
	ReviewUsecase
	AssignmentUsecase
}

type onboardingWorkflow struct {
	ApplicationUsecase
	DocumentUsecase
	ReviewUsecase
	AssignmentUsecase
}

func NewWorkflow(
	applicationUsecase ApplicationUsecase,
	documentUsecase DocumentUsecase,
	reviewUsecase ReviewUsecase,
	assignmentUsecase AssignmentUsecase,
) Workflow {
	return &onboardingWorkflow{
		ApplicationUsecase: applicationUsecase,
		DocumentUsecase:    documentUsecase,
		ReviewUsecase:      reviewUsecase,
		AssignmentUsecase:  assignmentUsecase,
	}
}
