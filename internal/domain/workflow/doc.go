// Package workflow holds the pure rules of the onboarding lifecycle: section
// completion, the application state machine and the verification policy.
// Nothing here touches storage; usecases load records, consult these rules
// and persist the outcome.
package workflow
