package domain

import "fmt"

// ValidationError reports a malformed ingestion request: a missing
// required field or an unsupported document type. It is raised before
// any extraction work begins.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// ServiceError reports a failed call to an external collaborator
// (embedding service, language model, or vector index).
type ServiceError struct {
	Service string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IngestionError reports an extraction or submission failure after
// validation passed. No partial-success state is modeled.
type IngestionError struct {
	Stage string
	Err   error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion %s: %v", e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }
