package attendance

import "errors"

// Attendance domain errors
var (
	ErrEventNotFound        = errors.New("attendance event not found")
	ErrInvalidRange         = errors.New("invalid or missing date range")
	ErrUnscoped             = errors.New("requested branch or employee is outside your scope")
	ErrOrganizationRequired = errors.New("organization_id claim is missing or invalid")
)
