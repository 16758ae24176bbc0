package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	hasDetails := errors.As(err, &validationErrs)

	// Date range problems carry field details but are a malformed request, not a rejected entity
	if errors.Is(err, attendance.ErrInvalidRange) {
		var details map[string]string
		if hasDetails {
			details = validationErrs.ToMap()
		}
		BadRequest(w, "Invalid date range", details)
		return
	}
	if hasDetails {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrEventNotFound):
		NotFound(w, "Attendance event not found")
	case errors.Is(err, attendance.ErrUnscoped):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrOrganizationRequired):
		Unauthorized(w, "Organization claim missing from token")

	// User domain errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, user.ErrInsufficientPermissions), errors.Is(err, user.ErrInvalidRole):
		Forbidden(w, err.Error())

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
