package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the JSON body of every failed API request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"` // field name, or "cause", to reason
}

// ValidationHelper checks decoded request bodies against their validate tags.
type ValidationHelper struct {
	validator *validator.Validate
}

func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{validator: validator.New()}
}

// ValidateStruct returns validator.ValidationErrors when s breaks a tag rule.
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse writes message with statusCode. A validator failure in
// cause becomes one detail per offending field; any other cause is
// reported verbatim under "cause".
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, cause error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Details: errorDetails(cause)})
}

func errorDetails(cause error) map[string]string {
	if cause == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(cause, &fieldErrs) {
		return map[string]string{"cause": cause.Error()}
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fmt.Sprintf("failed %q rule", fe.Tag())
	}
	return details
}
