package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var EmptyRequestBodyResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusBadRequest,
	Error:      "Empty Request Body",
	Message:    "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusBadRequest,
	Error:      "Bad Request",
	Message:    "The request body is malformed.",
}

var ResourceNotFoundResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusNotFound,
	Error:      "Resource Not Found",
	Message:    "The requested resource was not found.",
}

var ServerErrorResponse = Response{
	Status:     StatusError,
	StatusCode: http.StatusInternalServerError,
	Error:      "Server Error",
	Message:    "An internal server error occurred. Please try again later.",
}

type Response struct {
	Status     string   `json:"status"`
	StatusCode int      `json:"status_code"`
	Error      string   `json:"error,omitempty"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
}

// ValidationErrorResponse builds an unprocessable entity response from a
// validation failure. Field-level errors from the validator are expanded
// into details; any other error contributes its message.
func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:     StatusError,
		StatusCode: http.StatusUnprocessableEntity,
		Error:      "Validation Error",
		Message:    "The provided data is invalid.",
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, vErr := range vErrs {
			resp.Details = append(resp.Details, fmt.Sprintf("The %s field is invalid.", vErr.Field()))
		}

		return resp
	}

	if err != nil {
		resp.Details = append(resp.Details, err.Error())
	}

	return resp
}
