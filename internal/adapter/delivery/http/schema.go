package http

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/url-shortener-kv/internal/entity"
)

// urlRequest represents the structure for a request to shorten a URL.
type urlRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// urlResponse carries the public short link of a stored mapping.
type urlResponse struct {
	URL string `json:"url"`
}

func toURLResponse(redirectBaseURL string, m *entity.Mapping) urlResponse {
	return urlResponse{
		URL: strings.TrimRight(redirectBaseURL, "/") + "/u/" + m.Code,
	}
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

var (
	emptyRequestBodyResponse = errorResponse{
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Message: "invalid request body",
	}

	urlNotFoundResponse = errorResponse{
		Message: "URL not found.",
	}

	notImplementedResponse = errorResponse{
		Message: "Method not implemented.",
	}

	serverErrorResponse = errorResponse{
		Message: "server error occurred",
	}
)

func invalidCodeResponse(reason string) errorResponse {
	return errorResponse{
		Message: "invalid short code: " + reason,
	}
}

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	default:
		return "invalid value"
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
