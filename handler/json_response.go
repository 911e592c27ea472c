package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/webix/udirdlaga/pkg/binder"
	"github.com/webix/udirdlaga/pkg/validator"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError is one failed field of a ValidationError.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type jsonResponse struct {
	status int
	body   Envelope
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus sets the status code.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

// WithMessage sets the envelope message.
func WithMessage(msg string) JSONOption {
	return func(r *jsonResponse) { r.body.Message = msg }
}

// JSON creates a successful response carrying data.
func JSON(data any, opts ...JSONOption) Response {
	r := &jsonResponse{
		status: http.StatusOK,
		body:   Envelope{Success: true, Data: data},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Created is JSON with status 201.
func Created(data any, msg string) Response {
	return JSON(data, WithJSONStatus(http.StatusCreated), WithMessage(msg))
}

// JSONError creates a failure response. HTTPError and ValidationError keep
// their status and message; binding errors become 400; anything else is a
// 500 whose details are not exposed.
func JSONError(err error, opts ...JSONOption) Response {
	info := classifyError(err)
	r := &jsonResponse{
		status: info.StatusCode,
		body: Envelope{
			Message: info.Message,
			Error:   info.Key,
			Errors:  info.Fields,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ErrorInfo is the classified form of an error.
type ErrorInfo struct {
	StatusCode int
	Key        string
	Message    string
	Fields     []FieldError
}

func classifyError(err error) ErrorInfo {
	var (
		httpErr HTTPError
		valErr  ValidationError
		ruleErr validator.ValidationErrors
	)
	switch {
	case errors.As(err, &ruleErr):
		info := ErrorInfo{
			StatusCode: http.StatusBadRequest,
			Key:        "validation_error",
			Message:    "Validation failed",
		}
		for _, fe := range ruleErr {
			info.Fields = append(info.Fields, FieldError{Field: fe.Field, Message: fe.Message})
		}
		return info
	case errors.As(err, &valErr):
		info := ErrorInfo{
			StatusCode: http.StatusBadRequest,
			Key:        "validation_error",
			Message:    "Validation failed",
		}
		for _, field := range valErr.fields() {
			for _, msg := range valErr[field] {
				info.Fields = append(info.Fields, FieldError{Field: field, Message: msg})
			}
		}
		return info
	case errors.As(err, &httpErr):
		return ErrorInfo{StatusCode: httpErr.Code, Key: httpErr.Key, Message: httpErr.Text()}
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return ErrorInfo{StatusCode: http.StatusUnsupportedMediaType, Key: "unsupported_media_type", Message: err.Error()}
	case errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrFailedToParseQuery),
		errors.Is(err, binder.ErrFailedToParsePath):
		return ErrorInfo{StatusCode: http.StatusBadRequest, Key: "bad_request", Message: err.Error()}
	default:
		return ErrorInfo{
			StatusCode: http.StatusInternalServerError,
			Key:        ErrInternalServerError.Key,
			Message:    "An error occurred processing your request",
		}
	}
}
