package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20 // 1MB

// envelope is the common JSON response shape. Success bodies carry their
// payload next to "success": true; error bodies carry "message" and an
// optional per-field error list.
type envelope map[string]any

// fieldError is one entry in a validation error list.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields under their JSON names, not Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages translates field/tag pairs from the validator into the
// messages the API documents.
var fieldMessages = map[string]string{
	"name.required":     "Name is required",
	"name.min":          "Name must be between 2 and 100 characters",
	"name.max":          "Name must be between 2 and 100 characters",
	"email.required":    "Email is required",
	"email.email":       "Please provide a valid email",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters",
	"newPassword.min":   "New password must be at least 6 characters",
	"title.required":    "Title is required",
	"title.max":         "Title must not exceed 200 characters",
	"description.max":   "Description must not exceed 1000 characters",
	"category.max":      "Category must not exceed 50 characters",
	"priority.oneof":    "Priority must be High, Medium, or Low",
	"status.oneof":      "Status must be Pending, In Progress, or Completed",
}

// checkRequest validates a decoded request body and returns the
// per-field errors, if any.
func checkRequest(req any) []fieldError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{Field: "", Message: "invalid request"}}
	}

	out := make([]fieldError, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := fieldMessages[e.Field()+"."+e.Tag()]
		if !ok {
			msg = "Invalid value for " + e.Field()
		}
		out = append(out, fieldError{Field: e.Field(), Message: msg})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respond writes a success envelope with the given payload fields.
func respond(w http.ResponseWriter, status int, payload envelope) {
	body := envelope{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// fail writes an error envelope with a single message.
func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "message": message})
}

// failValidation writes a 400 envelope with a per-field error list.
func failValidation(w http.ResponseWriter, errs []fieldError) {
	writeJSON(w, http.StatusBadRequest, envelope{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}

// decodeBody decodes a JSON request body into dst, capped at maxBodyBytes.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// failDecode maps a body decoding failure to the right error response.
func failDecode(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		fail(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	fail(w, http.StatusBadRequest, "invalid request body")
}

// serverError logs an unexpected failure and returns a 500. Development
// mode exposes the underlying error string; production does not.
func serverError(w http.ResponseWriter, err error, dev bool, msg string) {
	slog.Error(msg, "error", err)
	if dev {
		fail(w, http.StatusInternalServerError, msg+": "+err.Error())
		return
	}
	fail(w, http.StatusInternalServerError, msg)
}
