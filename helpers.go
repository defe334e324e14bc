package main

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/hum-fm/crate/auth"
)

// jsonResponse returns a JSON response
func jsonResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func errorResponse(w http.ResponseWriter, statusCode int, message string) {
	jsonResponse(w, statusCode, map[string]string{"error": message})
}

// serverError logs the real cause and sends a generic 500 so internal
// detail never reaches the client.
func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
		trace  = string(debug.Stack())
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri, "trace", trace)
	errorResponse(w, http.StatusInternalServerError, "internal server error")
}

func validationError(w http.ResponseWriter, verr *auth.ValidationError) {
	errorResponse(w, http.StatusBadRequest,
		"missing or invalid fields: "+strings.Join(verr.Fields, ", "))
}
