package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/commitwatch/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RepoStatusResponse is the JSON representation of one tracked repository's
// status. SHA and Date are omitted when no snapshot exists yet.
type RepoStatusResponse struct {
	Repository string `json:"repository"`
	Branch     string `json:"branch"`
	SHA        string `json:"sha,omitempty"`
	Date       string `json:"date,omitempty"`
	HasData    bool   `json:"has_data"`
}

// CheckResponse is the JSON body of a successful manual check.
type CheckResponse struct {
	Status string `json:"status"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// newHealthResponse builds the health body with the current UTC time.
func newHealthResponse() HealthResponse {
	return HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
}

// toRepoStatusResponse converts a domain RepoStatus to its JSON representation.
func toRepoStatusResponse(s model.RepoStatus) RepoStatusResponse {
	return RepoStatusResponse{
		Repository: s.FullName(),
		Branch:     s.Branch,
		SHA:        s.SHA,
		Date:       s.Date,
		HasData:    s.HasData,
	}
}
