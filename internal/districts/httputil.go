package districts

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/EmpoweredVote/civicsearch/internal/tiger"
)

func addServerTiming(w http.ResponseWriter, name string, d time.Duration) {
	w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%.1f", name, float64(d.Microseconds())/1000))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// archiveStatus maps archive errors to a response code: a malformed archive
// is the data's fault, anything else is ours.
func archiveStatus(err error) int {
	switch {
	case errors.Is(err, tiger.ErrMissingMember),
		errors.Is(err, tiger.ErrAmbiguousMember),
		errors.Is(err, tiger.ErrDecodeFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
