package workspace

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/timetable/core/timetable"
)

// StatusFor maps workspace errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, timetable.ErrNotGenerated),
		errors.Is(err, timetable.ErrSlotFixed),
		errors.Is(err, timetable.ErrSlotAlreadyFixed),
		errors.Is(err, timetable.ErrDuplicateDay),
		errors.Is(err, timetable.ErrDuplicateSubject),
		errors.Is(err, timetable.ErrPeriodLimit):
		return http.StatusConflict
	case errors.Is(err, timetable.ErrUnknownDay),
		errors.Is(err, timetable.ErrUnknownPeriod),
		errors.Is(err, timetable.ErrUnknownSubject),
		errors.Is(err, timetable.ErrUnknownFixedItem):
		return http.StatusNotFound
	case timetable.IsValidation(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		a.mon.CaptureException(err, map[string]string{"module": "api", "path": r.URL.Path})
		a.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
