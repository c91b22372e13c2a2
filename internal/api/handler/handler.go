package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"payroll.service/internal/core"
	"payroll.service/internal/core/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// WorkHoursHandler exposes the work-hours lifecycle and statistics over
// HTTP.
type WorkHoursHandler struct {
	WorkHours  *core.WorkHoursService
	Statistics *core.StatisticsService
}

type entryRequest struct {
	EmployeeID int64  `json:"employeeId"`
	Date       string `json:"date"`
	WorkTypeID int64  `json:"workTypeId"`
	ProjectID  *int64 `json:"projectId,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
	EndTime    string `json:"endTime,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

type entryResponse struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employeeId"`
	Date       string `json:"date"`
	DayOfWeek  string `json:"dayOfWeek"`
	WeekRange  string `json:"weekRange"`
	WorkTypeID int64  `json:"workTypeId"`
	ProjectID  *int64 `json:"projectId,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
	EndTime    string `json:"endTime,omitempty"`
	WorkedTime string `json:"workedTime,omitempty"`
	Comment    string `json:"comment,omitempty"`
	Approved   bool   `json:"approved"`
}

// Create records a new work session for an employee.
func (h *WorkHoursHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	in, err := req.toCreateInput()
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := h.WorkHours.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"id": id})
}

// List returns all entries, optionally restricted to a date range for
// payroll-period reporting.
func (h *WorkHoursHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, ranged, err := parseRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var entries []model.WorkHoursEntry
	if ranged {
		entries, err = h.WorkHours.ListByDateRange(r.Context(), from, to)
	} else {
		entries, err = h.WorkHours.ListAll(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, toEntryResponses(entries))
}

// Get returns a single entry with its derived fields.
func (h *WorkHoursHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := h.WorkHours.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, toEntryResponse(*entry))
}

// Edit overwrites an entry's mutable fields and resets its approval.
func (h *WorkHoursHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	in, err := req.toEditInput()
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.WorkHours.Edit(r.Context(), id, in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete permanently removes an entry.
func (h *WorkHoursHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.WorkHours.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Approve marks an entry payroll-ready.
func (h *WorkHoursHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.WorkHours.Approve(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListByEmployee returns one employee's entries, optionally restricted
// to a date range.
func (h *WorkHoursHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathID(r, "employeeId")
	if err != nil {
		writeError(w, err)
		return
	}
	from, to, ranged, err := parseRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var entries []model.WorkHoursEntry
	if ranged {
		entries, err = h.WorkHours.ListByEmployeeAndDateRange(r.Context(), employeeID, from, to)
	} else {
		entries, err = h.WorkHours.ListByEmployee(r.Context(), employeeID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, toEntryResponses(entries))
}

// CumulativeStatistics returns the all-time projection for an employee.
func (h *WorkHoursHandler) CumulativeStatistics(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathID(r, "employeeId")
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.Statistics.CumulativeStatistics(r.Context(), employeeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, stats)
}

// WeeklyStatistics returns the aggregation for the week at the given
// offset from the current week (offset=0 by default).
func (h *WorkHoursHandler) WeeklyStatistics(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathID(r, "employeeId")
	if err != nil {
		writeError(w, err)
		return
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, model.NewValidationError("offset", "must be an integer"))
			return
		}
	}

	stats, err := h.Statistics.WeeklyStatistics(r.Context(), employeeID, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, stats)
}

func (req entryRequest) toCreateInput() (core.CreateEntryInput, error) {
	date, start, end, err := req.parseTimes()
	if err != nil {
		return core.CreateEntryInput{}, err
	}
	return core.CreateEntryInput{
		EmployeeID: req.EmployeeID,
		Date:       date,
		WorkTypeID: req.WorkTypeID,
		ProjectID:  req.ProjectID,
		StartTime:  start,
		EndTime:    end,
		Comment:    req.Comment,
	}, nil
}

func (req entryRequest) toEditInput() (core.EditEntryInput, error) {
	date, start, end, err := req.parseTimes()
	if err != nil {
		return core.EditEntryInput{}, err
	}
	return core.EditEntryInput{
		Date:       date,
		WorkTypeID: req.WorkTypeID,
		StartTime:  start,
		EndTime:    end,
		Comment:    req.Comment,
	}, nil
}

func (req entryRequest) parseTimes() (date time.Time, start, end *time.Time, err error) {
	date, err = time.Parse(dateLayout, req.Date)
	if err != nil {
		return time.Time{}, nil, nil, model.NewValidationError("date", "expected format "+dateLayout)
	}
	if start, err = parseClock(req.StartTime, "startTime"); err != nil {
		return time.Time{}, nil, nil, err
	}
	if end, err = parseClock(req.EndTime, "endTime"); err != nil {
		return time.Time{}, nil, nil, err
	}
	return date, start, end, nil
}

func parseClock(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return nil, model.NewValidationError(field, "expected format "+timeLayout)
	}
	return &t, nil
}

func parseRange(r *http.Request) (from, to time.Time, ranged bool, err error) {
	rawFrom := r.URL.Query().Get("from")
	rawTo := r.URL.Query().Get("to")
	if rawFrom == "" && rawTo == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if from, err = time.Parse(dateLayout, rawFrom); err != nil {
		return time.Time{}, time.Time{}, false, model.NewValidationError("from", "expected format "+dateLayout)
	}
	if to, err = time.Parse(dateLayout, rawTo); err != nil {
		return time.Time{}, time.Time{}, false, model.NewValidationError("to", "expected format "+dateLayout)
	}
	return from, to, true, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

func toEntryResponse(e model.WorkHoursEntry) entryResponse {
	resp := entryResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		Date:       e.Date.Format(dateLayout),
		DayOfWeek:  e.DayOfWeek(),
		WeekRange:  e.Week().Label(),
		WorkTypeID: e.WorkTypeID,
		ProjectID:  e.ProjectID,
		WorkedTime: e.WorkedTime(),
		Comment:    e.Comment,
		Approved:   e.Approved,
	}
	if e.StartTime != nil {
		resp.StartTime = e.StartTime.Format(timeLayout)
	}
	if e.EndTime != nil {
		resp.EndTime = e.EndTime.Format(timeLayout)
	}
	return resp
}

func toEntryResponses(entries []model.WorkHoursEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the domain error taxonomy to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		http.Error(w, "Service error processing request", http.StatusInternalServerError)
	}
}
