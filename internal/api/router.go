package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"payroll.service/internal/api/handler"
	"payroll.service/internal/core"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(workHours *core.WorkHoursService, statistics *core.StatisticsService) *mux.Router {

	h := handler.WorkHoursHandler{
		WorkHours:  workHours,
		Statistics: statistics,
	}

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/work-hours", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/work-hours", h.List).Methods(http.MethodGet)
	api.HandleFunc("/work-hours/{id}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/work-hours/{id}", h.Edit).Methods(http.MethodPut)
	api.HandleFunc("/work-hours/{id}", h.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/work-hours/{id}/approve", h.Approve).Methods(http.MethodPost)

	api.HandleFunc("/employees/{employeeId}/work-hours", h.ListByEmployee).Methods(http.MethodGet)
	api.HandleFunc("/employees/{employeeId}/statistics", h.CumulativeStatistics).Methods(http.MethodGet)
	api.HandleFunc("/employees/{employeeId}/statistics/weekly", h.WeeklyStatistics).Methods(http.MethodGet)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
