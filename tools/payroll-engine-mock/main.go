// A local stand-in for the external Payroll Engine. It accepts the
// generate-payouts call and logs the requested period.
package main

import (
	"encoding/json"
	"log"
	"net/http"
)

type generatePayoutsRequest struct {
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

func generateHandler(w http.ResponseWriter, r *http.Request) {
	var req generatePayoutsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	log.Printf("Generating payouts for period %s to %s", req.PeriodStart, req.PeriodEnd)
	w.WriteHeader(http.StatusOK)
}

func main() {
	http.HandleFunc("/payouts/generate", generateHandler)
	log.Println("Payroll engine mock listening on :8081")
	if err := http.ListenAndServe(":8081", nil); err != nil {
		log.Fatal(err)
	}
}
