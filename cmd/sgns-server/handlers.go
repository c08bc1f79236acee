package main

import (
	"encoding/json"
	"net/http"

	"github.com/dustin/go-humanize"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /run
// Starts a batch run in the background. 409 if one is already running.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	if !s.StartRun() {
		http.Error(w, "a run is already in progress", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("run started"))
}

type statusResponse struct {
	Running bool   `json:"running"`
	Error   string `json:"error,omitempty"`
	Results []struct {
		ID         string `json:"id"`
		Run        int    `json:"run"`
		Seed       int64  `json:"seed"`
		Steps      int64  `json:"steps"`
		StepsHuman string `json:"steps_human"`
		Took       string `json:"took"`
		Error      string `json:"error,omitempty"`
	} `json:"results,omitempty"`
}

// GET /status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	running, results, err := s.Status()

	resp := statusResponse{Running: running}
	if err != nil {
		resp.Error = err.Error()
	}
	for _, res := range results {
		entry := struct {
			ID         string `json:"id"`
			Run        int    `json:"run"`
			Seed       int64  `json:"seed"`
			Steps      int64  `json:"steps"`
			StepsHuman string `json:"steps_human"`
			Took       string `json:"took"`
			Error      string `json:"error,omitempty"`
		}{ID: res.ID, Run: res.Run, Seed: res.Seed, Steps: res.Steps, StepsHuman: humanize.Comma(res.Steps), Took: res.Took.String()}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		resp.Results = append(resp.Results, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}
