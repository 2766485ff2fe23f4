package httpapi

import "net/http"

func (h *Handlers) healthLive(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "live"})
}

func (h *Handlers) healthReady(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handlers) healthSummary(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}
