package model

import "time"

// LastError is the most recent error recorded to GlobalState.
type LastError struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "error" | "warn"
	Code      ErrorKind `json:"code"`
	Message   string    `json:"message"`
	Component string    `json:"component"`
}

// ServerStats are periodically-refreshed process metrics (spec §3).
type ServerStats struct {
	CPUPercent          float64 `json:"cpuPercent"`
	ResidentMemoryBytes uint64  `json:"residentMemoryBytes"`
	UptimeMs            int64   `json:"uptimeMs"`
}

// GlobalState is the process-wide status record.
type GlobalState struct {
	Version        string       `json:"version"`
	BuildTimestamp string       `json:"buildTimestamp"`
	Online         bool         `json:"online"`
	LastError      *LastError   `json:"lastError,omitempty"`
	ServerStats    ServerStats  `json:"serverStats"`
}

func (g GlobalState) Clone() GlobalState {
	n := g
	if g.LastError != nil {
		e := *g.LastError
		n.LastError = &e
	}
	return n
}
