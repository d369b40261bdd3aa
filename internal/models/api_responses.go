package models

import "github.com/google/uuid"

// PollRunResponse is returned by the manual trigger endpoint.
type PollRunResponse struct {
	Started bool         `json:"started"`
	CycleID *uuid.UUID   `json:"cycle_id,omitempty"`
	Result  *CycleResult `json:"result,omitempty"`
}

// HealthResponse reports dependency health.
type HealthResponse struct {
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}
