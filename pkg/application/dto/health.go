package dto

// HealthResponse reports liveness and whether the advanced model is enabled
type HealthResponse struct {
	Status            string `json:"status"`
	AdvancedAvailable bool   `json:"advanced_available"`
	Timestamp         string `json:"timestamp"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
