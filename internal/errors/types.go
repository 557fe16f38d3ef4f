package errors

// represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "unauthorized", "quota_exceeded")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

// quota details attached to quota_exceeded responses
type QuotaErrorResponse struct {
	ErrorResponse
	Tier      string `json:"tier"`
	Count     int64  `json:"count"`
	Limit     int64  `json:"limit"`
	Period    string `json:"period"`
	ResetAt   string `json:"reset_at"`
	UpgradeTo string `json:"upgrade_to,omitempty"`
}

type ErrorInfo struct {
	category  string
	sanitized string
}
