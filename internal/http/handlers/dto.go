package handlers

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Uptime string            `json:"uptime"`
}

type ImportMovementsResult struct {
	ImportedCount int      `json:"imported_count"`
	Errors        []string `json:"errors"`
}
