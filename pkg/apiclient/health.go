package apiclient

// HealthInfo is the liveness probe payload.
type HealthInfo struct {
	Service   string `json:"service"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_sec"`
}

// Health calls the liveness probe. An error means the listener is not
// reachable or not healthy.
func (c *Client) Health() (*HealthInfo, error) {
	return getResource[HealthInfo](c, "/healthz")
}
