package apiclient

// Stats is the datagram server counter snapshot as served by the admin
// API. Field meanings match the server's stats endpoint documentation.
type Stats struct {
	RequestsReceived uint64 `json:"requests_received"`
	RepliesSent      uint64 `json:"replies_sent"`
	RequestsDropped  uint64 `json:"requests_dropped"`
	RepliesDropped   uint64 `json:"replies_dropped"`
	DedupHits        uint64 `json:"dedup_hits"`
	CallbacksSent    uint64 `json:"callbacks_sent"`
	BadDatagrams     uint64 `json:"bad_datagrams"`
	ActiveMonitors   int    `json:"active_monitors"`
	Accounts         int    `json:"accounts"`
}

// Stats fetches the current counter snapshot.
func (c *Client) Stats() (*Stats, error) {
	return getResource[Stats](c, "/api/v1/stats")
}
