package apiclient

// Account is one row of the admin account listing. The listing never
// carries credentials.
type Account struct {
	AccountNo int32   `json:"account_no"`
	Name      string  `json:"name"`
	Currency  string  `json:"currency"`
	Balance   float64 `json:"balance"`
	Closed    bool    `json:"closed"`
}

// Accounts fetches the account listing, ordered by account number.
func (c *Client) Accounts() ([]Account, error) {
	return listResources[Account](c, "/api/v1/accounts")
}
