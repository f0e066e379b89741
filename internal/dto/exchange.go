package dto

// ExchangeFilter narrows the admin listing of recorded exchanges.
type ExchangeFilter struct {
	ClientID string
	Limit    int
}
