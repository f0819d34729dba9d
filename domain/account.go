package domain

// Account is the identity of the person using a session.
// The zero value is an anonymous, read-only session.
type Account struct {
	Handle         string
	DisplayName    string
	AccountAddress string
	WalletAddress  string
	PublicKeyHash  string
}

func (a Account) IsLoggedIn() bool {
	return a.AccountAddress != ""
}

// Name returns the best label for the header
func (a Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if a.Handle != "" {
		return a.Handle
	}
	return "guest"
}
