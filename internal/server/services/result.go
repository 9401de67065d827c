package services

// TokenResult is what register, login and refresh hand back to transports.
// Either Errors is non-empty or the token fields are populated, never both.
type TokenResult struct {
	Errors       []string
	AccessToken  string
	TokenType    string
	ExpiresIn    int
	RefreshToken string
}

func (r *TokenResult) Success() bool {
	return len(r.Errors) == 0
}

func failure(msgs ...string) *TokenResult {
	return &TokenResult{Errors: msgs}
}
