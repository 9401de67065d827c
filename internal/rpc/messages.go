package rpc

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Address  string `json:"address"`
}

type InvalidateTokensRequest struct{}

type InvalidateTokensResponse struct {
	Invalidated int64 `json:"invalidated"`
}
