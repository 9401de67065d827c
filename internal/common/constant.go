package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// TokenTypeBearer is the token type reported alongside every access token.
const TokenTypeBearer = "Bearer"

// MsgUserExists is returned to clients registering a taken user name.
const MsgUserExists = "user already exists!"
