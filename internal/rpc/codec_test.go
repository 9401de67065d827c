package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestCodec_WireNames(t *testing.T) {
	c := jsonCodec{}

	b, err := c.Marshal(&RefreshTokenRequest{AccessToken: "a", RefreshToken: "r"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"a","refresh_token":"r"}`, string(b))

	var out TokenResponse
	require.NoError(t, c.Unmarshal([]byte(`{"access_token":"x","token_type":"Bearer","expires_in":900,"refresh_token":"y"}`), &out))
	assert.Equal(t, TokenResponse{AccessToken: "x", TokenType: "Bearer", ExpiresIn: 900, RefreshToken: "y"}, out)
}

func TestServiceDesc(t *testing.T) {
	assert.Equal(t, "gophauth.AuthService", ServiceDesc.ServiceName)
	names := make([]string, 0, len(ServiceDesc.Methods))
	for _, m := range ServiceDesc.Methods {
		names = append(names, m.MethodName)
		assert.NotNil(t, m.Handler)
	}
	assert.Equal(t, []string{"Register", "Login", "RefreshToken", "WhoAmI", "InvalidateTokens"}, names)
}
