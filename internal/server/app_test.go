package server

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/stretchr/testify/require"
)

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	var c config.Config
	c.LoadDefaults()
	c.AccessTokenValidityDuration = 0

	app, err := NewApp(context.Background(), &c)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	require.Nil(t, app)
}
