package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag followed by another flag keeps no value",
			args:         []string{"-s", "-t", "5"},
			allowedFlags: []string{"-s", "-t"},
			want:         []string{"-s", "-t", "5"},
		},
		{
			name:         "multiple allowed flags kept in order",
			args:         []string{"-a", ":8080", "-d", "postgres://x", "--other", "x"},
			allowedFlags: []string{"-d", "-a"},
			want:         []string{"-a", ":8080", "-d", "postgres://x"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFileFromArgs(t *testing.T) {
	assert.Equal(t, "/path/short.json", ConfigFileFromArgs([]string{"-c", "/path/short.json"}))
	assert.Equal(t, "/path/long.json", ConfigFileFromArgs([]string{"-a", ":1", "-config", "/path/long.json"}))
	assert.Equal(t, "/path/2.json", ConfigFileFromArgs([]string{"-c", "/path/1.json", "-config=/path/2.json"}))
	assert.Empty(t, ConfigFileFromArgs([]string{"-x", "1"}))
}

func TestJsonConfigFlags_ReadsOsArgs(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-s", "secret", "-c", "/etc/gophauth.json"}
	assert.Equal(t, "/etc/gophauth.json", JsonConfigFlags())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, SplitList(" http://a, ,http://b ,"))
	assert.Empty(t, SplitList(""))
}

func TestStripArgs(t *testing.T) {
	flags := []string{"-a", "-f", "-c", "-config"}

	assert.Equal(t, []string{"login", "alice"},
		StripArgs([]string{"-a", "host:1", "login", "-f=/tmp/s.db", "alice"}, flags))
	assert.Equal(t, []string{"whoami", "-v"},
		StripArgs([]string{"-c", "cfg.json", "whoami", "-v"}, flags))
	assert.Equal(t, []string{"refresh"},
		StripArgs([]string{"-a", "-f", "x", "refresh"}, flags))
	assert.Empty(t, StripArgs(nil, flags))
}
