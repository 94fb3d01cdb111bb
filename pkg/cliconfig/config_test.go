package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	opts := Defaults()

	assert.Equal(t, 2525, opts.Port)
	assert.Equal(t, "mb.pid", opts.PIDFile)
	assert.Equal(t, "mb.log", opts.LogFile)
	assert.Equal(t, "mb.json", opts.SaveFile)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, []string{"*"}, opts.IPWhitelist)
	assert.Equal(t, []string{"stringify", "inject"}, opts.TemplateHelpers)
	assert.True(t, opts.RenderTemplates())
	assert.NoError(t, opts.Validate())
}

func TestOptions_With(t *testing.T) {
	base := Defaults()

	next, err := base.With("port", "9999")
	require.NoError(t, err)
	assert.Equal(t, 9999, next.Port)
	assert.Equal(t, 2525, base.Port, "With must not modify the receiver")

	next, err = next.With("noParse", "true")
	require.NoError(t, err)
	assert.False(t, next.RenderTemplates())

	_, err = base.With("port", "abc")
	assert.Error(t, err)

	_, err = base.With("nosuchoption", "1")
	assert.Error(t, err)
}

func TestOptions_WithWhitelistSplitsOnPipe(t *testing.T) {
	opts, err := Defaults().With("ipWhitelist", "127.0.0.1| 10.0.*.* ||192.168.1.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1", "10.0.*.*", "192.168.1.5"}, opts.IPWhitelist)
}

func TestOptions_CloneIsDeep(t *testing.T) {
	base := Defaults()
	c := base.Clone()
	c.IPWhitelist[0] = "10.*"
	assert.Equal(t, "*", base.IPWhitelist[0])
}

func TestOptions_AdminURL(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 2525, "http://localhost:2525"},
		{"0.0.0.0", 9999, "http://localhost:9999"},
		{"127.0.0.1", 2525, "http://127.0.0.1:2525"},
		{"::1", 2525, "http://[::1]:2525"},
		{"mb.example.com", 80, "http://mb.example.com:80"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			opts := Options{Host: tt.host, Port: tt.port}
			assert.Equal(t, tt.want, opts.AdminURL())
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	opts := Defaults()
	opts.Port = 70000
	assert.Error(t, opts.Validate())

	opts = Defaults()
	opts.PIDFile = ""
	assert.Error(t, opts.Validate())
}

func TestApplyRCFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mbrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 3535
pidfile: /tmp/run/mb.pid
allowInjection: true
ipWhitelist:
  - 127.0.0.1
  - 10.*
`), 0644))

	opts, err := ApplyRCFile(Defaults(), path)
	require.NoError(t, err)

	assert.Equal(t, 3535, opts.Port)
	assert.Equal(t, "/tmp/run/mb.pid", opts.PIDFile)
	assert.True(t, opts.AllowInjection)
	assert.Equal(t, []string{"127.0.0.1", "10.*"}, opts.IPWhitelist)
	assert.Equal(t, "mb.json", opts.SaveFile, "keys absent from the file keep their defaults")
	assert.Equal(t, path, opts.RCFile)
}

func TestApplyRCFile_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mbrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prot: 3535\n"), 0644))

	_, err := ApplyRCFile(Defaults(), path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Path)
}

func TestApplyRCFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mbrc.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	opts, err := ApplyRCFile(Defaults(), path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, opts.Port)
}

func TestFindRCFile(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, FindRCFile(dir))

	path := filepath.Join(dir, ".mbrc.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 1\n"), 0644))
	assert.Equal(t, path, FindRCFile(dir))
}

func TestApplyEnv(t *testing.T) {
	opts, err := ApplyEnv(Defaults(), envMap(map[string]string{
		"MB_PORT":     "4545",
		"MB_PIDFILE":  "env.pid",
		"MB_LOGLEVEL": "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, 4545, opts.Port)
	assert.Equal(t, "env.pid", opts.PIDFile)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, "mb.json", opts.SaveFile)
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	_, err := ApplyEnv(Defaults(), envMap(map[string]string{"MB_PORT": "twenty"}))
	assert.ErrorContains(t, err, "MB_PORT")
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 3000\nsavefile: rc.json\n"), 0644))

	opts, err := Load(path, envMap(map[string]string{"MB_PORT": "4000"}))
	require.NoError(t, err)

	assert.Equal(t, 4000, opts.Port, "env overrides rc file")
	assert.Equal(t, "rc.json", opts.SaveFile, "rc file overrides defaults")
}

func TestLoad_MissingExplicitRCFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), envMap(nil))
	assert.Error(t, err)
}

func TestAliases_PointAtCanonicalFields(t *testing.T) {
	for _, a := range Aliases {
		_, ok := LookupField(a.Canonical)
		assert.True(t, ok, "alias %s targets unknown option %s", a.Name, a.Canonical)
	}
	assert.Len(t, AliasesFor("configfile"), 1)
	assert.Empty(t, AliasesFor("mock"))
}

func TestSplitWhitelist(t *testing.T) {
	assert.Equal(t, []string{"*"}, SplitWhitelist("*"))
	assert.Nil(t, SplitWhitelist(""))
	assert.Equal(t, []string{"a", "b"}, SplitWhitelist("a|b"))
}
