package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLight serves the /elgato/lights API for one light.
type fakeLight struct {
	mu          sync.Mutex
	on          int
	brightness  int
	temperature int
}

func (f *fakeLight) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/elgato/lights" {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method == http.MethodPut {
		var doc struct {
			Lights []struct {
				On          int `json:"on"`
				Brightness  int `json:"brightness"`
				Temperature int `json:"temperature"`
			} `json:"lights"`
		}
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || len(doc.Lights) != 1 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		f.on, f.brightness, f.temperature = doc.Lights[0].On, doc.Lights[0].Brightness, doc.Lights[0].Temperature
	}

	fmt.Fprintf(w, `{"numberOfLights":1,"lights":[{"on":%d,"brightness":%d,"temperature":%d}]}`,
		f.on, f.brightness, f.temperature)
}

func (f *fakeLight) state() (on, brightness, temperature int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on, f.brightness, f.temperature
}

// testEnv is a config file pointing every path into a temp dir and the
// device port at a fake light on 127.0.0.1.
type testEnv struct {
	light      *fakeLight
	configPath string
	cachePath  string
	port       uint16
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	t.Setenv("ELGATO_LIGHT_IP", "")
	t.Setenv(configEnv, "")

	fake := &fakeLight{brightness: 50, temperature: 250}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ap := netip.MustParseAddrPort(strings.TrimPrefix(srv.URL, "http://"))
	dir := t.TempDir()
	env := &testEnv{
		light:      fake,
		configPath: filepath.Join(dir, "config.yaml"),
		cachePath:  filepath.Join(dir, "lights.json"),
		port:       ap.Port(),
	}

	cfg := fmt.Sprintf(`
discovery:
  enabled: false
cache:
  path: %q
device:
  port: %d
  request_timeout: 2s
history:
  enabled: true
  path: %q
logging:
  level: error
  format: text
`, env.cachePath, env.port, filepath.Join(dir, "history.db"))
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0600))

	return env
}

// writeCache stores named lights at 127.0.0.1 on the fake's port.
func (e *testEnv) writeCache(t *testing.T, names ...string) {
	t.Helper()
	entries := make([]map[string]any, len(names))
	for i, n := range names {
		entries[i] = map[string]any{"name": n, "address": "127.0.0.1", "port": e.port}
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(e.cachePath, data, 0600))
}

func (e *testEnv) run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	code = run(ctx, append([]string{"--config", e.configPath}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), []string{"version"}, &out, io.Discard)

	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(out.String(), "elgato-light dev"))
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, exitUsage},
		{"unknown command", []string{"dim"}, exitUsage},
		{"unknown global flag", []string{"--verbose", "status"}, exitUsage},
		{"help", []string{"--help"}, exitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(context.Background(), tt.args, &out, &errOut)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, out.String()+errOut.String(), "usage: elgato-light")
		})
	}
}

func TestRun_MissingConfigFile(t *testing.T) {
	var errOut bytes.Buffer
	code := run(context.Background(), []string{"--config", "/nonexistent/config.yaml", "status"}, io.Discard, &errOut)

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut.String(), "loading config")
}

func TestRun_OnSingleLight(t *testing.T) {
	env := newTestEnv(t)

	code, stdout, stderr := env.run(t, "on", "--ip", "127.0.0.1")

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Light on (brightness: 10%, temperature: 3000K)\n", stdout)

	on, brightness, temperature := env.light.state()
	assert.Equal(t, 1, on)
	assert.Equal(t, 10, brightness)
	assert.Equal(t, 333, temperature)
}

func TestRun_OnWithFlagsAfterSelection(t *testing.T) {
	env := newTestEnv(t)

	code, stdout, stderr := env.run(t, "on", "-i", "127.0.0.1", "-b", "80", "--temperature=5000")

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Light on (brightness: 80%, temperature: 5000K)\n", stdout)
}

func TestRun_Status(t *testing.T) {
	env := newTestEnv(t)

	code, stdout, stderr := env.run(t, "status", "--ip", "127.0.0.1")

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Power:       Off\nBrightness:  50%\nTemperature: 4000K\n", stdout)
}

func TestRun_MultipleLightsArePrefixed(t *testing.T) {
	env := newTestEnv(t)

	code, stdout, stderr := env.run(t, "off", "--ip", "127.0.0.1,127.0.0.1")

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "127.0.0.1: Light off\n127.0.0.1: Light off\n", stdout)
}

func TestRun_BrightnessNegativeDelta(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bare negative", []string{"brightness", "-20", "--ip", "127.0.0.1"}, "Brightness: 30%\n"},
		{"after separator", []string{"brightness", "--ip", "127.0.0.1", "--", "-20"}, "Brightness: 30%\n"},
		{"saturates", []string{"brightness", "+90", "--ip", "127.0.0.1"}, "Brightness: 100%\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			code, stdout, stderr := env.run(t, tt.args...)

			require.Equal(t, exitOK, code, stderr)
			assert.Equal(t, tt.want, stdout)
			on, _, _ := env.light.state()
			assert.Equal(t, 1, on, "adjusting brightness powers the light on")
		})
	}
}

func TestRun_Temperature(t *testing.T) {
	env := newTestEnv(t)

	code, stdout, stderr := env.run(t, "temperature", "5000", "--ip", "127.0.0.1")

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Temperature: 5000K\n", stdout)
	_, _, temperature := env.light.state()
	assert.Equal(t, 200, temperature)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"temperature out of range", []string{"temperature", "9000", "--ip", "127.0.0.1"}},
		{"brightness out of range", []string{"on", "-b", "120", "--ip", "127.0.0.1"}},
		{"missing value", []string{"brightness", "--ip", "127.0.0.1"}},
		{"not a number", []string{"temperature", "warm", "--ip", "127.0.0.1"}},
		{"unexpected argument", []string{"off", "now", "--ip", "127.0.0.1"}},
		{"unknown flag", []string{"status", "--all"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			code, stdout, stderr := env.run(t, tt.args...)

			assert.Equal(t, exitUsage, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "error: ")
		})
	}
}

func TestRun_OneLightFailing(t *testing.T) {
	env := newTestEnv(t)

	code, stdout, stderr := env.run(t, "off", "--ip", "127.0.0.1,127.0.0.2")

	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "127.0.0.1: Light off\n", stdout)
	assert.True(t, strings.HasPrefix(stderr, "127.0.0.2: error: "), stderr)
}

func TestRun_ConflictingSelectors(t *testing.T) {
	env := newTestEnv(t)

	code, _, stderr := env.run(t, "status", "--ip", "127.0.0.1", "--name", "desk")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "--ip and --name")

	code, _, stderr = env.run(t, "status", "--ip", "   ", "--name", "desk")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "--ip and --name")
}

func TestRun_DiscoveryUnavailable(t *testing.T) {
	env := newTestEnv(t)

	code, _, stderr := env.run(t, "status")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "use --ip")
}

func TestRun_DefaultAddressFromEnv(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("ELGATO_LIGHT_IP", "127.0.0.1")

	code, stdout, stderr := env.run(t, "off")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Light off\n", stdout)
}

func TestRun_NameFilterUsesCache(t *testing.T) {
	env := newTestEnv(t)
	env.writeCache(t, "Desk Left", "Shelf")

	code, stdout, stderr := env.run(t, "off", "--name", "DESK")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Light off\n", stdout)

	code, _, stderr = env.run(t, "off", "-n", "closet")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, `"closet"`)
}

func TestRun_ListAndClearCache(t *testing.T) {
	env := newTestEnv(t)
	env.writeCache(t, "Shelf", "Desk")

	code, stdout, _ := env.run(t, "list")
	require.Equal(t, exitOK, code)
	want := fmt.Sprintf("Desk (127.0.0.1:%d)\nShelf (127.0.0.1:%d)\n", env.port, env.port)
	assert.Equal(t, want, stdout)

	code, stdout, _ = env.run(t, "clear-cache")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "Cache cleared\n", stdout)

	code, stdout, stderr := env.run(t, "list")
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "discovery is not available here; use --ip")
}

func TestRun_DiscoverUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.writeCache(t, "Desk")

	code, _, stderr := env.run(t, "discover", "--timeout", "1s")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "not available")

	_, err := os.Stat(env.cachePath)
	assert.True(t, os.IsNotExist(err), "discover invalidates the cache first")
}

func TestRun_History(t *testing.T) {
	env := newTestEnv(t)

	code, _, stderr := env.run(t, "history")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "No history")

	code, _, stderr = env.run(t, "on", "--ip", "127.0.0.1,127.0.0.2", "-b", "40")
	require.Equal(t, exitFailure, code, stderr)

	code, stdout, stderr := env.run(t, "history", "-n", "5")
	require.Equal(t, exitOK, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "RESULT")
	assert.Contains(t, stdout, "ok (on, 40%, 3003K)")
	assert.Contains(t, stdout, "error: ")
	assert.Contains(t, stdout, "on brightness=40 temperature=3000K")
}

func TestParseArgs(t *testing.T) {
	newFS := func() (*flag.FlagSet, *string, *bool) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		s := fs.String("ip", "", "")
		b := fs.Bool("v", false, "")
		return fs, s, b
	}

	tests := []struct {
		name       string
		args       []string
		positional []string
		ip         string
		verbose    bool
	}{
		{"value first", []string{"20", "--ip", "a"}, []string{"20"}, "a", false},
		{"negative number", []string{"--ip", "a", "-20"}, []string{"-20"}, "a", false},
		{"flag value looks negative", []string{"--ip", "-5"}, nil, "-5", false},
		{"bool flag does not consume", []string{"-v", "7"}, []string{"7"}, "", true},
		{"inline value", []string{"--ip=b", "x"}, []string{"x"}, "b", false},
		{"separator", []string{"--", "--ip"}, []string{"--ip"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, ip, verbose := newFS()
			positional, err := parseArgs(fs, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.positional, positional)
			assert.Equal(t, tt.ip, *ip)
			assert.Equal(t, tt.verbose, *verbose)
		})
	}
}
