package light

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wassimk/elgato-light/internal/target"
)

// fakeLight serves /elgato/lights from an in-memory document.
type fakeLight struct {
	mu   sync.Mutex
	doc  string
	puts []statusDocument
}

func (f *fakeLight) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != lightsPath {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, f.doc) //nolint:errcheck // test server
	case http.MethodPut:
		var doc statusDocument
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.puts = append(f.puts, doc)
		json.NewEncoder(w).Encode(doc) //nolint:errcheck // test server
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func serverTarget(t *testing.T, srv *httptest.Server) target.Target {
	t.Helper()
	ap, err := netip.ParseAddrPort(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	tg, err := target.New("Test Light", ap.Addr(), ap.Port())
	require.NoError(t, err)
	return tg
}

func TestClient_GetStatus(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    State
		wantErr error
	}{
		{
			name: "on",
			doc:  `{"numberOfLights":1,"lights":[{"on":1,"brightness":40,"temperature":250}]}`,
			want: State{On: true, Brightness: 40, Mireds: 250},
		},
		{
			name: "off",
			doc:  `{"numberOfLights":1,"lights":[{"on":0,"brightness":3,"temperature":344}]}`,
			want: State{On: false, Brightness: 3, Mireds: 344},
		},
		{
			name: "first of several",
			doc:  `{"numberOfLights":2,"lights":[{"on":1,"brightness":1,"temperature":200},{"on":0,"brightness":2,"temperature":300}]}`,
			want: State{On: true, Brightness: 1, Mireds: 200},
		},
		{name: "empty lights", doc: `{"numberOfLights":0,"lights":[]}`, wantErr: ErrEmptyResponse},
		{name: "missing lights", doc: `{"numberOfLights":0}`, wantErr: ErrEmptyResponse},
		{name: "not json", doc: `<html>`, wantErr: ErrMalformedResponse},
		{name: "wrong types", doc: `{"lights":[{"on":"yes"}]}`, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(&fakeLight{doc: tt.doc})
			defer srv.Close()

			got, err := NewClient(time.Second).GetStatus(context.Background(), serverTarget(t, srv))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_SetStatus(t *testing.T) {
	fake := &fakeLight{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	err := NewClient(time.Second).SetStatus(context.Background(), serverTarget(t, srv), State{On: true, Brightness: 10, Mireds: 333})
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, statusDocument{
		NumberOfLights: 1,
		Lights:         []wireLight{{On: 1, Brightness: 10, Temperature: 333}},
	}, fake.puts[0])
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(time.Second).SetStatus(context.Background(), serverTarget(t, srv), State{})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Unreachable(t *testing.T) {
	// Grab a free port, then close the listener so nothing answers.
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	ap := netip.MustParseAddrPort(ln.Addr().String())
	require.NoError(t, ln.Close())

	tg, err := target.New("Gone", ap.Addr(), ap.Port())
	require.NoError(t, err)

	_, err = NewClient(time.Second).GetStatus(context.Background(), tg)
	assert.ErrorIs(t, err, ErrDeviceUnreachable)
	assert.Contains(t, err.Error(), ap.String())
	assert.Contains(t, err.Error(), "discover")
}

func TestClient_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(5*time.Second).GetStatus(ctx, serverTarget(t, srv))
	assert.ErrorIs(t, err, ErrDeviceUnreachable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
