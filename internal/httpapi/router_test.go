package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/metaneutrons/snapdog2-sub015/internal/httpapi"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
)

type fakeDispatcher struct {
	last model.Command
	err  *model.AppError
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, cmd model.Command) *model.AppError {
	f.last = cmd
	return f.err
}

type fakeMedia struct{ count int }

func (f *fakeMedia) PlaylistCount(ctx context.Context) (int, error) { return f.count, nil }
func (f *fakeMedia) GetPlaylist(ctx context.Context, idx int) (model.Playlist, error) {
	return model.Playlist{PlaylistIndex: idx, Name: "Radio"}, nil
}
func (f *fakeMedia) GetTrack(ctx context.Context, pl, tr int) (model.Track, error) {
	return model.Track{ID: "t1"}, nil
}

func newTestServer(authEnabled bool, keys []string) (*httptest.Server, *store.ZoneStore, *store.ClientStore, *fakeDispatcher) {
	zones := store.NewZoneStore([]model.Zone{{ZoneIndex: 1, Name: "Living Room", Volume: 40}})
	clients := store.NewClientStore([]model.Client{{ClientIndex: 1, ZoneIndex: 1, Volume: 50}})
	disp := &fakeDispatcher{}
	handler := httpapi.NewRouter(zones, clients, &fakeMedia{count: 1}, disp, nil, authEnabled, keys)
	return httptest.NewServer(handler), zones, clients, disp
}

func TestHealthEndpointsRequireNoAuth(t *testing.T) {
	srv, _, _, _ := newTestServer(true, []string{"secret"})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestV1EndpointRejectsMissingAPIKey(t *testing.T) {
	srv, _, _, _ := newTestServer(true, []string{"secret"})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/zones")
	if err != nil {
		t.Fatalf("GET /v1/zones: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestV1EndpointAcceptsValidAPIKey(t *testing.T) {
	srv, _, _, _ := newTestServer(true, []string{"secret"})
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/zones", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /v1/zones: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGetZoneReturnsEnvelope(t *testing.T) {
	srv, _, _, _ := newTestServer(false, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/zones/1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var env struct {
		Success   bool       `json:"success"`
		Data      model.Zone `json:"data"`
		RequestID string     `json:"requestId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success || env.Data.ZoneIndex != 1 || env.RequestID == "" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestGetUnknownZoneReturnsNotFound(t *testing.T) {
	srv, _, _, _ := newTestServer(false, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/zones/99")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPlayDispatchesControlCommand(t *testing.T) {
	srv, _, _, disp := newTestServer(false, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/zones/1/play", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if disp.last.Kind != model.CmdControl || disp.last.Control != model.ActionPlay || disp.last.ZoneIndex != 1 {
		t.Errorf("unexpected dispatched command: %+v", disp.last)
	}
}

func TestPutZoneVolumeAcceptsBareJSONValue(t *testing.T) {
	srv, _, _, disp := newTestServer(false, nil)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/v1/zones/1/volume", strings.NewReader("42"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	defer resp.Body.Close()

	if disp.last.Kind != model.CmdSetZoneVolume || disp.last.Volume != 42 {
		t.Errorf("unexpected dispatched command: %+v", disp.last)
	}
}

func TestListPlaylistsReturnsConfiguredCount(t *testing.T) {
	srv, _, _, _ := newTestServer(false, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/media/playlists")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var env struct {
		Data []model.Playlist `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 {
		t.Errorf("playlist count = %d, want 1", len(env.Data))
	}
}
