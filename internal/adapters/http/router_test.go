package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/VoiceClient/internal/app/orch"
	"github.com/dkeye/VoiceClient/internal/app/views"
	"github.com/dkeye/VoiceClient/internal/config"
	"github.com/dkeye/VoiceClient/internal/domain"
	"github.com/gorilla/websocket"
)

type fakeController struct {
	mu          sync.Mutex
	connectErr  error
	rooms       []string
	subs        map[domain.EndpointID]bool
	audio       bool
	video       bool
	disconnects int
}

func newFakeController() *fakeController {
	return &fakeController{subs: map[domain.EndpointID]bool{}, audio: true}
}

func (f *fakeController) Connect(room, identity, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return f.connectErr
	}
	f.rooms = append(f.rooms, room)
	return nil
}

func (f *fakeController) Disconnect() {
	f.mu.Lock()
	f.disconnects++
	f.mu.Unlock()
}

func (f *fakeController) Subscribe(id domain.EndpointID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "me" {
		return domain.ErrSelfSubscription
	}
	f.subs[id] = true
	return nil
}

func (f *fakeController) Unsubscribe(id domain.EndpointID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, id)
	return nil
}

func (f *fakeController) SetAudioEnabled(b bool) {
	f.mu.Lock()
	f.audio = b
	f.mu.Unlock()
}

func (f *fakeController) SetVideoEnabled(b bool) {
	f.mu.Lock()
	f.video = b
	f.mu.Unlock()
}

func (f *fakeController) Status() orch.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := orch.Status{State: "active", Audio: f.audio, Video: f.video, Subscriptions: []domain.EndpointID{}}
	for id := range f.subs {
		st.Subscriptions = append(st.Subscriptions, id)
	}
	return st
}

type metricsStub struct{}

func (metricsStub) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("voiceclient_negotiation_rounds_total 1\n"))
}

func newTestRouter(t *testing.T, limiter *RateLimiter) (*fakeController, *views.Pool, http.Handler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ctl := newFakeController()
	pool := views.NewPool(3)
	cfg := &config.Config{Mode: "test", Secret: "0123456789abcdef", ReadLimit: 4096, PingPeriod: time.Second}
	r := SetupRouter(ctx, cfg, Deps{Controller: ctl, Slots: pool, Metrics: metricsStub{}, ConnectLimiter: limiter})
	return ctl, pool, r
}

func do(t *testing.T, h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestConnectRemembersSession(t *testing.T) {
	ctl, _, r := newTestRouter(t, nil)

	if w := do(t, r, http.MethodGet, "/api/session", ""); w.Code != http.StatusNotFound {
		t.Fatalf("session before connect = %d", w.Code)
	}

	w := do(t, r, http.MethodPost, "/api/connect", `{"room":"42","identity":"alice"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("connect = %d %s", w.Code, w.Body)
	}
	if len(ctl.rooms) != 1 || ctl.rooms[0] != "42" {
		t.Fatalf("rooms = %v", ctl.rooms)
	}

	w = do(t, r, http.MethodGet, "/api/session", "", sessionCookie(t, w))
	var got SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Room != "42" || got.Identity != "alice" {
		t.Fatalf("session = %+v", got)
	}
}

func TestConnectErrors(t *testing.T) {
	ctl, _, r := newTestRouter(t, nil)
	if w := do(t, r, http.MethodPost, "/api/connect", `{"identity":"alice"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing room = %d", w.Code)
	}
	ctl.connectErr = domain.ErrInvalidState
	if w := do(t, r, http.MethodPost, "/api/connect", `{"room":"42"}`); w.Code != http.StatusConflict {
		t.Fatalf("busy = %d", w.Code)
	}
}

func TestConnectRateLimited(t *testing.T) {
	_, _, r := newTestRouter(t, NewRateLimiter(2, time.Minute))
	for i := 0; i < 2; i++ {
		if w := do(t, r, http.MethodPost, "/api/connect", `{"room":"42"}`); w.Code != http.StatusAccepted {
			t.Fatalf("attempt %d = %d", i, w.Code)
		}
	}
	if w := do(t, r, http.MethodPost, "/api/connect", `{"room":"42"}`); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt = %d", w.Code)
	}
	// Other routes are not limited.
	if w := do(t, r, http.MethodGet, "/api/status", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSubscriptionRoutes(t *testing.T) {
	ctl, _, r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPut, "/api/subscriptions/bob", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"bob"`) {
		t.Fatalf("subscribe = %d %s", w.Code, w.Body)
	}
	if w := do(t, r, http.MethodPut, "/api/subscriptions/me", ""); w.Code != http.StatusConflict {
		t.Fatalf("self = %d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/api/subscriptions/bob", ""); w.Code != http.StatusOK {
		t.Fatalf("unsubscribe = %d", w.Code)
	}
	if len(ctl.subs) != 0 {
		t.Fatalf("subs = %v", ctl.subs)
	}
}

func TestTrackRoutes(t *testing.T) {
	ctl, _, r := newTestRouter(t, nil)

	if w := do(t, r, http.MethodPut, "/api/tracks/audio", `{"enabled":false}`); w.Code != http.StatusOK {
		t.Fatalf("audio = %d %s", w.Code, w.Body)
	}
	if ctl.audio {
		t.Fatal("audio still enabled")
	}
	if w := do(t, r, http.MethodPut, "/api/tracks/video", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing flag = %d", w.Code)
	}
	if w := do(t, r, http.MethodPut, "/api/tracks/screen", `{"enabled":true}`); w.Code != http.StatusNotFound {
		t.Fatalf("unknown kind = %d", w.Code)
	}
}

func TestDisconnectAndMetrics(t *testing.T) {
	ctl, _, r := newTestRouter(t, nil)
	if w := do(t, r, http.MethodPost, "/api/disconnect", ""); w.Code != http.StatusOK {
		t.Fatalf("disconnect = %d", w.Code)
	}
	if ctl.disconnects != 1 {
		t.Fatalf("disconnects = %d", ctl.disconnects)
	}
	w := do(t, r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "voiceclient_") {
		t.Fatalf("metrics = %d %s", w.Code, w.Body)
	}
}

func readFeed(t *testing.T, ws *websocket.Conn) FeedMessage {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg FeedMessage
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestEventsFeed(t *testing.T) {
	_, pool, r := newTestRouter(t, nil)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/events"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	snap := readFeed(t, ws)
	if snap.Type != "snapshot" || len(snap.Slots) != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}

	slot, ok := pool.GetRemoteSlot("bob")
	if !ok {
		t.Fatal("no slot")
	}
	slot.Attach("bob")
	ev := readFeed(t, ws)
	if ev.Type != "slot" || ev.Event == nil || ev.Event.Stream != "bob" || !ev.Event.Attached {
		t.Fatalf("event = %+v", ev)
	}

	if err := ws.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatal(err)
	}
	if pong := readFeed(t, ws); pong.Type != "pong" {
		t.Fatalf("pong = %+v", pong)
	}
}
