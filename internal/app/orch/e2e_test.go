package orch

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/VoiceClient/internal/adapters/signal"
	"github.com/dkeye/VoiceClient/internal/app/media"
	"github.com/dkeye/VoiceClient/internal/app/views"
	"github.com/dkeye/VoiceClient/internal/core/coretest"
	"github.com/gin-gonic/gin"
)

type request struct {
	method, path, query, body string
}

type bridge struct {
	mu    sync.Mutex
	reqs  []request
	offer string
	seen  chan string
}

func newBridge(t *testing.T, offer string) (*bridge, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b := &bridge{offer: offer, seen: make(chan string, 16)}
	r := gin.New()
	r.Any("/conferenceGid/:room/endpoint/:endpoint", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		b.mu.Lock()
		b.reqs = append(b.reqs, request{c.Request.Method, c.Request.URL.Path, c.Request.URL.RawQuery, string(body)})
		b.mu.Unlock()
		b.seen <- c.Request.Method
		if c.Request.Method == http.MethodGet {
			c.String(http.StatusOK, b.offer)
			return
		}
		c.Status(http.StatusNoContent)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv.URL
}

func (b *bridge) await(t *testing.T, method string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case m := <-b.seen:
			if m == method {
				return
			}
		case <-deadline:
			t.Fatalf("no %s request", method)
		}
	}
}

func (b *bridge) requests() []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]request(nil), b.reqs...)
}

func TestJoinAnswerLeave(t *testing.T) {
	offer := coretest.SDP("bridge", "bob")
	b, url := newBridge(t, offer)

	ch := signal.NewHTTPChannel(signal.Config{Timeout: 2 * time.Second})
	factory := &coretest.Factory{}
	sess, err := media.NewSession(factory, media.Options{})
	if err != nil {
		t.Fatal(err)
	}
	pool := views.NewPool(4)
	o := New(ch, sess, pool, Config{BaseURL: url})

	if err := o.Connect("42", "alice", ""); err != nil {
		t.Fatal(err)
	}
	b.await(t, http.MethodGet)
	b.await(t, http.MethodPost)

	pc := factory.Last()
	if pc == nil {
		t.Fatal("no peer connection created")
	}
	pc.Observer.OnStreamAdded("bob")
	if s := pool.Snapshot()[1]; s.Stream != "bob" {
		t.Fatalf("remote slot = %+v", s)
	}

	o.Disconnect()
	ch.Wait()
	if pc.CloseCount() != 1 {
		t.Fatalf("closed %d times", pc.CloseCount())
	}

	reqs := b.requests()
	var posts []request
	for _, r := range reqs {
		if r.method == http.MethodPost {
			posts = append(posts, r)
		}
	}
	if len(posts) != 1 {
		t.Fatalf("posts = %+v", posts)
	}
	if posts[0].path != "/conferenceGid/42/endpoint/alice" || posts[0].body != coretest.AnswerPrefix+offer {
		t.Fatalf("post = %+v", posts[0])
	}
	if reqs[0].method != http.MethodGet || reqs[0].query == "" {
		t.Fatalf("join = %+v", reqs[0])
	}
	if last := reqs[len(reqs)-1]; last.method != http.MethodDelete {
		t.Fatalf("last request = %+v", last)
	}
}
