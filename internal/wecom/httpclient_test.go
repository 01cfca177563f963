package wecom

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sungwon/commit-notifier/internal/changelog"
)

// fakeWeCom is an httptest-backed stand-in for the WeCom API that records
// the order of calls.
type fakeWeCom struct {
	mu       sync.Mutex
	calls    []string
	lastBody []byte
	sendResp string
}

func (f *fakeWeCom) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/cgi-bin/gettoken", func(w http.ResponseWriter, r *http.Request) {
		f.record("gettoken", nil)
		if r.URL.Query().Get("corpsecret") != "secret" {
			w.Write([]byte(`{"errcode":40001,"errmsg":"invalid credential"}`))
			return
		}
		w.Write([]byte(`{"errcode":0,"errmsg":"ok","access_token":"live-token","expires_in":7200}`))
	})
	mux.HandleFunc("/cgi-bin/message/send", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.record("send", body)
		if r.URL.Query().Get("access_token") != "live-token" {
			w.Write([]byte(`{"errcode":40014,"errmsg":"invalid access_token"}`))
			return
		}
		w.Write([]byte(f.sendResp))
	})
	return mux
}

func (f *fakeWeCom) record(call string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if body != nil {
		f.lastBody = body
	}
}

func (f *fakeWeCom) snapshot() ([]string, []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...), f.lastBody
}

func TestDefaultHTTPClient_EndToEnd(t *testing.T) {
	fake := &fakeWeCom{sendResp: `{"errcode":0,"errmsg":"ok","invaliduser":""}`}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	d, err := NewFromConfig(Config{
		CorpID:     "corp",
		CorpSecret: "secret",
		AgentID:    42,
		UserID:     "alice",
		Endpoint:   srv.URL,
		Timeout:    5 * time.Second,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	records := []changelog.ChangeRecord{{Summary: "fix bug", Timestamp: "2024-01-01 10:00:00", Author: "alice"}}
	result := d.Send(context.Background(), records, Recipient{AgentID: 42, UserID: "alice"}, "myrepo")
	if !result.Succeeded() {
		t.Fatalf("expected success, got %+v (err: %v)", result, result.Err)
	}

	calls, body := fake.snapshot()
	if len(calls) != 2 || calls[0] != "gettoken" || calls[1] != "send" {
		t.Fatalf("expected calls [gettoken send], got %v", calls)
	}

	var payload textPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("server received invalid JSON: %v", err)
	}
	if payload.ToUser != "alice" || payload.AgentID != 42 || payload.MsgType != "text" {
		t.Errorf("unexpected payload %+v", payload)
	}
	if payload.Text.Content != FormatRecords("myrepo", records) {
		t.Errorf("unexpected content %q", payload.Text.Content)
	}
}

func TestDefaultHTTPClient_BadCredentials(t *testing.T) {
	fake := &fakeWeCom{sendResp: `{"errcode":0,"errmsg":"ok"}`}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)
	tokens := NewCredentialProvider(Credentials{CorpID: "corp", CorpSecret: "wrong"}, srv.URL, client, zerolog.Nop())
	d := NewDispatcher(tokens, srv.URL, client, zerolog.Nop())

	result := d.Send(context.Background(), sampleRecords, sampleRecipient, "myrepo")
	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	if result.Err.Kind != KindProtocol || result.Err.Code != 40001 {
		t.Errorf("unexpected error %v", result.Err)
	}
	if calls, _ := fake.snapshot(); len(calls) != 1 {
		t.Errorf("expected only the token call, got %v", calls)
	}
}

func TestDefaultHTTPClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	client := NewHTTPClient(2 * time.Second)
	p := NewCredentialProvider(Credentials{CorpID: "c", CorpSecret: "s"}, endpoint, client, zerolog.Nop())

	_, err := p.AcquireToken(context.Background())
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestDefaultHTTPClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewHTTPClient(5 * time.Second)
	_, err := client.Do(ctx, &HTTPRequest{Method: http.MethodGet, URL: srv.URL})
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
}
