package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewSafeClient_Timeout はタイムアウト設定が反映されることを検証する。
func TestNewSafeClient_Timeout(t *testing.T) {
	client := NewUpstreamGuard().NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient() returned nil")
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", client.Timeout)
	}
}

// TestNewSafeClient_HasTransport はsafeurlのTransportが設定されていることを検証する。
func TestNewSafeClient_HasTransport(t *testing.T) {
	client := NewUpstreamGuard().NewSafeClient(5 * time.Second)

	if client.Transport == nil || client.Transport == http.DefaultTransport {
		t.Fatal("expected custom Transport")
	}
}

// TestNewSafeClient_BlocksLoopback はループバックへのリクエストがブロックされることを検証する。
// httptestサーバーは127.0.0.1で起動する。
func TestNewSafeClient_BlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewUpstreamGuard().NewSafeClient(5 * time.Second)
	if _, err := client.Get(ts.URL + "/v0/topstories.json"); err == nil {
		t.Fatal("expected error for loopback address request, got nil")
	}
}

// TestValidateURL_Accepts は公開URLが許可されることを検証する。
func TestValidateURL_Accepts(t *testing.T) {
	guard := NewUpstreamGuard()

	for _, u := range []string{
		"https://hacker-news.firebaseio.com/v0",
		"https://hacker-news.firebaseio.com:443/v0",
		"http://hn.example.org/v0",
	} {
		t.Run(u, func(t *testing.T) {
			if err := guard.ValidateURL(u); err != nil {
				t.Errorf("ValidateURL(%q) returned error: %v", u, err)
			}
		})
	}
}

// TestValidateURL_Rejects は内部ネットワークや不正なURLが拒否されることを検証する。
func TestValidateURL_Rejects(t *testing.T) {
	guard := NewUpstreamGuard()

	for _, u := range []string{
		"",
		"not-a-url",
		"ftp://example.com/v0",
		"file:///etc/passwd",
		"https://example.com:8443/v0",
		"http://10.0.0.1/v0",
		"http://172.16.0.1/v0",
		"http://192.168.1.100/v0",
		"http://127.0.0.1/v0",
		"http://localhost/v0",
		"http://api.localhost/v0",
		"http://169.254.169.254/latest/meta-data/",
		"http://0.0.0.0/v0",
		"http://[::1]/v0",
		"http://[fd00::1]/v0",
	} {
		t.Run(u, func(t *testing.T) {
			if err := guard.ValidateURL(u); err == nil {
				t.Errorf("ValidateURL(%q) should have returned error", u)
			}
		})
	}
}
