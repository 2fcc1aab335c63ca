package statsd

import (
	"net"
	"strings"
	"testing"
	"time"
)

func TestNormalizeMetricName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" sla/summary ":  "sla_summary",
		"store..op":      "store.op",
		"multi  space":   "multi__space",
		".cache.lookup.": "cache.lookup",
	}
	for input, want := range tests {
		if got := normalizeMetricName(input); got != want {
			t.Fatalf("normalizeMetricName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{"env": "prod", " service ": " sla-summary "}
	local := map[string]string{"result": " success ", "": "ignored", "env": "stage"}

	got := formatTags(global, local)
	want := "|#env:stage,result:success,service:sla-summary"
	if got != want {
		t.Fatalf("formatTags mismatch\n got: %q\nwant: %q", got, want)
	}
	if got := formatTags(nil, nil); got != "" {
		t.Fatalf("formatTags(nil, nil) = %q, want empty string", got)
	}
}

func TestClientLine(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Prefix: " .sla. ", GlobalTags: map[string]string{"env": "test"}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Enabled() {
		t.Fatal("disabled config should not produce a live client")
	}

	if got, want := c.line("store.op", "1|c", nil), "sla.store.op:1|c|#env:test"; got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
	if got := c.line("  ", "1|c", nil); got != "" {
		t.Fatalf("blank metric should render nothing, got %q", got)
	}
}

func TestClientWritesAndCloses(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{prefix: "sla", conn: clientConn, globalTags: map[string]string{}}
	if !client.Enabled() {
		t.Fatal("expected client.Enabled to report true with active connection")
	}

	done := make(chan string, 1)
	go func() {
		buf := make([]byte, 256)
		n, _ := peerConn.Read(buf)
		done <- string(buf[:n])
	}()

	client.Timing("store.duration", 1500*time.Microsecond, map[string]string{"op": "get"})
	if got := <-done; !strings.HasPrefix(got, "sla.store.duration:1.5|ms|#op:get") {
		t.Fatalf("unexpected line %q", got)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if client.Enabled() {
		t.Fatal("expected client.Enabled to report false after Close")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}

	var nilClient *Client
	nilClient.Count("x", 1, nil)
}
