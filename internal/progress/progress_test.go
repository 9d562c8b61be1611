package progress

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/progress/sim-test"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestReporterBroadcastsPercentToSubscriber(t *testing.T) {
	r := NewReporter()
	server := httptest.NewServer(r.Router())
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	require.Eventually(t, func() bool { return r.subscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	r.Report("sim-1", 42.5)

	var got Message
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "sim-1", got.SimID)
	require.Equal(t, "percent", got.Kind)
	require.Equal(t, 42.5, got.Percent)
}

func TestReporterBroadcastsTimesToSubscriber(t *testing.T) {
	r := NewReporter()
	server := httptest.NewServer(r.Router())
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	require.Eventually(t, func() bool { return r.subscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	r.ReportTimes("sim-2", 1.5, 3.0)

	var got Message
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "sim-2", got.SimID)
	require.Equal(t, "times", got.Kind)
	require.Equal(t, 1.5, got.WallSeconds)
	require.Equal(t, 3.0, got.SimSeconds)
}

func TestReportWithNoSubscribersDoesNotBlock(t *testing.T) {
	r := NewReporter()
	done := make(chan struct{})
	go func() {
		r.Report("sim-3", 10)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Report blocked with no subscribers")
	}
}

func TestSubscriberDeregistersOnClose(t *testing.T) {
	r := NewReporter()
	server := httptest.NewServer(r.Router())
	defer server.Close()

	conn := dial(t, server)
	require.Eventually(t, func() bool { return r.subscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	r.Report("sim-4", 1) // nudges the write loop to observe the closed socket

	require.Eventually(t, func() bool { return r.subscriberCount() == 0 }, time.Second, 10*time.Millisecond)
}
