package livereload_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glaze/internal/adapters/livereload"
	"go.trai.ch/glaze/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func startServer(t *testing.T) *livereload.Server {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	srv := livereload.NewServer(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, srv.Listen(ctx, "127.0.0.1:0"))
	return srv
}

func connect(t *testing.T, srv *livereload.Server) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/livereload", nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteJSON(livereload.Message{
		Command:   "hello",
		Protocols: []string{livereload.ProtocolV7},
	}))

	var hello livereload.Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "hello", hello.Command)
	assert.Equal(t, []string{livereload.ProtocolV7}, hello.Protocols)
	assert.Equal(t, "glaze", hello.ServerName)
	return conn
}

func TestServer_NotifyBroadcastsReload(t *testing.T) {
	srv := startServer(t)
	first := connect(t, srv)
	second := connect(t, srv)
	require.Eventually(t, func() bool { return srv.Clients() == 2 }, 5*time.Second, 10*time.Millisecond)

	srv.Notify([]string{"static/css/main.min.css"})

	for _, conn := range []*websocket.Conn{first, second} {
		var msg livereload.Message
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, livereload.Message{Command: "reload", Path: "static/css/main.min.css", LiveCSS: true}, msg)
	}
}

func TestServer_HandshakeRequiresProtocol7(t *testing.T) {
	srv := startServer(t)

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/livereload", nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(livereload.Message{
		Command:   "hello",
		Protocols: []string{"http://livereload.com/protocols/official-6"},
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 0, srv.Clients())
}

func TestServer_NotifyWithoutListenIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv := livereload.NewServer(mocks.NewMockLogger(ctrl))

	srv.Notify([]string{"static/css/main.min.css"})

	assert.Equal(t, 0, srv.Clients())
	assert.Empty(t, srv.Addr())
}

func TestServer_ChangedEndpoint(t *testing.T) {
	srv := startServer(t)
	conn := connect(t, srv)
	require.Eventually(t, func() bool { return srv.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/changed?files=static/css/a.css,static/images/b.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Clients int      `json:"clients"`
		Files   []string `json:"files"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Clients)
	assert.Equal(t, []string{"static/css/a.css", "static/images/b.png"}, body.Files)

	var paths []string
	for range 2 {
		var msg livereload.Message
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		paths = append(paths, msg.Path)
	}
	assert.Equal(t, body.Files, paths)
}

func TestServer_ChangedEndpoint_PostBody(t *testing.T) {
	srv := startServer(t)

	resp, err := http.Post("http://"+srv.Addr()+"/changed", "application/json",
		strings.NewReader(`{"files":["static/css/a.css"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"clients":0,"files":["static/css/a.css"]}`, string(data))
}

func TestServer_ChangedEndpoint_BadBody(t *testing.T) {
	srv := startServer(t)

	resp, err := http.Post("http://"+srv.Addr()+"/changed", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ScriptAndStatus(t *testing.T) {
	srv := startServer(t)

	resp, err := http.Get("http://" + srv.Addr() + "/livereload.js")
	require.NoError(t, err)
	script, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "javascript")
	assert.Contains(t, string(script), livereload.ProtocolV7)

	resp, err = http.Get("http://" + srv.Addr() + "/")
	require.NoError(t, err)
	status, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(status), `"glaze":"Welcome"`)
}

func TestServer_ListenAddressInUse(t *testing.T) {
	srv := startServer(t)

	ctrl := gomock.NewController(t)
	other := livereload.NewServer(mocks.NewMockLogger(ctrl))
	err := other.Listen(context.Background(), srv.Addr())
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to start live-reload server")
}

func TestServer_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	srv := livereload.NewServer(logger)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Listen(ctx, "127.0.0.1:0"))
	addr := srv.Addr()
	cancel()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return true
		}
		_ = resp.Body.Close()
		return false
	}, 5*time.Second, 20*time.Millisecond)
}
