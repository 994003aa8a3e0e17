package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTCPServer(t *testing.T) *TCPServer {
	t.Helper()
	srv := NewTCPServer("127.0.0.1:0", 4)
	require.NoError(t, srv.Listen())
	go srv.Serve()
	t.Cleanup(srv.Stop)
	return srv
}

func roundTrip(t *testing.T, conn net.Conn, req EvalRequest) EvalResponse {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	_, err = fmt.Fprintf(conn, "%s\n", raw)
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)

	var resp EvalResponse
	require.NoError(t, json.Unmarshal(line, &resp))
	return resp
}

func TestTCPEvaluate(t *testing.T) {
	srv := startTCPServer(t)
	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()

	resp := roundTrip(t, conn, EvalRequest{Expression: "= 2 + 3 * 4"})
	require.True(t, resp.Success, "error: %s", resp.Error)
	assert.Equal(t, 14.0, resp.Result)
	assert.NotZero(t, resp.RequestID)
}

func TestTCPVariablesAndAssignments(t *testing.T) {
	srv := startTCPServer(t)
	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()

	resp := roundTrip(t, conn, EvalRequest{
		Expression: "= SUM(:sales, 1000)",
		Variables:  map[string]interface{}{"sales": 5000},
	})
	require.True(t, resp.Success, "error: %s", resp.Error)
	assert.Equal(t, 6000.0, resp.Result)

	resp = roundTrip(t, conn, EvalRequest{Expression: ":a := 2; :a * 3"})
	require.True(t, resp.Success, "error: %s", resp.Error)
	assert.Equal(t, 6.0, resp.Result)
}

func TestTCPOutputJSONShape(t *testing.T) {
	srv := startTCPServer(t)
	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()

	resp := roundTrip(t, conn, EvalRequest{Expression: "1 + 1", OutputJSON: true})
	require.True(t, resp.Success, "error: %s", resp.Error)
	shaped, ok := resp.Result.(map[string]interface{})
	require.True(t, ok, "structured result expected, got %T", resp.Result)
	assert.Equal(t, 2.0, shaped["result"])
	assert.Equal(t, "Number", shaped["type"])
}

func TestTCPErrorsReportedInBand(t *testing.T) {
	srv := startTCPServer(t)
	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer conn.Close()

	resp := roundTrip(t, conn, EvalRequest{Expression: "1 / 0"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "division by zero")

	// Malformed JSON also answers in-band instead of dropping the line.
	_, err = fmt.Fprintf(conn, "{not json}\n")
	require.NoError(t, err)
	reader := bufio.NewReader(conn)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)
	var raw EvalResponse
	require.NoError(t, json.Unmarshal(line, &raw))
	assert.False(t, raw.Success)
	assert.Contains(t, raw.Error, "invalid JSON request")
}
