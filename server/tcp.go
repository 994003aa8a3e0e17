package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("skillet.server")

// ---------------------------------------------------------------------------
// TCP line-protocol server
//
// One UTF-8 JSON object per line, newline terminated. Request:
//   {"expression": "=2+3", "variables": {"x": 10}, "output_json": true}
// Response:
//   {"success": true, "result": 5, "execution_time_ms": 0.1, "request_id": 1}
// ---------------------------------------------------------------------------

// TCPServer serves the line protocol on a bounded worker pool.
type TCPServer struct {
	addr     string
	pool     *Pool
	stats    *Stats
	requests atomic.Uint64
	listener net.Listener
}

// NewTCPServer creates a server bound to addr with the given worker count.
func NewTCPServer(addr string, workers int) *TCPServer {
	return &TCPServer{
		addr:  addr,
		pool:  NewPool(workers),
		stats: NewStats(),
	}
}

// Listen binds the listener without serving yet.
func (s *TCPServer) Listen() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.addr, err)
	}
	s.listener = listener
	log.Infof("Skillet server listening on %s", listener.Addr())
	return nil
}

// ListenAndServe accepts connections until Stop closes the listener.
func (s *TCPServer) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Serve runs the accept loop on an already-bound listener.
func (s *TCPServer) Serve() error {
	listener := s.listener
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// Listener closed by Stop.
			return nil
		}
		s.pool.Submit(func() {
			s.handleConn(conn)
		})
	}
}

// Addr returns the bound address (useful with ":0" listeners in tests).
func (s *TCPServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop closes the listener and drains the worker pool.
func (s *TCPServer) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
	s.pool.Stop()
}

// handleConn processes newline-delimited requests until the peer closes.
func (s *TCPServer) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		requestID := s.requests.Add(1)

		var resp EvalResponse
		var req EvalRequest
		if err := json.Unmarshal(line, &req); err != nil {
			resp = EvalResponse{
				Success:   false,
				Error:     fmt.Sprintf("invalid JSON request: %v", err),
				RequestID: requestID,
			}
		} else {
			resp = processRequest(req, requestID)
		}
		s.stats.Record(uint64(resp.ExecutionTimeMS * 1000))

		raw, err := json.Marshal(resp)
		if err != nil {
			raw = []byte(fmt.Sprintf(`{"success":false,"error":"failed to serialize response","request_id":%d}`, requestID))
		}
		writer.Write(raw)
		writer.WriteByte('\n')
		if err := writer.Flush(); err != nil {
			return
		}

		if requestID%1000 == 0 {
			count, avg := s.stats.Snapshot()
			log.Infof("processed %d requests, avg execution time: %.2fms", count, avg)
		}
	}
}

func formatMS(ms float64) string {
	return fmt.Sprintf("%.2f ms", ms)
}
