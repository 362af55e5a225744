package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// MockWebSocketServer creates a test WebSocket server
type MockWebSocketServer struct {
	server          *httptest.Server
	upgrader        websocket.Upgrader
	mutex           sync.Mutex
	connections     []*websocket.Conn
	receivedMsgs    []models.Message
	shouldAccept    bool
	respondWithAck  bool
	closeAfterN     int // close each connection after N messages on it
}

func NewMockWebSocketServer() *MockWebSocketServer {
	mock := &MockWebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		shouldAccept:   true,
		respondWithAck: true,
		receivedMsgs:   []models.Message{},
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handleWebSocket))
	return mock
}

func (m *MockWebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !m.shouldAccept {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	m.mutex.Lock()
	m.connections = append(m.connections, conn)
	m.mutex.Unlock()

	// The close-after-N counter is per connection, so a reconnected client
	// starts from zero rather than being cut off at its first message
	msgsOnConn := 0
	for {
		var msg models.Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			break
		}

		m.mutex.Lock()
		m.receivedMsgs = append(m.receivedMsgs, msg)
		m.mutex.Unlock()
		msgsOnConn++

		if m.respondWithAck {
			ack := models.AckMessage{Status: "ok"}
			ackMsg, _ := models.NewMessage(models.MessageTypeAck, ack)
			conn.WriteJSON(ackMsg)
		}

		if m.closeAfterN > 0 && msgsOnConn >= m.closeAfterN {
			return
		}
	}
}

// ConnectionCount returns how many connections the server has accepted
func (m *MockWebSocketServer) ConnectionCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.connections)
}

func (m *MockWebSocketServer) URL() string {
	return "ws" + strings.TrimPrefix(m.server.URL, "http")
}

func (m *MockWebSocketServer) Close() {
	m.mutex.Lock()
	for _, conn := range m.connections {
		conn.Close()
	}
	m.mutex.Unlock()
	m.server.Close()
}

func (m *MockWebSocketServer) ReceivedMessages() []models.Message {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	msgs := make([]models.Message, len(m.receivedMsgs))
	copy(msgs, m.receivedMsgs)
	return msgs
}

// Helper to create test connection
func createTestConnection(serverURL string) *Connection {
	config := ConnectionConfig{
		URL:                  serverURL,
		AuthToken:            "test-token-123",
		ReconnectInterval:    100 * time.Millisecond,
		MaxReconnectInterval: 1 * time.Second,
		PingInterval:         200 * time.Millisecond,
		PongTimeout:          1 * time.Second,
	}

	info := models.NewControllerInfo("test-controller", "Test Lab", "sim", "v1.0.0")
	logger := zerolog.Nop()

	return NewConnection(config, info, logger)
}

func TestNewConnection(t *testing.T) {
	server := NewMockWebSocketServer()
	defer server.Close()

	conn := createTestConnection(server.URL())

	if conn == nil {
		t.Fatal("NewConnection returned nil")
	}

	if conn.State() != StateDisconnected {
		t.Errorf("Initial state = %v, want %v", conn.State(), StateDisconnected)
	}

	if conn.IsConnected() {
		t.Error("IsConnected should be false initially")
	}
}

func TestConnection_Connect_Success(t *testing.T) {
	server := NewMockWebSocketServer()
	defer server.Close()

	conn := createTestConnection(server.URL())
	ctx := context.Background()

	err := conn.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if !conn.IsConnected() {
		t.Error("Should be connected after successful Connect()")
	}

	conn.Close()
}

func TestConnection_Connect_Failure_InvalidURL(t *testing.T) {
	conn := createTestConnection("ws://invalid-url-that-does-not-exist:9999/ws")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := conn.Connect(ctx)
	if err == nil {
		t.Error("Connect should fail with invalid URL")
	}

	if conn.IsConnected() {
		t.Error("Should not be connected after failed Connect()")
	}
}

func TestConnection_Connect_Failure_ServerRefuses(t *testing.T) {
	server := NewMockWebSocketServer()
	server.shouldAccept = false
	defer server.Close()

	conn := createTestConnection(server.URL())

	if err := conn.Connect(context.Background()); err == nil {
		t.Error("Connect should fail when server refuses")
	}
}

func TestConnection_Send_SingleEvaluation(t *testing.T) {
	server := NewMockWebSocketServer()
	defer server.Close()

	conn := createTestConnection(server.URL())
	ctx := context.Background()

	if err := conn.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	if err := conn.Send(makeEval(22.5)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	msgs := server.ReceivedMessages()
	if len(msgs) < 2 { // registration + evaluation
		t.Fatalf("Server received %d messages, want at least 2", len(msgs))
	}

	var foundEval bool
	for _, msg := range msgs {
		if msg.Type == models.MessageTypeEvaluation {
			foundEval = true
			break
		}
	}

	if !foundEval {
		t.Error("Server did not receive evaluation message")
	}
}

func TestConnection_Send_WhenDisconnected(t *testing.T) {
	server := NewMockWebSocketServer()
	defer server.Close()

	conn := createTestConnection(server.URL())

	if err := conn.Send(makeEval(22.5)); err == nil {
		t.Error("Send should fail when not connected")
	}
}

func TestConnection_SendBatch(t *testing.T) {
	server := NewMockWebSocketServer()
	defer server.Close()

	conn := createTestConnection(server.URL())
	ctx := context.Background()

	if err := conn.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	evals := []*models.Evaluation{
		makeEval(22.5),
		makeEval(23.0),
		makeEval(23.5),
	}

	if err := conn.SendBatch(evals); err != nil {
		t.Fatalf("SendBatch failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	msgs := server.ReceivedMessages()
	var foundBatch bool
	for _, msg := range msgs {
		if msg.Type == models.MessageTypeBatch {
			foundBatch = true

			var batch models.BatchMessage
			if err := msg.UnmarshalPayload(&batch); err != nil {
				t.Fatalf("Failed to unmarshal batch: %v", err)
			}

			if batch.Count != 3 {
				t.Errorf("Batch count = %d, want 3", batch.Count)
			}
			if len(batch.Evaluations) != 3 {
				t.Errorf("Batch has %d evaluations, want 3", len(batch.Evaluations))
			}
			break
		}
	}

	if !foundBatch {
		t.Error("Server did not receive batch message")
	}
}

func TestConnection_SendBatch_EmptyBatch(t *testing.T) {
	server := NewMockWebSocketServer()
	defer server.Close()

	conn := createTestConnection(server.URL())

	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	if err := conn.SendBatch([]*models.Evaluation{}); err != nil {
		t.Errorf("SendBatch with empty slice should not error: %v", err)
	}
}

func TestConnection_Reconnect_AfterDisconnect(t *testing.T) {
	server := NewMockWebSocketServer()
	server.closeAfterN = 2 // registration + one more
	defer server.Close()

	conn := createTestConnection(server.URL())
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	go conn.Run(ctx)

	time.Sleep(200 * time.Millisecond)

	if !conn.IsConnected() {
		t.Fatal("Should be connected initially")
	}

	// This message triggers the server-side close
	conn.Send(makeEval(22.5))

	// Wait for the server to see a second connection and the client to
	// settle back into the connected state
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if server.ConnectionCount() >= 2 && conn.IsConnected() {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if server.ConnectionCount() < 2 {
		t.Fatal("Server never saw a second connection")
	}
	if !conn.IsConnected() {
		t.Error("Should have reconnected after disconnect")
	}

	conn.Close()
}

func TestConnection_Heartbeat(t *testing.T) {
	server := NewMockWebSocketServer()
	defer server.Close()

	conn := createTestConnection(server.URL())
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := conn.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	go conn.runMessageLoops(ctx)

	time.Sleep(600 * time.Millisecond)

	conn.Close()

	msgs := server.ReceivedMessages()
	heartbeatCount := 0
	for _, msg := range msgs {
		if msg.Type == models.MessageTypeHeartbeat {
			heartbeatCount++
		}
	}

	// 200ms ping interval over 600ms gives at least 2 heartbeats
	if heartbeatCount < 2 {
		t.Errorf("Received %d heartbeats, expected at least 2", heartbeatCount)
	}
}

func TestConnection_Registration(t *testing.T) {
	server := NewMockWebSocketServer()
	defer server.Close()

	conn := createTestConnection(server.URL())
	conn.SetBufferSizeFunc(func() int { return 7 })

	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	msgs := server.ReceivedMessages()
	if len(msgs) < 1 {
		t.Fatal("No messages received, expected registration")
	}

	if msgs[0].Type != models.MessageTypeHeartbeat {
		t.Errorf("First message type = %v, want %v", msgs[0].Type, models.MessageTypeHeartbeat)
	}

	var heartbeat models.HeartbeatMessage
	if err := msgs[0].UnmarshalPayload(&heartbeat); err != nil {
		t.Fatalf("Failed to unmarshal heartbeat: %v", err)
	}

	if heartbeat.ControllerID != "test-controller" {
		t.Errorf("Heartbeat ControllerID = %v, want test-controller", heartbeat.ControllerID)
	}
	if heartbeat.BufferSize != 7 {
		t.Errorf("Heartbeat BufferSize = %v, want 7", heartbeat.BufferSize)
	}
}

func TestConnection_StateTransitions(t *testing.T) {
	server := NewMockWebSocketServer()
	defer server.Close()

	conn := createTestConnection(server.URL())

	if conn.State() != StateDisconnected {
		t.Errorf("Initial state = %v, want Disconnected", conn.State())
	}

	conn.Connect(context.Background())

	if conn.State() != StateConnected {
		t.Errorf("After connect state = %v, want Connected", conn.State())
	}

	conn.Close()

	if conn.State() != StateDisconnected {
		t.Errorf("After close state = %v, want Disconnected", conn.State())
	}
}

func TestConnection_ExponentialBackoff(t *testing.T) {
	config := ConnectionConfig{
		URL:                  "ws://localhost:9999/invalid",
		AuthToken:            "test",
		ReconnectInterval:    50 * time.Millisecond,
		MaxReconnectInterval: 200 * time.Millisecond,
		PingInterval:         100 * time.Millisecond,
		PongTimeout:          500 * time.Millisecond,
	}

	info := models.NewControllerInfo("test", "test", "sim", "v1.0.0")
	conn := NewConnection(config, info, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	go conn.Run(ctx)

	time.Sleep(600 * time.Millisecond)

	if conn.IsConnected() {
		t.Error("Should not be connected to invalid server")
	}
}

func TestConnection_CloseGracefully(t *testing.T) {
	server := NewMockWebSocketServer()
	defer server.Close()

	conn := createTestConnection(server.URL())

	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if conn.IsConnected() {
		t.Error("Should not be connected after Close()")
	}

	if err := conn.Send(makeEval(22.5)); err == nil {
		t.Error("Send should fail after Close()")
	}
}

func TestConnectionState_String(t *testing.T) {
	tests := []struct {
		state    ConnectionState
		expected string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
