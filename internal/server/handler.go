package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Constants for WebSocket timeouts
const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
)

// Handler manages WebSocket connections from controller nodes
type Handler struct {
	upgrader          websocket.Upgrader
	authToken         string
	store             EvaluationStore
	sink              EvaluationSink
	logger            zerolog.Logger
	activeControllers map[string]*ControllerConnection
	connToID          map[string]string // maps conn.RemoteAddr().String() to controller ID
	allowedOrigins    []string
	mutex             sync.RWMutex
}

// ControllerConnection represents an active controller connection
type ControllerConnection struct {
	ControllerID string `json:"controller_id"`
	Conn         *websocket.Conn
	BufferSize   int
	LastSeen     time.Time
	ConnectedAt  time.Time
}

// NewHandler creates a new WebSocket handler
func NewHandler(authToken string, store EvaluationStore, logger zerolog.Logger, allowedOrigins ...string) *Handler {
	h := &Handler{
		authToken:         authToken,
		store:             store,
		logger:            logger,
		activeControllers: make(map[string]*ControllerConnection),
		connToID:          make(map[string]string),
		allowedOrigins:    allowedOrigins,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// SetSink registers an asynchronous persistence sink. Evaluations are still
// served from the memory store, the sink only feeds the database.
func (h *Handler) SetSink(sink EvaluationSink) {
	h.sink = sink
}

// checkOrigin validates the incoming request's Origin against the configured allowlist
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// No Origin header means same-origin request
	if origin == "" {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}

	h.logger.Warn().Str("origin", origin).Msg("Rejected WebSocket connection: origin not in allowlist")
	return false
}

// ServeHTTP handles WebSocket connection requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected format: "Bearer <token>"
	token := r.Header.Get("Authorization")
	if !h.validateToken(token) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	h.handleConnection(conn)
}

// validateToken checks if the auth token is valid
func (h *Handler) validateToken(authHeader string) bool {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return false
	}
	return strings.TrimPrefix(authHeader, "Bearer ") == h.authToken
}

// handleConnection manages a single WebSocket connection
func (h *Handler) handleConnection(conn *websocket.Conn) {
	connKey := conn.RemoteAddr().String()
	controllerConn := &ControllerConnection{
		ControllerID: connKey, // replaced by the real ID on first heartbeat
		Conn:         conn,
		LastSeen:     time.Now(),
		ConnectedAt:  time.Now(),
	}

	h.mutex.Lock()
	h.activeControllers[connKey] = controllerConn
	h.mutex.Unlock()

	defer conn.Close()
	defer h.removeController(connKey)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg models.Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
		// Any message proves the peer is alive
		conn.SetReadDeadline(time.Now().Add(pongWait))
		h.handleMessage(conn, connKey, &msg)
	}
}

// handleMessage processes a single message from a controller
func (h *Handler) handleMessage(conn *websocket.Conn, connKey string, msg *models.Message) {
	h.logger.Debug().Str("type", string(msg.Type)).Msg("Received message")

	switch msg.Type {
	case models.MessageTypeEvaluation:
		h.handleEvaluation(msg)
	case models.MessageTypeBatch:
		h.handleBatch(msg)
	case models.MessageTypeHeartbeat:
		h.handleHeartbeat(connKey, msg)
	default:
		h.logger.Warn().Str("type", string(msg.Type)).Msg("Unknown message type")
	}

	h.sendAck(conn)
}

// handleEvaluation processes a single evaluation
func (h *Handler) handleEvaluation(msg *models.Message) {
	var eval models.Evaluation
	if err := msg.UnmarshalPayload(&eval); err != nil {
		h.logger.Error().Err(err).Msg("Failed to unmarshal evaluation")
		return
	}
	if !eval.IsValid() {
		h.logger.Warn().Str("controller_id", eval.Reading.SensorID).Msg("Evaluation ignored: invalid")
		return
	}
	h.accept(&eval)
	h.logger.Info().
		Str("controller_id", eval.Reading.SensorID).
		Float64("temp", eval.Reading.Temperature).
		Int("ac", eval.Decision.ACTemperature).
		Bool("fan", eval.Decision.Fan).
		Bool("ionizer", eval.Decision.Ionizer).
		Msg("Evaluation stored")
}

// handleBatch processes a batch of evaluations
func (h *Handler) handleBatch(msg *models.Message) {
	var batch models.BatchMessage
	if err := msg.UnmarshalPayload(&batch); err != nil {
		h.logger.Error().Err(err).Msg("Failed to unmarshal batch")
		return
	}
	stored := 0
	for i := range batch.Evaluations {
		eval := batch.Evaluations[i]
		if eval.IsValid() {
			h.accept(&eval)
			stored++
		}
	}
	h.logger.Info().Int("count", batch.Count).Int("stored", stored).Msg("Batch stored")
}

// accept routes one valid evaluation to the memory store and, when
// configured, the persistence sink.
func (h *Handler) accept(eval *models.Evaluation) {
	h.store.Add(eval)
	if h.sink != nil {
		if !h.sink.Enqueue(eval.Copy()) {
			h.logger.Warn().Msg("Persistence queue full, evaluation dropped from database")
		}
	}
}

// handleHeartbeat processes a heartbeat message
func (h *Handler) handleHeartbeat(connKey string, msg *models.Message) {
	var heartbeat models.HeartbeatMessage
	if err := msg.UnmarshalPayload(&heartbeat); err != nil {
		h.logger.Error().Err(err).Msg("Failed to unmarshal heartbeat")
		return
	}

	h.mutex.Lock()
	if heartbeat.ControllerID != "" {
		h.connToID[connKey] = heartbeat.ControllerID
		if controller, ok := h.activeControllers[connKey]; ok {
			controller.ControllerID = heartbeat.ControllerID
			controller.BufferSize = heartbeat.BufferSize
			controller.LastSeen = time.Now()
		}
	}
	h.mutex.Unlock()

	h.logger.Debug().
		Str("controller_id", heartbeat.ControllerID).
		Int64("uptime", heartbeat.Uptime).
		Int("buffer_size", heartbeat.BufferSize).
		Msg("Heartbeat received")
}

// sendAck sends an acknowledgment message
func (h *Handler) sendAck(conn *websocket.Conn) {
	ack := models.AckMessage{Status: "ok"}
	msg, err := models.NewMessage(models.MessageTypeAck, ack)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create ack message")
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send ack")
	}
}

// removeController removes a controller from the active map
func (h *Handler) removeController(connKey string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	controllerID := connKey
	if realID, exists := h.connToID[connKey]; exists {
		controllerID = realID
	}
	delete(h.activeControllers, connKey)
	delete(h.connToID, connKey)
	h.logger.Info().Str("controller_id", controllerID).Msg("Controller disconnected")
}

// GetActiveControllers returns a list of currently connected controllers
func (h *Handler) GetActiveControllers() []ControllerConnection {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	controllers := make([]ControllerConnection, 0, len(h.activeControllers))
	for _, controller := range h.activeControllers {
		controllers = append(controllers, *controller)
	}
	return controllers
}
