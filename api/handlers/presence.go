package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-hearing-api/api"
	"github.com/linesmerrill/court-hearing-api/config"
	"github.com/linesmerrill/court-hearing-api/databases"
	"github.com/linesmerrill/court-hearing-api/models"
)

// reactionTTL is how long a published reaction stays live without a refresh
const reactionTTL = 3 * time.Second

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust CORS as needed, e.g., check r.Header.Get("Origin")
	},
}

type reactionEntry struct {
	tag   string
	timer *time.Timer
}

// SessionHub fans out session events to connected clients. Transcript entries
// are pushed in sequence order per session; presence joins/leaves and
// reactions are best-effort with no ordering or durability guarantee. A
// dropped reaction update is an acceptable lost update.
type SessionHub struct {
	mutex     sync.Mutex
	rooms     map[string]map[*websocket.Conn]bool
	reactions map[string]map[string]*reactionEntry
}

// NewSessionHub creates an empty hub
func NewSessionHub() *SessionHub {
	return &SessionHub{
		rooms:     make(map[string]map[*websocket.Conn]bool),
		reactions: make(map[string]map[string]*reactionEntry),
	}
}

// HandleSessionWebSocket upgrades the connection and subscribes it to the
// session's event stream
func (h *SessionHub) HandleSessionWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	h.mutex.Lock()
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[sessionID][conn] = true
	h.mutex.Unlock()
	zap.S().Debugw("client subscribed to session events", "sessionID", sessionID)

	conn.SetCloseHandler(func(code int, text string) error {
		h.drop(sessionID, conn)
		return nil
	})

	// Keep connection alive; the stream is server-push only
	for {
		if _, _, err := conn.NextReader(); err != nil {
			h.drop(sessionID, conn)
			conn.Close()
			break
		}
	}
}

func (h *SessionHub) drop(sessionID string, conn *websocket.Conn) {
	h.mutex.Lock()
	if room, ok := h.rooms[sessionID]; ok {
		delete(room, conn)
	}
	h.mutex.Unlock()
}

// broadcast sends an event to every subscriber of the session. Failed writes
// drop the client; there is no retry.
func (h *SessionHub) broadcast(sessionID, event string, data interface{}) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn := range h.rooms[sessionID] {
		err := conn.WriteJSON(map[string]interface{}{
			"event": event,
			"data":  data,
		})
		if err != nil {
			zap.S().Debugw("dropping session subscriber", "sessionID", sessionID, "error", err)
			delete(h.rooms[sessionID], conn)
			conn.Close()
		}
	}
}

// BroadcastTranscript pushes a committed transcript entry to subscribers
func (h *SessionHub) BroadcastTranscript(sessionID string, entry models.TranscriptEntry) {
	h.broadcast(sessionID, "transcript_entry", entry)
}

// BroadcastPresence announces a join or leave. Best-effort only: the durable
// record is the transcript's action entry.
func (h *SessionHub) BroadcastPresence(sessionID string, action string, participant models.ParticipantDetails) {
	h.broadcast(sessionID, "presence", map[string]interface{}{
		"action":      action,
		"participant": participant,
	})
}

// PublishReaction overwrites the participant's live reaction and broadcasts
// it. An empty tag clears the reaction immediately; otherwise it expires after
// reactionTTL, which broadcasts the clear.
func (h *SessionHub) PublishReaction(sessionID, participantID, tag string) {
	h.mutex.Lock()
	if h.reactions[sessionID] == nil {
		h.reactions[sessionID] = make(map[string]*reactionEntry)
	}
	if prev, ok := h.reactions[sessionID][participantID]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	if tag == "" {
		delete(h.reactions[sessionID], participantID)
	} else {
		entry := &reactionEntry{tag: tag}
		entry.timer = time.AfterFunc(reactionTTL, func() {
			h.expireReaction(sessionID, participantID)
		})
		h.reactions[sessionID][participantID] = entry
	}
	h.mutex.Unlock()

	h.broadcast(sessionID, "reaction", models.Reaction{
		ParticipantID: participantID,
		Tag:           tag,
		At:            time.Now(),
	})
}

func (h *SessionHub) expireReaction(sessionID, participantID string) {
	h.mutex.Lock()
	if room, ok := h.reactions[sessionID]; ok {
		delete(room, participantID)
	}
	h.mutex.Unlock()

	h.broadcast(sessionID, "reaction", models.Reaction{
		ParticipantID: participantID,
		At:            time.Now(),
	})
}

// LiveReactions returns a snapshot of the session's unexpired reactions
func (h *SessionHub) LiveReactions(sessionID string) map[string]string {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	out := make(map[string]string)
	for pid, entry := range h.reactions[sessionID] {
		out[pid] = entry.tag
	}
	return out
}

// Presence exported for testing purposes
type Presence struct {
	SDB databases.HearingSessionDatabase
	PDB databases.ParticipantDatabase
	Hub *SessionHub
}

// PostReactionHandler publishes a participant's momentary reaction
func (p Presence) PostReactionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	var body struct {
		ParticipantID string `json:"participantId"`
		Reaction      string `json:"reaction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.Reaction != "" && !models.ValidReaction(body.Reaction) {
		config.ErrorStatus("unknown reaction", http.StatusBadRequest, w, errUnknownReaction)
		return
	}

	bID, err := primitive.ObjectIDFromHex(body.ParticipantID)
	if err != nil {
		config.ErrorStatus("invalid participant ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	session, err := findSessionByHexID(ctx, p.SDB, sessionID)
	if err != nil {
		config.ErrorStatus("failed to find hearing session", http.StatusNotFound, w, err)
		return
	}
	if session.Details.Status != models.SessionInProgress {
		config.ErrorCode(models.CodeSessionNotActive, "reactions are only accepted while the hearing is in progress", http.StatusConflict, w,
			errSessionStatus(session.Details.Status))
		return
	}

	if _, err := p.PDB.FindOne(ctx, bson.M{
		"_id":                   bID,
		"participant.sessionID": sessionID,
		"participant.active":    true,
	}); err != nil {
		config.ErrorStatus("reactions are limited to active participants", http.StatusNotFound, w, err)
		return
	}

	p.Hub.PublishReaction(sessionID, body.ParticipantID, body.Reaction)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Reaction published",
	})
}

// GetReactionsHandler returns the live reaction snapshot for a session
func (p Presence) GetReactionsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"reactions": p.Hub.LiveReactions(sessionID),
	})
}
