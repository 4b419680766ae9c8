package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/extortion-watch/extortion-report-api/api"
	"github.com/extortion-watch/extortion-report-api/models"
)

// Event names on the websocket channel
const (
	EventJoinCase    = "joinCase"
	EventLeaveCase   = "leaveCase"
	EventSendMessage = "sendMessage"
	EventChatHistory = "chatHistory"
	EventNewMessage  = "newMessage"
	EventSendFailed  = "sendFailed"
	EventError       = "error"
)

// Event is the JSON envelope exchanged over the websocket, both
// directions
type Event struct {
	Event      string         `json:"event"`
	CaseID     string         `json:"caseId,omitempty"`
	SenderType string         `json:"senderType,omitempty"`
	Message    string         `json:"message,omitempty"`
	Messages   []HistoryEntry `json:"messages,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// HistoryEntry is one message of a chatHistory payload
type HistoryEntry struct {
	SenderType string `json:"senderType"`
	Message    string `json:"message"`
}

// Hub is the room registry. Each live case room runs as its own
// goroutine draining an ops channel, so history reads, appends,
// membership changes and broadcasts for one case are totally ordered
// without holding any lock across database calls. Rooms for
// different cases do not block each other.
type Hub struct {
	log *Log

	mu    sync.Mutex
	rooms map[string]*room
}

// NewHub creates a hub over the given chat log
func NewHub(log *Log) *Hub {
	return &Hub{
		log:   log,
		rooms: make(map[string]*room),
	}
}

// Forget drops the cached sequence counter for a case after the case
// and its messages are deleted
func (h *Hub) Forget(caseID string) {
	h.log.Forget(caseID)
}

type room struct {
	hub     *Hub
	caseID  string
	ops     chan func()
	members map[*Client]bool
	refs    int
}

func (r *room) run() {
	for op := range r.ops {
		op()
	}
}

// acquireRoom returns the live room for a case, spinning one up on
// first use. The refcount keeps the ops channel open while any client
// holds the room.
func (h *Hub) acquireRoom(caseID string) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.rooms[caseID]
	if r == nil {
		r = &room{
			hub:     h,
			caseID:  caseID,
			ops:     make(chan func(), 64),
			members: make(map[*Client]bool),
		}
		h.rooms[caseID] = r
		go r.run()
	}
	r.refs++
	return r
}

func (h *Hub) releaseRoom(r *room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r.refs--
	if r.refs == 0 {
		delete(h.rooms, r.caseID)
		close(r.ops)
	}
}

// join adds the client to the room and replays the full history to
// that client only. Membership and the history snapshot happen in the
// same room op, so no message appended afterwards can be missed and
// none replayed twice. A client whose history fetch fails is not made
// a member and hears no broadcasts.
func (r *room) join(c *Client) {
	r.ops <- func() {
		ctx, cancel := api.WithQueryTimeout(context.Background())
		defer cancel()

		history, err := r.hub.log.History(ctx, r.caseID)
		if err != nil {
			zap.S().Errorw("failed to fetch chat history",
				"caseID", r.caseID,
				"error", err)
			c.sendEvent(Event{Event: EventError, CaseID: r.caseID, Error: "failed to load chat history"})
			return
		}
		r.members[c] = true

		entries := make([]HistoryEntry, 0, len(history))
		for _, m := range history {
			entries = append(entries, HistoryEntry{SenderType: m.Details.SenderType, Message: m.Details.Message})
		}
		c.sendEvent(Event{Event: EventChatHistory, CaseID: r.caseID, Messages: entries})
	}
}

func (r *room) leave(c *Client) {
	r.ops <- func() {
		delete(r.members, c)
	}
}

// send persists the message first; only a durable append is broadcast
// to the room. On failure the sender gets a sendFailed event and
// nobody else hears anything.
func (r *room) send(c *Client, sess models.Session, text string) {
	r.ops <- func() {
		ctx, cancel := api.WithQueryTimeout(context.Background())
		defer cancel()

		msg, err := r.hub.log.Append(ctx, r.caseID, sess.SenderType(), text)
		if err != nil {
			zap.S().Errorw("failed to persist chat message",
				"caseID", r.caseID,
				"userID", sess.UserID,
				"error", err)
			c.sendEvent(Event{Event: EventSendFailed, CaseID: r.caseID, Error: "message was not delivered"})
			return
		}

		out := Event{
			Event:      EventNewMessage,
			CaseID:     r.caseID,
			SenderType: msg.Details.SenderType,
			Message:    msg.Details.Message,
		}
		for member := range r.members {
			member.sendEvent(out)
		}
	}
}
