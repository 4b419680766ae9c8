package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/models"
)

// ErrUnknownCase is returned when a message targets a case that does
// not exist in the case repository.
var ErrUnknownCase = errors.New("unknown case")

// Log is the append-only per-case chat log. Sequence numbers are
// monotonic per case; callers must serialize appends for one case
// (the room loop does).
type Log struct {
	Messages databases.ChatMessageDatabase
	Cases    databases.CaseDatabase

	mu   sync.Mutex
	seqs map[string]int64
}

// NewLog creates a chat log over the given collections
func NewLog(messages databases.ChatMessageDatabase, cases databases.CaseDatabase) *Log {
	return &Log{
		Messages: messages,
		Cases:    cases,
		seqs:     make(map[string]int64),
	}
}

// Append verifies the case exists, assigns the next sequence number
// and durably inserts the message. The sequence counter only advances
// on a successful insert.
func (l *Log) Append(ctx context.Context, caseID, senderType, message string) (*models.ChatMessage, error) {
	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCase, err)
	}
	if _, err := l.Cases.FindOne(ctx, bson.M{"_id": cID}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUnknownCase
		}
		return nil, err
	}

	seq, err := l.nextSeq(ctx, caseID)
	if err != nil {
		return nil, err
	}

	msg := models.ChatMessage{
		ID: primitive.NewObjectID(),
		Details: models.ChatMessageDetails{
			CaseID:     caseID,
			SenderType: senderType,
			Message:    message,
			Seq:        seq,
			CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
		},
	}
	if _, err := l.Messages.InsertOne(ctx, msg); err != nil {
		return nil, err
	}
	l.commitSeq(caseID, seq)
	return &msg, nil
}

// History returns the full message sequence for a case in append order
func (l *Log) History(ctx context.Context, caseID string) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.M{"chatMessage.seq": 1})
	messages, err := l.Messages.Find(ctx, bson.M{"chatMessage.caseID": caseID}, opts)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Forget drops the in-memory sequence counter for a case, used after
// the case and its messages have been purged.
func (l *Log) Forget(caseID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.seqs, caseID)
}

// nextSeq returns the sequence number the next message should carry.
// The counter is seeded from the highest persisted sequence the first
// time a case is seen after startup.
func (l *Log) nextSeq(ctx context.Context, caseID string) (int64, error) {
	l.mu.Lock()
	last, ok := l.seqs[caseID]
	l.mu.Unlock()
	if ok {
		return last + 1, nil
	}

	opts := options.FindOne().SetSort(bson.M{"chatMessage.seq": -1})
	latest, err := l.Messages.FindOne(ctx, bson.M{"chatMessage.caseID": caseID}, opts)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 1, nil
		}
		return 0, err
	}
	return latest.Details.Seq + 1, nil
}

func (l *Log) commitSeq(caseID string, seq int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seqs[caseID] = seq
}
