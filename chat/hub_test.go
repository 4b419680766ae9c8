package chat

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/databases/mocks"
	"github.com/extortion-watch/extortion-report-api/models"
)

const otherCaseHex = "608cafe595eb9dc05379b7f5"

var (
	citizenSession = models.Session{UserID: "user1", Name: "ada", UserType: models.UserTypeCitizen}
	officerSession = models.Session{UserID: "user2", Name: "grace", UserType: models.UserTypeLawEnforcement}
)

// receiveEvent waits for the next event queued to a client
func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("malformed event on client queue: %v", err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected event on client queue: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}

// hubCollections wires a mocked database where every case exists, the
// persisted history is empty and inserts succeed.
func hubCollections() (*mocks.DatabaseHelper, *mocks.CollectionHelper) {
	db := &mocks.DatabaseHelper{}
	casesConn := &mocks.CollectionHelper{}
	messagesConn := &mocks.CollectionHelper{}

	caseResult := &mocks.SingleResultHelper{}
	caseResult.On("Decode", mock.Anything).Return(nil)
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)

	seqResult := &mocks.SingleResultHelper{}
	seqResult.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	messagesConn.On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(seqResult)

	historyCursor := &mocks.CursorHelper{}
	historyCursor.On("Decode", mock.Anything).Return(nil)
	messagesConn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(historyCursor, nil)

	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "chatmessages").Return(messagesConn)
	return db, messagesConn
}

func newTestHub(db *mocks.DatabaseHelper) *Hub {
	return NewHub(NewLog(databases.NewChatMessageDatabase(db), databases.NewCaseDatabase(db)))
}

func TestHub_JoinReplaysHistoryToJoinerOnly(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	casesConn := &mocks.CollectionHelper{}
	messagesConn := &mocks.CollectionHelper{}

	historyCursor := &mocks.CursorHelper{}
	historyCursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.ChatMessage)
		*arg = []models.ChatMessage{
			{Details: models.ChatMessageDetails{CaseID: testCaseHex, SenderType: models.SenderTypeCitizen, Message: "they keep calling", Seq: 1}},
			{Details: models.ChatMessageDetails{CaseID: testCaseHex, SenderType: models.SenderTypeOfficer, Message: "noted, stay calm", Seq: 2}},
		}
	})
	messagesConn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(historyCursor, nil)
	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "chatmessages").Return(messagesConn)

	hub := newTestHub(db)
	citizen := NewClient(hub, nil, citizenSession)
	officer := NewClient(hub, nil, officerSession)

	officer.joinCase(testCaseHex)
	receiveEvent(t, officer) // officer's own history replay

	citizen.joinCase(testCaseHex)
	ev := receiveEvent(t, citizen)

	assert.Equal(t, EventChatHistory, ev.Event)
	assert.Equal(t, testCaseHex, ev.CaseID)
	assert.Len(t, ev.Messages, 2)
	assert.Equal(t, "they keep calling", ev.Messages[0].Message)
	assert.Equal(t, models.SenderTypeOfficer, ev.Messages[1].SenderType)

	// the replay went to the joiner, not the room
	assertNoEvent(t, officer)
}

func TestHub_SendBroadcastsToRoomMembers(t *testing.T) {
	db, messagesConn := hubCollections()
	insertResult := &mocks.InsertOneResultHelper{}
	messagesConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)

	hub := newTestHub(db)
	citizen := NewClient(hub, nil, citizenSession)
	officer := NewClient(hub, nil, officerSession)

	citizen.joinCase(testCaseHex)
	officer.joinCase(testCaseHex)
	receiveEvent(t, citizen)
	receiveEvent(t, officer)

	citizen.handleEvent(Event{Event: EventSendMessage, CaseID: testCaseHex, Message: "they demanded money again"})

	for _, c := range []*Client{citizen, officer} {
		ev := receiveEvent(t, c)
		assert.Equal(t, EventNewMessage, ev.Event)
		assert.Equal(t, testCaseHex, ev.CaseID)
		assert.Equal(t, models.SenderTypeCitizen, ev.SenderType)
		assert.Equal(t, "they demanded money again", ev.Message)
	}
}

func TestHub_RoomsAreIsolatedPerCase(t *testing.T) {
	db, messagesConn := hubCollections()
	insertResult := &mocks.InsertOneResultHelper{}
	messagesConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)

	hub := newTestHub(db)
	citizen := NewClient(hub, nil, citizenSession)
	bystander := NewClient(hub, nil, officerSession)

	citizen.joinCase(testCaseHex)
	bystander.joinCase(otherCaseHex)
	receiveEvent(t, citizen)
	receiveEvent(t, bystander)

	citizen.handleEvent(Event{Event: EventSendMessage, CaseID: testCaseHex, Message: "private to my case"})

	ev := receiveEvent(t, citizen)
	assert.Equal(t, EventNewMessage, ev.Event)
	assertNoEvent(t, bystander)
}

func TestHub_FailedPersistGoesToSenderOnly(t *testing.T) {
	db, messagesConn := hubCollections()
	messagesConn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	hub := newTestHub(db)
	citizen := NewClient(hub, nil, citizenSession)
	officer := NewClient(hub, nil, officerSession)

	citizen.joinCase(testCaseHex)
	officer.joinCase(testCaseHex)
	receiveEvent(t, citizen)
	receiveEvent(t, officer)

	citizen.handleEvent(Event{Event: EventSendMessage, CaseID: testCaseHex, Message: "lost to the void"})

	ev := receiveEvent(t, citizen)
	assert.Equal(t, EventSendFailed, ev.Event)
	assert.Equal(t, testCaseHex, ev.CaseID)

	// nothing was broadcast for the undelivered message
	assertNoEvent(t, officer)
}

func TestHub_FailedHistoryFetchDoesNotJoinRoom(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	casesConn := &mocks.CollectionHelper{}
	messagesConn := &mocks.CollectionHelper{}

	caseResult := &mocks.SingleResultHelper{}
	caseResult.On("Decode", mock.Anything).Return(nil)
	casesConn.On("FindOne", mock.Anything, mock.Anything).Return(caseResult)

	seqResult := &mocks.SingleResultHelper{}
	seqResult.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	messagesConn.On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(seqResult)

	// the first history fetch fails, later ones succeed
	messagesConn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error")).Once()
	historyCursor := &mocks.CursorHelper{}
	historyCursor.On("Decode", mock.Anything).Return(nil)
	messagesConn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(historyCursor, nil)

	insertResult := &mocks.InsertOneResultHelper{}
	messagesConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)

	db.On("Collection", "cases").Return(casesConn)
	db.On("Collection", "chatmessages").Return(messagesConn)

	hub := newTestHub(db)
	unlucky := NewClient(hub, nil, citizenSession)
	officer := NewClient(hub, nil, officerSession)

	unlucky.joinCase(testCaseHex)
	ev := receiveEvent(t, unlucky)
	assert.Equal(t, EventError, ev.Event)

	officer.joinCase(testCaseHex)
	receiveEvent(t, officer)

	// the failed joiner never became a room member
	officer.handleEvent(Event{Event: EventSendMessage, CaseID: testCaseHex, Message: "anyone listening"})
	receiveEvent(t, officer)
	assertNoEvent(t, unlucky)
}

func TestHub_SendRequiresJoinedRoom(t *testing.T) {
	db, _ := hubCollections()
	hub := newTestHub(db)
	citizen := NewClient(hub, nil, citizenSession)

	citizen.handleEvent(Event{Event: EventSendMessage, CaseID: testCaseHex, Message: "too early"})

	ev := receiveEvent(t, citizen)
	assert.Equal(t, EventError, ev.Event)
}

func TestHub_JoiningSecondCaseLeavesFirstRoom(t *testing.T) {
	db, messagesConn := hubCollections()
	insertResult := &mocks.InsertOneResultHelper{}
	messagesConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)

	hub := newTestHub(db)
	mover := NewClient(hub, nil, citizenSession)
	stayer := NewClient(hub, nil, officerSession)

	mover.joinCase(testCaseHex)
	stayer.joinCase(testCaseHex)
	receiveEvent(t, mover)
	receiveEvent(t, stayer)

	mover.joinCase(otherCaseHex)
	receiveEvent(t, mover)

	// the mover is no longer a member of the first room
	stayer.handleEvent(Event{Event: EventSendMessage, CaseID: testCaseHex, Message: "anyone here"})
	receiveEvent(t, stayer)
	assertNoEvent(t, mover)

	// and sending against the old case is rejected
	mover.handleEvent(Event{Event: EventSendMessage, CaseID: testCaseHex, Message: "stale room"})
	ev := receiveEvent(t, mover)
	assert.Equal(t, EventError, ev.Event)
}

func TestHub_RoomShutsDownWhenLastClientLeaves(t *testing.T) {
	db, _ := hubCollections()
	hub := newTestHub(db)
	citizen := NewClient(hub, nil, citizenSession)

	citizen.joinCase(testCaseHex)
	receiveEvent(t, citizen)

	hub.mu.Lock()
	_, live := hub.rooms[testCaseHex]
	hub.mu.Unlock()
	assert.True(t, live)

	citizen.leaveRoom()

	hub.mu.Lock()
	_, live = hub.rooms[testCaseHex]
	hub.mu.Unlock()
	assert.False(t, live)
}
