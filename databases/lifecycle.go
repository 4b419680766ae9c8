package databases

// go generate: mockery --name CaseLifecycleDatabase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/extortion-watch/extortion-report-api/models"
)

// Sentinel errors for lifecycle operations, mapped to HTTP status
// codes by the handlers.
var (
	// ErrCaseNotFound means the referenced case does not exist.
	ErrCaseNotFound = errors.New("case not found")
	// ErrNotCaseOwner means the case exists but belongs to another user.
	ErrNotCaseOwner = errors.New("case is not owned by requester")
)

// CaseLifecycleDatabase exposes the multi-statement case operations
// that must execute atomically.
type CaseLifecycleDatabase interface {
	DeleteCase(ctx context.Context, caseID primitive.ObjectID, requesterUserID string) error
}

type caseLifecycleDatabase struct {
	db DatabaseHelper
}

// NewCaseLifecycleDatabase initializes a new instance of case lifecycle database with the provided db connection
func NewCaseLifecycleDatabase(db DatabaseHelper) CaseLifecycleDatabase {
	return &caseLifecycleDatabase{
		db: db,
	}
}

// DeleteCase removes a case, its status row and its chat messages in
// one transaction. The ownership check runs inside the transaction so
// a concurrent delete cannot slip between check and mutation. Any
// failure aborts the whole transaction and leaves the case, its
// status and its messages exactly as they were.
func (c *caseLifecycleDatabase) DeleteCase(ctx context.Context, caseID primitive.ObjectID, requesterUserID string) error {
	session, err := c.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		crimeCase := &models.Case{}
		err := c.db.Collection(caseCollectionName).FindOne(sc, bson.M{"_id": caseID}).Decode(&crimeCase)
		if err != nil {
			return nil, ErrCaseNotFound
		}
		if crimeCase.Details.UserID != requesterUserID {
			return nil, ErrNotCaseOwner
		}

		if err := c.db.Collection(caseStatusCollectionName).DeleteOne(sc, bson.M{"caseStatus.caseID": caseID.Hex()}); err != nil {
			return nil, err
		}
		if err := c.db.Collection(chatMessageCollectionName).DeleteMany(sc, bson.M{"chatMessage.caseID": caseID.Hex()}); err != nil {
			return nil, err
		}
		if err := c.db.Collection(caseCollectionName).DeleteOne(sc, bson.M{"_id": caseID}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
