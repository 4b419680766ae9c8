package databases

// go generate: mockery --name CaseStatusDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/extortion-watch/extortion-report-api/models"
)

const caseStatusCollectionName = "casestatuses"

// CaseStatusDatabase contains the methods to use with the case status database
type CaseStatusDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseStatus, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseStatus, error)
	Replace(ctx context.Context, caseID string, status string) error
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Aggregate(ctx context.Context, pipeline interface{}) (CursorHelper, error)
}

type caseStatusDatabase struct {
	db DatabaseHelper
}

// NewCaseStatusDatabase initializes a new instance of case status database with the provided db connection
func NewCaseStatusDatabase(db DatabaseHelper) CaseStatusDatabase {
	return &caseStatusDatabase{
		db: db,
	}
}

func (c *caseStatusDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseStatus, error) {
	status := &models.CaseStatus{}
	err := c.db.Collection(caseStatusCollectionName).FindOne(ctx, filter, opts...).Decode(&status)
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (c *caseStatusDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseStatus, error) {
	var statuses []models.CaseStatus
	cr, err := c.db.Collection(caseStatusCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&statuses)
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

// Replace upserts the single status document for a case. The previous
// document, if any, is fully replaced, never merged, keeping the
// one-status-per-case invariant. The replacement carries no _id so an
// existing document keeps its identity.
func (c *caseStatusDatabase) Replace(ctx context.Context, caseID string, status string) error {
	doc := bson.M{"caseStatus": models.CaseStatusDetails{
		CaseID:    caseID,
		Status:    status,
		UpdatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}}
	_, err := c.db.Collection(caseStatusCollectionName).ReplaceOne(ctx,
		bson.M{"caseStatus.caseID": caseID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (c *caseStatusDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(caseStatusCollectionName).CountDocuments(ctx, filter, opts...)
}

func (c *caseStatusDatabase) Aggregate(ctx context.Context, pipeline interface{}) (CursorHelper, error) {
	return c.db.Collection(caseStatusCollectionName).Aggregate(ctx, pipeline)
}
