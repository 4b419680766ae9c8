package databases

// go generate: mockery --name SuccessStoryDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/extortion-watch/extortion-report-api/models"
)

const successStoryCollectionName = "successstories"

// SuccessStoryDatabase contains the methods to use with the success story database
type SuccessStoryDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.SuccessStory, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type successStoryDatabase struct {
	db DatabaseHelper
}

// NewSuccessStoryDatabase initializes a new instance of success story database with the provided db connection
func NewSuccessStoryDatabase(db DatabaseHelper) SuccessStoryDatabase {
	return &successStoryDatabase{
		db: db,
	}
}

func (s *successStoryDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.SuccessStory, error) {
	var stories []models.SuccessStory
	cr, err := s.db.Collection(successStoryCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&stories)
	if err != nil {
		return nil, err
	}
	return stories, nil
}

func (s *successStoryDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := s.db.Collection(successStoryCollectionName).InsertOne(ctx, document, opts...)
	return res, err
}
