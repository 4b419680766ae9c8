package databases

// go generate: mockery --name EmergencyAlertDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/extortion-watch/extortion-report-api/models"
)

const emergencyAlertCollectionName = "emergencyalerts"

// EmergencyAlertDatabase contains the methods to use with the emergency alert database
type EmergencyAlertDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.EmergencyAlert, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
}

type emergencyAlertDatabase struct {
	db DatabaseHelper
}

// NewEmergencyAlertDatabase initializes a new instance of emergency alert database with the provided db connection
func NewEmergencyAlertDatabase(db DatabaseHelper) EmergencyAlertDatabase {
	return &emergencyAlertDatabase{
		db: db,
	}
}

func (a *emergencyAlertDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.EmergencyAlert, error) {
	var alerts []models.EmergencyAlert
	cr, err := a.db.Collection(emergencyAlertCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&alerts)
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (a *emergencyAlertDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := a.db.Collection(emergencyAlertCollectionName).InsertOne(ctx, document, opts...)
	return res, err
}

func (a *emergencyAlertDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return a.db.Collection(emergencyAlertCollectionName).DeleteMany(ctx, filter, opts...)
}
