package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/databases/mocks"
)

func TestScheduler_PurgeStaleAlerts(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	var gotFilter interface{}
	conn.On("DeleteMany", mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) {
			gotFilter = args.Get(1)
		})
	db.On("Collection", "emergencyalerts").Return(conn)

	s := New(databases.NewEmergencyAlertDatabase(db), 30*24*time.Hour)
	s.purgeStaleAlerts()

	filter, ok := gotFilter.(bson.M)
	assert.True(t, ok)
	window, ok := filter["alert.createdAt"].(bson.M)
	assert.True(t, ok)

	cutoff, ok := window["$lt"].(primitive.DateTime)
	assert.True(t, ok)

	// the cutoff sits a retention window in the past
	expected := time.Now().Add(-30 * 24 * time.Hour)
	assert.WithinDuration(t, expected, cutoff.Time(), 5*time.Second)
}

func TestScheduler_PurgeStaleAlertsSurvivesError(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}

	conn.On("DeleteMany", mock.Anything, mock.Anything).Return(errors.New("mocked-error"))
	db.On("Collection", "emergencyalerts").Return(conn)

	s := New(databases.NewEmergencyAlertDatabase(db), 30*24*time.Hour)

	// the job logs and returns, the scheduler keeps running
	s.purgeStaleAlerts()
	conn.AssertCalled(t, "DeleteMany", mock.Anything, mock.Anything)
}
