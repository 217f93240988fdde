package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/court-hearing-api/databases/mocks"
	"github.com/linesmerrill/court-hearing-api/models"
)

func endedSession(status string) models.HearingSession {
	return models.HearingSession{
		ID: primitive.NewObjectID(),
		Details: models.HearingSessionDetails{
			Title:  "State v. Doe - first hearing",
			Status: status,
		},
	}
}

func TestScheduler_SweepMarksPendingUnresolvable(t *testing.T) {
	session := endedSession(models.SessionAdjourned)

	lockDB := &mocks.SchedulerLockDatabase{}
	lockDB.On("TryAcquireLock", mock.Anything, "adjournment_sweep_job", mock.Anything, mock.Anything).Return(true, nil)
	lockDB.On("ReleaseLock", mock.Anything, "adjournment_sweep_job", mock.Anything).Return(nil)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("Find", mock.Anything, mock.Anything).Return([]models.HearingSession{session}, nil)
	sdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	wdb := &mocks.WorkflowRequestDatabase{}
	wdb.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 2}, nil)

	tdb := &mocks.TranscriptDatabase{}
	tdb.On("NextSeq", mock.Anything, session.ID.Hex()).Return(int64(12), nil)
	tdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	s := NewScheduler(sdb, wdb, tdb, nil, nil, lockDB)
	s.sweepEndedSessions()

	// All pending requests flip to unresolvable in one conditional write
	filter := wdb.Calls[0].Arguments.Get(1).(bson.M)
	assert.Equal(t, models.RequestPending, filter["workflowRequest.status"])
	set := wdb.Calls[0].Arguments.Get(2).(bson.M)["$set"].(bson.M)
	assert.Equal(t, models.RequestUnresolvable, set["workflowRequest.status"])

	// The sweep is noted on the transcript through the shared counter
	entry := tdb.Calls[1].Arguments.Get(1).(models.TranscriptEntry)
	assert.Equal(t, int64(12), entry.Seq)
	assert.Equal(t, models.EntryAction, entry.Kind)
	assert.Contains(t, entry.Message, "2 pending request(s)")

	// The session is flagged so the next run skips it
	flagged := sdb.Calls[1].Arguments.Get(2).(bson.M)["$set"].(bson.M)
	assert.Equal(t, true, flagged["hearingSession.pendingSwept"])
}

func TestScheduler_SweepIncludesCompletedSessions(t *testing.T) {
	session := endedSession(models.SessionCompleted)

	lockDB := &mocks.SchedulerLockDatabase{}
	lockDB.On("TryAcquireLock", mock.Anything, "adjournment_sweep_job", mock.Anything, mock.Anything).Return(true, nil)
	lockDB.On("ReleaseLock", mock.Anything, "adjournment_sweep_job", mock.Anything).Return(nil)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("Find", mock.Anything, mock.Anything).Return([]models.HearingSession{session}, nil)
	sdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	wdb := &mocks.WorkflowRequestDatabase{}
	wdb.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	tdb := &mocks.TranscriptDatabase{}
	tdb.On("NextSeq", mock.Anything, session.ID.Hex()).Return(int64(4), nil)
	tdb.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	s := NewScheduler(sdb, wdb, tdb, nil, nil, lockDB)
	s.sweepEndedSessions()

	// Both terminal statuses are eligible: a completed hearing can still hold
	// pending requests since completion only demands a ruling on the record
	filter := sdb.Calls[0].Arguments.Get(1).(bson.M)
	statuses := filter["hearingSession.status"].(bson.M)["$in"].([]string)
	assert.ElementsMatch(t, []string{models.SessionAdjourned, models.SessionCompleted}, statuses)

	// The completed session's leftovers are closed and reported like any other
	set := wdb.Calls[0].Arguments.Get(2).(bson.M)["$set"].(bson.M)
	assert.Equal(t, models.RequestUnresolvable, set["workflowRequest.status"])
	entry := tdb.Calls[1].Arguments.Get(1).(models.TranscriptEntry)
	assert.Contains(t, entry.Message, "1 pending request(s)")
}

func TestScheduler_SweepSkipsWhenLockHeld(t *testing.T) {
	lockDB := &mocks.SchedulerLockDatabase{}
	lockDB.On("TryAcquireLock", mock.Anything, "adjournment_sweep_job", mock.Anything, mock.Anything).Return(false, nil)

	sdb := &mocks.HearingSessionDatabase{}

	s := NewScheduler(sdb, nil, nil, nil, nil, lockDB)
	s.sweepEndedSessions()

	sdb.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestScheduler_SweepNothingPending(t *testing.T) {
	session := endedSession(models.SessionAdjourned)

	lockDB := &mocks.SchedulerLockDatabase{}
	lockDB.On("TryAcquireLock", mock.Anything, "adjournment_sweep_job", mock.Anything, mock.Anything).Return(true, nil)
	lockDB.On("ReleaseLock", mock.Anything, "adjournment_sweep_job", mock.Anything).Return(nil)

	sdb := &mocks.HearingSessionDatabase{}
	sdb.On("Find", mock.Anything, mock.Anything).Return([]models.HearingSession{session}, nil)
	sdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	wdb := &mocks.WorkflowRequestDatabase{}
	wdb.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 0}, nil)

	tdb := &mocks.TranscriptDatabase{}

	s := NewScheduler(sdb, wdb, tdb, nil, nil, lockDB)
	s.sweepEndedSessions()

	// No transcript noise when the sweep found nothing, the flag still lands
	tdb.AssertNotCalled(t, "NextSeq", mock.Anything, mock.Anything)
	assert.Equal(t, 2, len(sdb.Calls))
}

func TestScheduler_GetUserEmail(t *testing.T) {
	udb := &mocks.UserDatabase{}
	udb.On("Find", mock.Anything, bson.M{"_id": "u1"}).Return([]models.User{
		{Details: models.UserDetails{Email: "ann@example.com"}},
	}, nil)
	udb.On("Find", mock.Anything, bson.M{"_id": "ghost"}).Return(nil, mongo.ErrNoDocuments)

	s := NewScheduler(nil, nil, nil, nil, udb, nil)

	assert.Equal(t, "ann@example.com", s.getUserEmail(context.Background(), "u1"))
	assert.Equal(t, "", s.getUserEmail(context.Background(), "ghost"))
}
