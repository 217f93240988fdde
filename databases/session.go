package databases

// go generate: mockery --name HearingSessionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-hearing-api/models"
)

const hearingSessionName = "hearingsessions"

// HearingSessionDatabase contains the methods to use with the hearing session database
type HearingSessionDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.HearingSession, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.HearingSession, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type hearingSessionDatabase struct {
	db DatabaseHelper
}

// NewHearingSessionDatabase initializes a new instance of hearing session database with the provided db connection
func NewHearingSessionDatabase(db DatabaseHelper) HearingSessionDatabase {
	return &hearingSessionDatabase{
		db: db,
	}
}

func (c *hearingSessionDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.HearingSession, error) {
	session := &models.HearingSession{}
	err := c.db.Collection(hearingSessionName).FindOne(ctx, filter, opts...).Decode(&session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *hearingSessionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.HearingSession, error) {
	var sessions []models.HearingSession
	curr, err := c.db.Collection(hearingSessionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &sessions)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *hearingSessionDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(hearingSessionName).CountDocuments(ctx, filter, opts...)
}

func (c *hearingSessionDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(hearingSessionName).InsertOne(ctx, document, opts...)
}

func (c *hearingSessionDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(hearingSessionName).UpdateOne(ctx, filter, update, opts...)
}
