package databases

// go generate: mockery --name TranscriptDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-hearing-api/models"
)

const (
	transcriptName = "transcripts"
	counterName    = "counters"
)

// TranscriptDatabase contains the methods to use with the transcript database
type TranscriptDatabase interface {
	// NextSeq atomically claims the next sequence number for the session.
	// Numbers are monotonic and gapless per session, starting at 1.
	NextSeq(ctx context.Context, sessionID string) (int64, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.TranscriptEntry, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TranscriptEntry, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type transcriptDatabase struct {
	db DatabaseHelper
}

// NewTranscriptDatabase initializes a new instance of transcript database with the provided db connection
func NewTranscriptDatabase(db DatabaseHelper) TranscriptDatabase {
	return &transcriptDatabase{
		db: db,
	}
}

func (t *transcriptDatabase) NextSeq(ctx context.Context, sessionID string) (int64, error) {
	// Upsert-and-increment on the per-session counter document. Mongo applies
	// the $inc atomically, so two concurrent appends never see the same value.
	upsert := true
	after := options.After
	opts := &options.FindOneAndUpdateOptions{
		Upsert:         &upsert,
		ReturnDocument: &after,
	}

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := t.db.Collection(counterName).FindOneAndUpdate(ctx,
		bson.M{"_id": "transcript:" + sessionID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (t *transcriptDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.TranscriptEntry, error) {
	entry := &models.TranscriptEntry{}
	err := t.db.Collection(transcriptName).FindOne(ctx, filter, opts...).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (t *transcriptDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TranscriptEntry, error) {
	var entries []models.TranscriptEntry
	curr, err := t.db.Collection(transcriptName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (t *transcriptDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return t.db.Collection(transcriptName).CountDocuments(ctx, filter, opts...)
}

func (t *transcriptDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return t.db.Collection(transcriptName).InsertOne(ctx, document, opts...)
}
