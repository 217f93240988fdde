package databases

// go generate: mockery --name WorkflowRequestDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-hearing-api/models"
)

const workflowRequestName = "workflowrequests"

// WorkflowRequestDatabase contains the methods to use with the workflow request database
type WorkflowRequestDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.WorkflowRequest, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.WorkflowRequest, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type workflowRequestDatabase struct {
	db DatabaseHelper
}

// NewWorkflowRequestDatabase initializes a new instance of workflow request database with the provided db connection
func NewWorkflowRequestDatabase(db DatabaseHelper) WorkflowRequestDatabase {
	return &workflowRequestDatabase{
		db: db,
	}
}

func (wr *workflowRequestDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.WorkflowRequest, error) {
	request := &models.WorkflowRequest{}
	err := wr.db.Collection(workflowRequestName).FindOne(ctx, filter, opts...).Decode(&request)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (wr *workflowRequestDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.WorkflowRequest, error) {
	var requests []models.WorkflowRequest
	curr, err := wr.db.Collection(workflowRequestName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &requests)
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (wr *workflowRequestDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return wr.db.Collection(workflowRequestName).CountDocuments(ctx, filter, opts...)
}

func (wr *workflowRequestDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return wr.db.Collection(workflowRequestName).InsertOne(ctx, document, opts...)
}

func (wr *workflowRequestDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return wr.db.Collection(workflowRequestName).UpdateOne(ctx, filter, update, opts...)
}

func (wr *workflowRequestDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return wr.db.Collection(workflowRequestName).UpdateMany(ctx, filter, update, opts...)
}
