package databases

// go generate: mockery --name CourtCaseDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/court-hearing-api/models"
)

const courtCaseName = "courtcases"

// CourtCaseDatabase contains the methods to use with the court case database
type CourtCaseDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CourtCase, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type courtCaseDatabase struct {
	db DatabaseHelper
}

// NewCourtCaseDatabase initializes a new instance of court case database with the provided db connection
func NewCourtCaseDatabase(db DatabaseHelper) CourtCaseDatabase {
	return &courtCaseDatabase{
		db: db,
	}
}

func (c *courtCaseDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CourtCase, error) {
	courtCase := &models.CourtCase{}
	err := c.db.Collection(courtCaseName).FindOne(ctx, filter, opts...).Decode(&courtCase)
	if err != nil {
		return nil, err
	}
	return courtCase, nil
}

func (c *courtCaseDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(courtCaseName).UpdateOne(ctx, filter, update, opts...)
}
