// Package store persists final rankings.
//
// The engine never writes anywhere itself; the pipeline hands finished
// results to a [Store]. [FileStore] keeps one JSON document per ranking
// under a directory and suits the CLI. [MongoStore] keeps them in a MongoDB
// collection and suits the server. Both return rankings newest first.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/ranking"
)

// Record is one stored ranking of a comparison group.
type Record struct {
	ID          string            `json:"id" bson:"_id"`
	Group       string            `json:"group" bson:"group"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
	MatrixHash  string            `json:"matrix_hash" bson:"matrix_hash"`
	EngineHash  string            `json:"engine_hash,omitempty" bson:"engine_hash,omitempty"`
	Score       float64           `json:"score" bson:"score"`
	Rankings    []ranking.Ranking `json:"rankings" bson:"rankings"`
	Stages      []ranking.Stage   `json:"stages,omitempty" bson:"stages,omitempty"`
	Competitors int               `json:"competitors" bson:"competitors"`
}

// NewRecord builds a record from an optimizer result.
func NewRecord(group, matrixHash, engineHash string, res *ranking.Result) *Record {
	return &Record{
		Group:       group,
		MatrixHash:  matrixHash,
		EngineHash:  engineHash,
		Score:       res.Score,
		Rankings:    res.Rankings,
		Stages:      res.Stages,
		Competitors: len(res.Rankings),
	}
}

// Store persists ranking records.
type Store interface {
	// Save stores rec, assigning ID and CreatedAt when they are empty.
	Save(ctx context.Context, rec *Record) error

	// Latest returns the newest record for group, or NOT_FOUND.
	Latest(ctx context.Context, group string) (*Record, error)

	// List returns up to limit records for group, newest first. A limit
	// of zero or less means no limit.
	List(ctx context.Context, group string, limit int) ([]*Record, error)

	// Close releases backend resources.
	Close() error
}

// prepare validates rec and fills in its identity.
func prepare(rec *Record) error {
	if err := errors.ValidateGroupName(rec.Group); err != nil {
		return err
	}
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "generate record id")
		}
		rec.ID = id.String()
	} else if _, err := uuid.Parse(rec.ID); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "record id %q", rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return nil
}

func notFound(group string) error {
	return errors.New(errors.ErrCodeNotFound, "no stored ranking for group %q", group)
}
