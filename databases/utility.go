package databases

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/lost-found-api/models"
)

type mongoPaginate struct {
	limit int64
	page  int64
}

func newMongoPaginate(p models.Page) *mongoPaginate {
	return &mongoPaginate{
		limit: int64(p.Limit),
		page:  int64(p.Page),
	}
}

func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	l := mp.limit
	skip := mp.page*mp.limit - mp.limit
	fOpt := options.FindOptions{Limit: &l, Skip: &skip}

	return &fOpt
}

// newestFirst returns paginated find options sorted by creation time
func newestFirst(p models.Page) *options.FindOptions {
	return newMongoPaginate(p).getPaginatedOpts().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}

// returnUpdated makes FindOneAndUpdate hand back the document after the update
func returnUpdated() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// objectID parses a hex id, an id that cannot be parsed can never resolve
func objectID(id, what string) (primitive.ObjectID, error) {
	oID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.NotFoundf("%s %q", what, id)
	}
	return oID, nil
}
