package databases

// go generate: mockery --name CommentDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/lost-found-api/models"
)

const commentName = "comments"

// CommentDatabase contains the methods to use with the comment database
type CommentDatabase interface {
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	Find(ctx context.Context, filter models.CommentFilter, page models.Page) ([]models.Comment, error)
	// FindAll returns every match oldest first, it is used for replies
	FindAll(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error)
	CountDocuments(ctx context.Context, filter models.CommentFilter) (int64, error)
	InsertOne(ctx context.Context, comment *models.Comment) error
	SetContent(ctx context.Context, id, content string) (*models.Comment, error)
	AddLike(ctx context.Context, id, userID string) (*models.Comment, error)
	RemoveLike(ctx context.Context, id, userID string) (*models.Comment, error)
	DeleteOne(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter models.CommentFilter) (int64, error)
}

type commentDatabase struct {
	db DatabaseHelper
}

// NewCommentDatabase initializes a new instance of comment database with the provided db connection
func NewCommentDatabase(db DatabaseHelper) CommentDatabase {
	return &commentDatabase{
		db: db,
	}
}

func (c *commentDatabase) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	oID, err := objectID(id, "comment")
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{}
	err = c.db.Collection(commentName).FindOne(ctx, bson.M{"_id": oID}).Decode(&comment)
	if err != nil {
		return nil, translateError(err, "comment "+id)
	}
	return comment, nil
}

func (c *commentDatabase) Find(ctx context.Context, filter models.CommentFilter, page models.Page) ([]models.Comment, error) {
	return c.find(ctx, commentQuery(filter), newestFirst(page))
}

func (c *commentDatabase) FindAll(ctx context.Context, filter models.CommentFilter) ([]models.Comment, error) {
	return c.find(ctx, commentQuery(filter), options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
}

func (c *commentDatabase) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Comment, error) {
	var comments []models.Comment
	curr, err := c.db.Collection(commentName).Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &comments)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *commentDatabase) CountDocuments(ctx context.Context, filter models.CommentFilter) (int64, error) {
	return c.db.Collection(commentName).CountDocuments(ctx, commentQuery(filter))
}

func (c *commentDatabase) InsertOne(ctx context.Context, comment *models.Comment) error {
	_, err := c.db.Collection(commentName).InsertOne(ctx, comment)
	return err
}

func (c *commentDatabase) SetContent(ctx context.Context, id, content string) (*models.Comment, error) {
	return c.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"content":   content,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}})
}

func (c *commentDatabase) AddLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	return c.findOneAndUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	})
}

func (c *commentDatabase) RemoveLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	return c.findOneAndUpdate(ctx, id, bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	})
}

func (c *commentDatabase) DeleteOne(ctx context.Context, id string) error {
	oID, err := objectID(id, "comment")
	if err != nil {
		return err
	}
	n, err := c.db.Collection(commentName).DeleteOne(ctx, bson.M{"_id": oID})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.NotFoundf("comment %s", id)
	}
	return nil
}

func (c *commentDatabase) DeleteMany(ctx context.Context, filter models.CommentFilter) (int64, error) {
	return c.db.Collection(commentName).DeleteMany(ctx, commentQuery(filter))
}

func (c *commentDatabase) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*models.Comment, error) {
	oID, err := objectID(id, "comment")
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{}
	err = c.db.Collection(commentName).FindOneAndUpdate(ctx, bson.M{"_id": oID}, update, returnUpdated()).Decode(&comment)
	if err != nil {
		return nil, translateError(err, "comment "+id)
	}
	return comment, nil
}

func commentQuery(f models.CommentFilter) bson.M {
	query := bson.M{}
	if f.PostID != "" {
		query["postId"] = f.PostID
	}
	if f.TopLevel {
		query["parentId"] = bson.M{"$exists": false}
	}
	if len(f.ParentIDs) > 0 {
		query["parentId"] = bson.M{"$in": f.ParentIDs}
	}
	return query
}
