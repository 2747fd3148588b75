package databases

// go generate: mockery --name PostDatabase

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/lost-found-api/models"
)

const postName = "posts"

// PostDatabase contains the methods to use with the post database
type PostDatabase interface {
	FindByID(ctx context.Context, id string) (*models.Post, error)
	Find(ctx context.Context, filter models.PostFilter, page models.Page) ([]models.Post, error)
	CountDocuments(ctx context.Context, filter models.PostFilter) (int64, error)
	InsertOne(ctx context.Context, post *models.Post) error
	// SetFields applies fields as a single $set and returns the updated post
	SetFields(ctx context.Context, id string, fields bson.M) (*models.Post, error)
	AddLike(ctx context.Context, id, userID string) (*models.Post, error)
	RemoveLike(ctx context.Context, id, userID string) (*models.Post, error)
	SetAuthorSnapshot(ctx context.Context, userID string, author models.AuthorSnapshot) (int64, error)
	DeleteOne(ctx context.Context, id string) error
}

type postDatabase struct {
	db DatabaseHelper
}

// NewPostDatabase initializes a new instance of post database with the provided db connection
func NewPostDatabase(db DatabaseHelper) PostDatabase {
	return &postDatabase{
		db: db,
	}
}

func (p *postDatabase) FindByID(ctx context.Context, id string) (*models.Post, error) {
	oID, err := objectID(id, "post")
	if err != nil {
		return nil, err
	}
	post := &models.Post{}
	err = p.db.Collection(postName).FindOne(ctx, bson.M{"_id": oID}).Decode(&post)
	if err != nil {
		return nil, translateError(err, "post "+id)
	}
	return post, nil
}

func (p *postDatabase) Find(ctx context.Context, filter models.PostFilter, page models.Page) ([]models.Post, error) {
	var posts []models.Post
	curr, err := p.db.Collection(postName).Find(ctx, postQuery(filter), newestFirst(page))
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &posts)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (p *postDatabase) CountDocuments(ctx context.Context, filter models.PostFilter) (int64, error) {
	return p.db.Collection(postName).CountDocuments(ctx, postQuery(filter))
}

func (p *postDatabase) InsertOne(ctx context.Context, post *models.Post) error {
	_, err := p.db.Collection(postName).InsertOne(ctx, post)
	return err
}

func (p *postDatabase) SetFields(ctx context.Context, id string, fields bson.M) (*models.Post, error) {
	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	for k, v := range fields {
		set[k] = v
	}
	return p.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

func (p *postDatabase) AddLike(ctx context.Context, id, userID string) (*models.Post, error) {
	return p.findOneAndUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	})
}

func (p *postDatabase) RemoveLike(ctx context.Context, id, userID string) (*models.Post, error) {
	return p.findOneAndUpdate(ctx, id, bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	})
}

func (p *postDatabase) SetAuthorSnapshot(ctx context.Context, userID string, author models.AuthorSnapshot) (int64, error) {
	// posts already carrying the snapshot are left untouched
	filter := bson.M{"userId": userID, "$or": []bson.M{
		{"authorFullname": bson.M{"$ne": author.Fullname}},
		{"authorAvatar": bson.M{"$ne": author.Avatar}},
	}}
	res, err := p.db.Collection(postName).UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"authorFullname": author.Fullname,
		"authorAvatar":   author.Avatar,
		"updatedAt":      primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (p *postDatabase) DeleteOne(ctx context.Context, id string) error {
	oID, err := objectID(id, "post")
	if err != nil {
		return err
	}
	n, err := p.db.Collection(postName).DeleteOne(ctx, bson.M{"_id": oID})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.NotFoundf("post %s", id)
	}
	return nil
}

func (p *postDatabase) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*models.Post, error) {
	oID, err := objectID(id, "post")
	if err != nil {
		return nil, err
	}
	post := &models.Post{}
	err = p.db.Collection(postName).FindOneAndUpdate(ctx, bson.M{"_id": oID}, update, returnUpdated()).Decode(&post)
	if err != nil {
		return nil, translateError(err, "post "+id)
	}
	return post, nil
}

// postQuery builds the mongo filter for a post listing
func postQuery(f models.PostFilter) bson.M {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	} else if len(f.Statuses) > 0 {
		query["status"] = bson.M{"$in": f.Statuses}
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.ItemType != "" {
		query["itemType"] = f.ItemType
	}
	if f.UserID != "" {
		query["userId"] = f.UserID
	}
	if f.Banned != nil {
		if *f.Banned {
			query["banned"] = true
		} else {
			// documents written before the flag existed have no banned field
			query["banned"] = bson.M{"$ne": true}
		}
	}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		query["$or"] = []bson.M{
			{"title": bson.M{"$regex": pattern, "$options": "i"}},
			{"location": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return query
}
