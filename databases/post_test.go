package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/lost-found-api/config"
	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/databases/mocks"
	"github.com/linesmerrill/lost-found-api/models"
)

func TestNewPostDatabase(t *testing.T) {
	_ = os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	_ = os.Setenv("DB_NAME", "test")
	defer os.Unsetenv("DB_URI")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	postDB := databases.NewPostDatabase(db)

	assert.NotEmpty(t, postDB)
}

func TestPostDatabase_FindByID(t *testing.T) {
	postID := primitive.NewObjectID()

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(mongo.ErrNoDocuments)

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Post)
		(*arg).ID = postID
		(*arg).Title = "mocked-post"
	})

	missingID := primitive.NewObjectID()
	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": missingID}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": postID}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "posts").Return(collectionHelper)

	postDba := databases.NewPostDatabase(dbHelper)

	post, err := postDba.FindByID(context.Background(), missingID.Hex())
	assert.Empty(t, post)
	assert.True(t, models.IsNotFound(err))

	post, err = postDba.FindByID(context.Background(), postID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, &models.Post{ID: postID, Title: "mocked-post"}, post)

	// malformed ids never reach the collection
	post, err = postDba.FindByID(context.Background(), "1234")
	assert.Empty(t, post)
	assert.True(t, models.IsNotFound(err))
}

func TestPostDatabase_Find(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	visible := false
	filter := models.PostFilter{Status: models.PostStatusApproved, Banned: &visible}

	cursorHelper.(*mocks.CursorHelper).On("Close", mock.Anything).Return(nil)
	cursorHelper.(*mocks.CursorHelper).
		On("All", mock.Anything, mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Post)
		*arg = []models.Post{{Title: "mocked-post"}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"status": "approved", "banned": bson.M{"$ne": true}}, mock.Anything).
		Return(cursorHelper, nil)
	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"status": "rejected"}, mock.Anything).
		Return(nil, errors.New("mocked-error"))

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "posts").Return(collectionHelper)

	postDba := databases.NewPostDatabase(dbHelper)

	posts, err := postDba.Find(context.Background(), filter, models.NewPage(1, 10))
	assert.NoError(t, err)
	assert.Equal(t, []models.Post{{Title: "mocked-post"}}, posts)

	posts, err = postDba.Find(context.Background(), models.PostFilter{Status: models.PostStatusRejected}, models.NewPage(1, 10))
	assert.Empty(t, posts)
	assert.EqualError(t, err, "mocked-error")
}

func TestPostDatabase_AddLikeUsesAddToSet(t *testing.T) {
	postID := primitive.NewObjectID()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelper := &mocks.SingleResultHelper{}

	srHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Post)
		(*arg).ID = postID
		(*arg).Likes = []string{"u1"}
	})

	collectionHelper.
		On("FindOneAndUpdate", context.Background(), bson.M{"_id": postID}, mock.MatchedBy(func(update bson.M) bool {
			add, ok := update["$addToSet"].(bson.M)
			return ok && add["likes"] == "u1"
		}), mock.Anything).
		Return(srHelper)
	dbHelper.On("Collection", "posts").Return(collectionHelper)

	post, err := databases.NewPostDatabase(dbHelper).AddLike(context.Background(), postID.Hex(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"u1"}, post.Likes)
	collectionHelper.AssertExpectations(t)
}

func TestPostDatabase_SetFieldsStampsUpdatedAt(t *testing.T) {
	postID := primitive.NewObjectID()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelper := &mocks.SingleResultHelper{}

	srHelper.On("Decode", mock.Anything).Return(nil)
	collectionHelper.
		On("FindOneAndUpdate", context.Background(), bson.M{"_id": postID}, mock.MatchedBy(func(update bson.M) bool {
			set, ok := update["$set"].(bson.M)
			if !ok {
				return false
			}
			_, stamped := set["updatedAt"]
			return stamped && set["status"] == models.PostStatusApproved
		}), mock.Anything).
		Return(srHelper)
	dbHelper.On("Collection", "posts").Return(collectionHelper)

	fields := bson.M{"status": models.PostStatusApproved}
	_, err := databases.NewPostDatabase(dbHelper).SetFields(context.Background(), postID.Hex(), fields)
	assert.NoError(t, err)
	// the caller's map is left alone
	assert.Len(t, fields, 1)
}

func TestPostDatabase_SetAuthorSnapshotStampsUpdatedAt(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	author := models.AuthorSnapshot{Fullname: "An Nguyễn", Avatar: "https://img/new.png"}
	filter := bson.M{"userId": "u1", "$or": []bson.M{
		{"authorFullname": bson.M{"$ne": author.Fullname}},
		{"authorAvatar": bson.M{"$ne": author.Avatar}},
	}}
	collectionHelper.
		On("UpdateMany", context.Background(), filter, mock.MatchedBy(func(update bson.M) bool {
			set, ok := update["$set"].(bson.M)
			if !ok {
				return false
			}
			_, stamped := set["updatedAt"]
			return stamped && set["authorFullname"] == author.Fullname && set["authorAvatar"] == author.Avatar
		})).
		Return(&mongo.UpdateResult{MatchedCount: 2, ModifiedCount: 2}, nil)
	dbHelper.On("Collection", "posts").Return(collectionHelper)

	n, err := databases.NewPostDatabase(dbHelper).SetAuthorSnapshot(context.Background(), "u1", author)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	collectionHelper.AssertExpectations(t)
}

func TestPostDatabase_DeleteOne(t *testing.T) {
	postID := primitive.NewObjectID()
	missingID := primitive.NewObjectID()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("DeleteOne", context.Background(), bson.M{"_id": postID}).Return(int64(1), nil)
	collectionHelper.On("DeleteOne", context.Background(), bson.M{"_id": missingID}).Return(int64(0), nil)
	dbHelper.On("Collection", "posts").Return(collectionHelper)

	postDba := databases.NewPostDatabase(dbHelper)

	assert.NoError(t, postDba.DeleteOne(context.Background(), postID.Hex()))
	assert.True(t, models.IsNotFound(postDba.DeleteOne(context.Background(), missingID.Hex())))
}
