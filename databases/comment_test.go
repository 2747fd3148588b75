package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/databases/mocks"
	"github.com/linesmerrill/lost-found-api/models"
)

func TestCommentDatabase_AddLike(t *testing.T) {
	commentID := primitive.NewObjectID()
	missingID := primitive.NewObjectID()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelperErr := &mocks.SingleResultHelper{}
	srHelperCorrect := &mocks.SingleResultHelper{}

	srHelperErr.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	srHelperCorrect.On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Comment)
		(*arg).ID = commentID
		(*arg).Likes = []string{"u1"}
	})

	update := mock.MatchedBy(func(update bson.M) bool {
		set, ok := update["$set"].(bson.M)
		if !ok {
			return false
		}
		_, stamped := set["updatedAt"]
		added, _ := update["$addToSet"].(bson.M)
		return stamped && added["likes"] == "u1"
	})
	collectionHelper.
		On("FindOneAndUpdate", context.Background(), bson.M{"_id": missingID}, update, mock.Anything).
		Return(srHelperErr)
	collectionHelper.
		On("FindOneAndUpdate", context.Background(), bson.M{"_id": commentID}, update, mock.Anything).
		Return(srHelperCorrect)

	dbHelper.On("Collection", "comments").Return(collectionHelper)

	commentDba := databases.NewCommentDatabase(dbHelper)

	comment, err := commentDba.AddLike(context.Background(), missingID.Hex(), "u1")
	assert.Nil(t, comment)
	assert.True(t, models.IsNotFound(err))

	comment, err = commentDba.AddLike(context.Background(), commentID.Hex(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"u1"}, comment.Likes)
}

func TestCommentDatabase_DeleteOne(t *testing.T) {
	commentID := primitive.NewObjectID()
	missingID := primitive.NewObjectID()
	brokenID := primitive.NewObjectID()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("DeleteOne", context.Background(), bson.M{"_id": commentID}).Return(int64(1), nil)
	collectionHelper.On("DeleteOne", context.Background(), bson.M{"_id": missingID}).Return(int64(0), nil)
	collectionHelper.On("DeleteOne", context.Background(), bson.M{"_id": brokenID}).Return(int64(0), errors.New("mocked-error"))

	dbHelper.On("Collection", "comments").Return(collectionHelper)

	commentDba := databases.NewCommentDatabase(dbHelper)

	assert.NoError(t, commentDba.DeleteOne(context.Background(), commentID.Hex()))
	assert.True(t, models.IsNotFound(commentDba.DeleteOne(context.Background(), missingID.Hex())))
	assert.EqualError(t, commentDba.DeleteOne(context.Background(), brokenID.Hex()), "mocked-error")
}

func TestCommentDatabase_DeleteManyReplies(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	filter := bson.M{"parentId": bson.M{"$in": []string{"c1", "c2"}}}
	collectionHelper.On("DeleteMany", context.Background(), filter).Return(int64(3), nil)
	dbHelper.On("Collection", "comments").Return(collectionHelper)

	commentDba := databases.NewCommentDatabase(dbHelper)

	n, err := commentDba.DeleteMany(context.Background(), models.CommentFilter{ParentIDs: []string{"c1", "c2"}})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
