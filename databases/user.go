package databases

// go generate: mockery --name UserDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/lost-found-api/models"
)

const userName = "users"

// UserDatabase reads the author data kept by the user service. The api never
// writes to the users collection.
type UserDatabase interface {
	FindProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

type userDatabase struct {
	db DatabaseHelper
}

// NewUserDatabase initializes a new instance of user database with the provided db connection
func NewUserDatabase(db DatabaseHelper) UserDatabase {
	return &userDatabase{
		db: db,
	}
}

func (u *userDatabase) FindProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	uID, err := objectID(userID, "user")
	if err != nil {
		return nil, err
	}
	profile := &models.UserProfile{}
	opts := options.FindOne().SetProjection(bson.M{"fullname": 1, "avatar": 1})
	err = u.db.Collection(userName).FindOne(ctx, bson.M{"_id": uID}, opts).Decode(&profile)
	if err != nil {
		return nil, translateError(err, "user "+userID)
	}
	return profile, nil
}
