// Package memdb keeps every collection in process memory. It implements the
// same contracts as the mongo backed databases and is used for local runs
// without a DB_URI and by the service tests.
package memdb

import (
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/models"
)

// Store holds all collections behind a single lock, each operation is atomic
type Store struct {
	mu sync.Mutex

	posts         map[primitive.ObjectID]models.Post
	comments      map[primitive.ObjectID]models.Comment
	reports       map[primitive.ObjectID]models.Report
	notifications map[primitive.ObjectID]models.Notification
	users         map[string]models.UserProfile

	now func() time.Time
}

// New returns an empty store
func New() *Store {
	return &Store{
		posts:         map[primitive.ObjectID]models.Post{},
		comments:      map[primitive.ObjectID]models.Comment{},
		reports:       map[primitive.ObjectID]models.Report{},
		notifications: map[primitive.ObjectID]models.Notification{},
		users:         map[string]models.UserProfile{},
		now:           time.Now,
	}
}

// Posts returns the posts collection
func (s *Store) Posts() databases.PostDatabase { return &postCollection{s: s} }

// Comments returns the comments collection
func (s *Store) Comments() databases.CommentDatabase { return &commentCollection{s: s} }

// Reports returns the reports collection
func (s *Store) Reports() databases.ReportDatabase { return &reportCollection{s: s} }

// Notifications returns the notifications collection
func (s *Store) Notifications() databases.NotificationDatabase {
	return &notificationCollection{s: s}
}

// Users returns the read only users collection
func (s *Store) Users() databases.UserDatabase { return &userCollection{s: s} }

// PutUser stores a user profile, the api itself never writes users
func (s *Store) PutUser(profile models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[profile.ID] = profile
}

func (s *Store) timestamp() primitive.DateTime {
	return primitive.NewDateTimeFromTime(s.now())
}

// applySet mimics a mongo $set on top-level fields by round tripping the
// document through bson
func applySet[T any](doc T, fields bson.M) (T, error) {
	var out T
	raw, err := bson.Marshal(doc)
	if err != nil {
		return out, err
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return out, err
	}
	for k, v := range fields {
		m[k] = v
	}
	raw, err = bson.Marshal(m)
	if err != nil {
		return out, err
	}
	err = bson.Unmarshal(raw, &out)
	return out, err
}

func addToSet(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(append([]string{}, list...), v)
}

func pull(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func cloneStrings(list []string) []string {
	if list == nil {
		return nil
	}
	return append([]string{}, list...)
}

// paginate sorts newest first and cuts the requested page
func paginate[T any](items []T, created func(T) (primitive.DateTime, primitive.ObjectID), page models.Page) []T {
	sort.SliceStable(items, func(i, j int) bool {
		ci, idi := created(items[i])
		cj, idj := created(items[j])
		if ci != cj {
			return ci > cj
		}
		return idi.Hex() > idj.Hex()
	})
	start := page.Skip()
	if start >= len(items) {
		return nil
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func lookup(id, what string) (primitive.ObjectID, error) {
	oID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.NotFoundf("%s %q", what, id)
	}
	return oID, nil
}
