package moderation_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/databases"
	"github.com/linesmerrill/lost-found-api/databases/memdb"
	"github.com/linesmerrill/lost-found-api/models"
	"github.com/linesmerrill/lost-found-api/moderation"
	"github.com/linesmerrill/lost-found-api/notifications/notificationstest"
	"github.com/linesmerrill/lost-found-api/profiles"
)

var (
	admin = access.NewPrincipal("admin1", "Quản trị", access.RoleAdmin)
	u1    = access.NewPrincipal("u1", "An")
	u2    = access.NewPrincipal("u2", "Bình")
)

type fixture struct {
	store   *memdb.Store
	events  *notificationstest.Recorder
	service *moderation.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memdb.New()
	store.PutUser(models.UserProfile{ID: "u1", Fullname: "Nguyễn Văn An", Avatar: "https://img/u1.png"})
	rec := &notificationstest.Recorder{}
	svc := moderation.NewService(store.Posts(), store.Comments(), profiles.NewDirectory(store.Users()), rec)
	return &fixture{store: store, events: rec, service: svc}
}

func validInput() moderation.CreatePostInput {
	return moderation.CreatePostInput{
		Title:       "Mất ví da màu nâu",
		Description: "Ví có thẻ sinh viên",
		Category:    models.CategoryLost,
		ItemType:    "wallet",
		Location:    "Thư viện trung tâm",
	}
}

func (f *fixture) create(t *testing.T, p *access.Principal) *models.Post {
	t.Helper()
	post, err := f.service.Create(context.Background(), p, validInput())
	require.NoError(t, err)
	f.events.Reset()
	return post
}

// publish creates a post and approves it
func (f *fixture) publish(t *testing.T, p *access.Principal) *models.Post {
	t.Helper()
	post := f.create(t, p)
	approved, err := f.service.Approve(context.Background(), admin, post.ID.Hex())
	require.NoError(t, err)
	f.events.Reset()
	return approved
}

func TestCreateUserPostIsPending(t *testing.T) {
	f := newFixture(t)

	post, err := f.service.Create(context.Background(), u1, validInput())
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPending, post.Status)
	assert.False(t, post.IsAdminPost)
	assert.Equal(t, "Nguyễn Văn An", post.AuthorFullname)
	assert.Equal(t, "https://img/u1.png", post.AuthorAvatar)
	assert.Empty(t, post.Likes)
	assert.NotNil(t, post.Images)
	assert.Empty(t, f.events.Events())
}

func TestCreateAdminPostIsApprovedWithoutNotification(t *testing.T) {
	f := newFixture(t)

	post, err := f.service.Create(context.Background(), admin, validInput())
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusApproved, post.Status)
	assert.True(t, post.IsAdminPost)
	// no profile stored for the admin, the token name is used
	assert.Equal(t, "Quản trị", post.AuthorFullname)
	assert.Empty(t, post.AuthorAvatar)
	assert.Empty(t, f.events.Events())
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]func(in *moderation.CreatePostInput){
		"missing title":       func(in *moderation.CreatePostInput) { in.Title = " " },
		"missing description": func(in *moderation.CreatePostInput) { in.Description = "" },
		"missing location":    func(in *moderation.CreatePostInput) { in.Location = "" },
		"bad category":        func(in *moderation.CreatePostInput) { in.Category = "stolen" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := f.service.Create(context.Background(), u1, in)
			assert.True(t, models.IsValidationError(err), "got %v", err)
		})
	}

	_, err := f.service.Create(context.Background(), nil, validInput())
	assert.True(t, errors.Is(err, models.ErrUnauthorized))

	n, err := f.store.Posts().CountDocuments(context.Background(), models.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApproveNotifiesOwnerOnce(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, u1)

	approved, err := f.service.Approve(context.Background(), admin, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusApproved, approved.Status)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "u1", events[0].RecipientID)
	assert.Equal(t, models.NotificationPostApproved, events[0].Type)
	assert.Equal(t, post.ID.Hex(), events[0].RelatedID)
}

func TestApproveOwnPostDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, admin)

	_, err := f.service.Approve(context.Background(), admin, post.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, f.events.Events())
}

func TestTransitions(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, u1)
	id := post.ID.Hex()
	ctx := context.Background()

	cases := []struct {
		name   string
		run    func(p *access.Principal) (*models.Post, error)
		check  func(t *testing.T, p *models.Post)
		notify string
	}{
		{
			name:   "reject",
			run:    func(p *access.Principal) (*models.Post, error) { return f.service.Reject(ctx, p, id) },
			check:  func(t *testing.T, p *models.Post) { assert.Equal(t, models.PostStatusRejected, p.Status) },
			notify: models.NotificationPostRejected,
		},
		{
			name:   "approve",
			run:    func(p *access.Principal) (*models.Post, error) { return f.service.Approve(ctx, p, id) },
			check:  func(t *testing.T, p *models.Post) { assert.Equal(t, models.PostStatusApproved, p.Status) },
			notify: models.NotificationPostApproved,
		},
		{
			name:   "mark found",
			run:    func(p *access.Principal) (*models.Post, error) { return f.service.MarkFound(ctx, p, id) },
			check:  func(t *testing.T, p *models.Post) { assert.Equal(t, models.PostStatusCompleted, p.Status) },
			notify: models.NotificationItemFound,
		},
		{
			name:   "mark not found",
			run:    func(p *access.Principal) (*models.Post, error) { return f.service.MarkNotFound(ctx, p, id) },
			check:  func(t *testing.T, p *models.Post) { assert.Equal(t, models.PostStatusApproved, p.Status) },
			notify: models.NotificationItemNotFound,
		},
		{
			name: "ban",
			run:  func(p *access.Principal) (*models.Post, error) { return f.service.Ban(ctx, p, id, "spam") },
			check: func(t *testing.T, p *models.Post) {
				assert.True(t, p.Banned)
				require.NotNil(t, p.BannedReason)
				assert.Equal(t, "spam", *p.BannedReason)
				assert.NotNil(t, p.BannedAt)
				assert.Equal(t, models.PostStatusApproved, p.Status)
			},
			notify: models.NotificationPostBanned,
		},
		{
			name: "unban",
			run:  func(p *access.Principal) (*models.Post, error) { return f.service.Unban(ctx, p, id) },
			check: func(t *testing.T, p *models.Post) {
				assert.False(t, p.Banned)
				assert.Nil(t, p.BannedReason)
				assert.Nil(t, p.BannedAt)
			},
			notify: models.NotificationPostApproved,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.events.Reset()

			_, err := tc.run(u2)
			assert.True(t, errors.Is(err, models.ErrForbidden), "got %v", err)
			_, err = tc.run(nil)
			assert.True(t, errors.Is(err, models.ErrUnauthorized), "got %v", err)
			assert.Empty(t, f.events.Events())

			got, err := tc.run(admin)
			require.NoError(t, err)
			tc.check(t, got)

			events := f.events.Events()
			require.Len(t, events, 1)
			assert.Equal(t, tc.notify, events[0].Type)
			assert.Equal(t, "u1", events[0].RecipientID)
		})
	}
}

func TestTransitionOnMissingPost(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Approve(context.Background(), admin, "5f1b2c3d4e5f6a7b8c9d0e1f")
	assert.True(t, models.IsNotFound(err))
	_, err = f.service.Approve(context.Background(), admin, "not-an-id")
	assert.True(t, models.IsNotFound(err))
	assert.Empty(t, f.events.Events())
}

func TestBanRequiresReason(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, u1)

	_, err := f.service.Ban(context.Background(), admin, post.ID.Hex(), "  ")
	assert.True(t, models.IsValidationError(err))

	stored, err := f.service.Get(context.Background(), admin, post.ID.Hex())
	require.NoError(t, err)
	assert.False(t, stored.Banned)
}

func TestUpdateReturnStatus(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, u1)
	id := post.ID.Hex()

	_, err := f.service.UpdateReturnStatus(context.Background(), admin, id, "lost forever")
	assert.True(t, models.IsValidationError(err))
	stored, err := f.service.Get(context.Background(), admin, id)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusNone, stored.ReturnStatus)
	assert.Empty(t, f.events.Events())

	got, err := f.service.UpdateReturnStatus(context.Background(), admin, id, models.ReturnStatusReturned)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusReturned, got.ReturnStatus)
	assert.Equal(t, models.PostStatusPending, got.Status)

	got, err = f.service.UpdateReturnStatus(context.Background(), admin, id, models.ReturnStatusNotFound)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusNotFound, got.ReturnStatus)

	events := f.events.Events()
	require.Len(t, events, 2)
	assert.Equal(t, models.NotificationItemFound, events[0].Type)
	assert.Equal(t, models.NotificationItemNotFound, events[1].Type)

	_, err = f.service.UpdateReturnStatus(context.Background(), u1, id, models.ReturnStatusReturned)
	assert.True(t, errors.Is(err, models.ErrForbidden))
}

func TestBannedPostsHiddenFromPublicListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	visible := f.publish(t, u1)
	hidden := f.publish(t, u1)
	_, err := f.service.Ban(ctx, admin, hidden.ID.Hex(), "lừa đảo")
	require.NoError(t, err)

	public, err := f.service.List(ctx, nil, moderation.ListQuery{})
	require.NoError(t, err)
	require.Len(t, public.Data, 1)
	assert.Equal(t, visible.ID, public.Data[0].ID)
	assert.Equal(t, int64(1), public.TotalCount)

	profile, err := f.service.List(ctx, nil, moderation.ListQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, profile.Data, 2)

	banned := true
	_, err = f.service.List(ctx, u1, moderation.ListQuery{Banned: &banned})
	assert.True(t, errors.Is(err, models.ErrForbidden))

	adminView, err := f.service.List(ctx, admin, moderation.ListQuery{Banned: &banned})
	require.NoError(t, err)
	require.Len(t, adminView.Data, 1)
	assert.Equal(t, hidden.ID, adminView.Data[0].ID)
}

func TestListFiltersAndPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.publish(t, u1)
	}
	in := validInput()
	in.Category = models.CategoryFound
	in.Title = "Nhặt được chìa khóa"
	in.Location = "Nhà xe B"
	keys, err := f.service.Create(ctx, u2, in)
	require.NoError(t, err)
	_, err = f.service.Approve(ctx, admin, keys.ID.Hex())
	require.NoError(t, err)

	page, err := f.service.List(ctx, nil, moderation.ListQuery{Page: models.Page{Page: 2, Limit: 3}})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(4), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)

	found, err := f.service.List(ctx, nil, moderation.ListQuery{Category: models.CategoryFound})
	require.NoError(t, err)
	assert.Len(t, found.Data, 1)

	search, err := f.service.List(ctx, nil, moderation.ListQuery{Search: "nhà XE"})
	require.NoError(t, err)
	require.Len(t, search.Data, 1)
	assert.Equal(t, "u2", search.Data[0].UserID)

	_, err = f.service.List(ctx, nil, moderation.ListQuery{Status: "archived"})
	assert.True(t, models.IsValidationError(err))
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.create(t, u1)
	id := post.ID.Hex()

	title := "Mất ví da màu đen"
	_, err := f.service.Update(ctx, u2, id, moderation.UpdatePostInput{Title: &title})
	assert.True(t, errors.Is(err, models.ErrForbidden))

	_, err = f.service.Update(ctx, u1, "5f1b2c3d4e5f6a7b8c9d0e1f", moderation.UpdatePostInput{Title: &title})
	assert.True(t, models.IsNotFound(err))

	bad := "stolen"
	_, err = f.service.Update(ctx, u1, id, moderation.UpdatePostInput{Category: &bad})
	assert.True(t, models.IsValidationError(err))

	// the owner changed their profile since creating the post
	f.store.PutUser(models.UserProfile{ID: "u1", Fullname: "An Nguyễn", Avatar: "https://img/new.png"})

	// admin edits keep the stale snapshot
	got, err := f.service.Update(ctx, admin, id, moderation.UpdatePostInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, "Nguyễn Văn An", got.AuthorFullname)
	assert.Equal(t, post.Description, got.Description)

	images := []string{"https://img/1.jpg"}
	got, err = f.service.Update(ctx, u1, id, moderation.UpdatePostInput{Images: &images})
	require.NoError(t, err)
	assert.Equal(t, images, got.Images)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, "An Nguyễn", got.AuthorFullname)
	assert.Equal(t, "https://img/new.png", got.AuthorAvatar)
	assert.Empty(t, f.events.Events())
}

func TestDeleteCascadesComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.create(t, u1)
	id := post.ID.Hex()
	require.NoError(t, f.store.Comments().InsertOne(ctx, &models.Comment{ID: post.ID, PostID: id, UserID: "u2", Content: "x"}))

	assert.True(t, errors.Is(f.service.Delete(ctx, u2, id), models.ErrForbidden))
	require.NoError(t, f.service.Delete(ctx, u1, id))

	_, err := f.service.Get(ctx, admin, id)
	assert.True(t, models.IsNotFound(err))
	n, err := f.store.Comments().CountDocuments(ctx, models.CommentFilter{PostID: id})
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.True(t, models.IsNotFound(f.service.Delete(ctx, u1, id)))
}

func TestToggleLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.create(t, u1)
	id := post.ID.Hex()

	liked, err := f.service.ToggleLike(ctx, u2, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, liked.Likes)

	unliked, err := f.service.ToggleLike(ctx, u2, id)
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)

	// only the like notifies, never the unlike
	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.NotificationLike, events[0].Type)
	assert.Equal(t, "u1", events[0].RecipientID)
	assert.Equal(t, "u2", events[0].ActorID)

	_, err = f.service.ToggleLike(ctx, nil, id)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}

func TestOwnerLikeDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, u1)

	got, err := f.service.ToggleLike(context.Background(), u1, post.ID.Hex())
	require.NoError(t, err)
	assert.True(t, got.LikedBy("u1"))
	assert.Empty(t, f.events.Events())
}

func TestConcurrentLikesFromDistinctUsers(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, u1)
	id := post.ID.Hex()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := access.NewPrincipal(string(rune('a'+i)), "user")
			_, err := f.service.ToggleLike(context.Background(), p, id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := f.service.Get(context.Background(), admin, id)
	require.NoError(t, err)
	assert.Len(t, got.Likes, 20)
}

func TestRefreshAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, u1)
	f.create(t, u1)
	other := f.create(t, u2)

	f.store.PutUser(models.UserProfile{ID: "u1", Fullname: "An Nguyễn", Avatar: "https://img/new.png"})
	n, err := f.service.RefreshAuthor(ctx, u1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	posts, err := f.service.List(ctx, u1, moderation.ListQuery{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, posts.Data, 2)
	for _, p := range posts.Data {
		assert.Equal(t, "An Nguyễn", p.AuthorFullname)
	}
	untouched, err := f.service.Get(ctx, admin, other.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Bình", untouched.AuthorFullname)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, u1)
	f.create(t, u1)
	f.create(t, admin)
	_, err := f.service.Reject(ctx, admin, a.ID.Hex())
	require.NoError(t, err)
	_, err = f.service.Ban(ctx, admin, a.ID.Hex(), "spam")
	require.NoError(t, err)

	_, err = f.service.Stats(ctx, u1)
	assert.True(t, errors.Is(err, models.ErrForbidden))

	stats, err := f.service.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, models.PostStats{Total: 3, Pending: 1, Approved: 1, Rejected: 1, Banned: 1}, *stats)
}

func TestListHidesPostsAwaitingModeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.create(t, u1)
	rejected := f.create(t, u1)
	_, err := f.service.Reject(ctx, admin, rejected.ID.Hex())
	require.NoError(t, err)
	approved := f.publish(t, u2)

	for _, viewer := range []*access.Principal{nil, u2} {
		public, err := f.service.List(ctx, viewer, moderation.ListQuery{})
		require.NoError(t, err)
		require.Len(t, public.Data, 1)
		assert.Equal(t, approved.ID, public.Data[0].ID)
	}

	other, err := f.service.List(ctx, u2, moderation.ListQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, other.Data)

	_, err = f.service.List(ctx, nil, moderation.ListQuery{Status: models.PostStatusPending})
	assert.True(t, errors.Is(err, models.ErrForbidden))
	_, err = f.service.List(ctx, u2, moderation.ListQuery{UserID: "u1", Status: models.PostStatusRejected})
	assert.True(t, errors.Is(err, models.ErrForbidden))

	own, err := f.service.List(ctx, u1, moderation.ListQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, own.Data, 2)

	queue, err := f.service.List(ctx, admin, moderation.ListQuery{Status: models.PostStatusPending})
	require.NoError(t, err)
	require.Len(t, queue.Data, 1)
	assert.Equal(t, pending.ID, queue.Data[0].ID)

	completed, err := f.service.MarkFound(ctx, admin, approved.ID.Hex())
	require.NoError(t, err)
	public, err := f.service.List(ctx, nil, moderation.ListQuery{})
	require.NoError(t, err)
	require.Len(t, public.Data, 1)
	assert.Equal(t, models.PostStatusCompleted, public.Data[0].Status)
	assert.Equal(t, completed.ID, public.Data[0].ID)
}

func TestGetHidesPostsThatAreNotPublic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.create(t, u1)
	id := pending.ID.Hex()

	_, err := f.service.Get(ctx, nil, id)
	assert.True(t, models.IsNotFound(err))
	_, err = f.service.Get(ctx, u2, id)
	assert.True(t, models.IsNotFound(err))

	got, err := f.service.Get(ctx, u1, id)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)
	_, err = f.service.Get(ctx, admin, id)
	assert.NoError(t, err)

	_, err = f.service.Approve(ctx, admin, id)
	require.NoError(t, err)
	got, err = f.service.Get(ctx, nil, id)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusApproved, got.Status)

	_, err = f.service.Ban(ctx, admin, id, "spam")
	require.NoError(t, err)
	_, err = f.service.Get(ctx, u2, id)
	assert.True(t, models.IsNotFound(err))
	_, err = f.service.Get(ctx, u1, id)
	assert.NoError(t, err)
}

type failingComments struct {
	databases.CommentDatabase
}

func (failingComments) DeleteMany(ctx context.Context, filter models.CommentFilter) (int64, error) {
	return 0, errors.New("mocked-error")
}

func TestDeleteKeepsPostWhenCascadeFails(t *testing.T) {
	store := memdb.New()
	svc := moderation.NewService(store.Posts(), failingComments{store.Comments()}, nil, nil)
	ctx := context.Background()
	post, err := svc.Create(ctx, u1, validInput())
	require.NoError(t, err)

	assert.EqualError(t, svc.Delete(ctx, u1, post.ID.Hex()), "mocked-error")

	stored, err := svc.Get(ctx, u1, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, post.ID, stored.ID)
}
