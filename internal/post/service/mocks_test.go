package service_test

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/clock"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/jwtverify"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	likedomain "github.com/AlibekovAA/smalltalk-feed/internal/like/domain"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
	postrepo "github.com/AlibekovAA/smalltalk-feed/internal/post/repository"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/service"
	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
	userrepo "github.com/AlibekovAA/smalltalk-feed/internal/user/repository"
)

const (
	testSecret   = "test-secret-key-must-be-at-least-32-bytes-long"
	testIssuer   = "com.kennethrdzg"
	testPageSize = 2
)

type mockUserRepo struct {
	users map[userdomain.ID]userdomain.User

	findByIDFunc       func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
	findByIDsFunc      func(ctx context.Context, ids []userdomain.ID) (map[userdomain.ID]userdomain.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByIDs(ctx context.Context, ids []userdomain.ID) (map[userdomain.ID]userdomain.User, error) {
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids)
	}
	out := make(map[userdomain.ID]userdomain.User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type mockPostRepo struct {
	posts    map[int64]domain.Post
	nextID   int64
	pageSize int

	listPageFunc func(ctx context.Context, page int) ([]domain.Post, error)
	createFunc   func(ctx context.Context, post domain.Post) (domain.Post, error)
}

func (m *mockPostRepo) sorted(filter func(domain.Post) bool) []domain.Post {
	out := make([]domain.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if filter == nil || filter(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *mockPostRepo) List(ctx context.Context) ([]domain.Post, error) {
	return m.sorted(nil), nil
}

func (m *mockPostRepo) ListPage(ctx context.Context, page int) ([]domain.Post, error) {
	if m.listPageFunc != nil {
		return m.listPageFunc(ctx, page)
	}
	offset, err := postrepo.PageOffset(page, m.pageSize)
	if err != nil {
		return nil, err
	}
	all := m.sorted(nil)
	if offset >= len(all) {
		return []domain.Post{}, nil
	}
	end := offset + m.pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id int64) (domain.Post, error) {
	if p, ok := m.posts[id]; ok {
		return p, nil
	}
	return domain.Post{}, postrepo.ErrPostNotFound
}

func (m *mockPostRepo) ListByAuthor(ctx context.Context, authorID userdomain.ID) ([]domain.Post, error) {
	return m.sorted(func(p domain.Post) bool { return p.AuthorID == authorID }), nil
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, post)
	}
	m.nextID++
	post.ID = m.nextID
	m.posts[post.ID] = post
	return post, nil
}

type mockLikeRepo struct {
	likes map[likedomain.Like]struct{}

	countForPostFunc func(ctx context.Context, postID int64) (int64, error)
}

func (m *mockLikeRepo) CountForPost(ctx context.Context, postID int64) (int64, error) {
	if m.countForPostFunc != nil {
		return m.countForPostFunc(ctx, postID)
	}
	var n int64
	for l := range m.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (m *mockLikeRepo) IsLikedBy(ctx context.Context, postID int64, userID userdomain.ID) (bool, error) {
	_, ok := m.likes[likedomain.Like{PostID: postID, UserID: userID}]
	return ok, nil
}

func (m *mockLikeRepo) CountForPosts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(postIDs))
	for _, id := range postIDs {
		n, err := m.CountForPost(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, nil
}

func (m *mockLikeRepo) LikedBy(ctx context.Context, likes []likedomain.Like) (map[likedomain.Like]bool, error) {
	out := make(map[likedomain.Like]bool, len(likes))
	for _, l := range likes {
		_, out[l] = m.likes[l]
	}
	return out, nil
}

func (m *mockLikeRepo) Like(ctx context.Context, like likedomain.Like) error {
	m.likes[like] = struct{}{}
	return nil
}

func (m *mockLikeRepo) Unlike(ctx context.Context, like likedomain.Like) error {
	delete(m.likes, like)
	return nil
}

type mockPublisher struct {
	events      []domain.CreatedEvent
	publishFunc func(ctx context.Context, event domain.CreatedEvent) error
}

func (m *mockPublisher) PublishPostCreated(ctx context.Context, event domain.CreatedEvent) error {
	m.events = append(m.events, event)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, event)
	}
	return nil
}

type fixture struct {
	users     *mockUserRepo
	posts     *mockPostRepo
	likes     *mockLikeRepo
	publisher *mockPublisher
	clock     *clock.MockClock
	log       *logger.Logger
	assembler *service.FeedAssembler
}

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newFixture seeds alice (7) and bob (8) with no posts and no likes.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := &mockUserRepo{users: map[userdomain.ID]userdomain.User{
		7: {ID: 7, Username: "alice", DisplayName: "alice", CreatedAt: baseTime},
		8: {ID: 8, Username: "bob", DisplayName: "bob", CreatedAt: baseTime},
	}}
	posts := &mockPostRepo{posts: map[int64]domain.Post{}, pageSize: testPageSize}
	likes := &mockLikeRepo{likes: map[likedomain.Like]struct{}{}}
	log := logger.NewWithWriter(&bytes.Buffer{}, "feed-test", "debug")

	return &fixture{
		users:     users,
		posts:     posts,
		likes:     likes,
		publisher: &mockPublisher{},
		clock:     clock.NewMockClock(baseTime),
		log:       log,
		assembler: service.NewFeedAssembler(users, likes, log),
	}
}

func (f *fixture) addPost(id int64, content string, author userdomain.ID, at time.Time) domain.Post {
	p := domain.Post{ID: id, Content: content, CreatedAt: at, AuthorID: author}
	f.posts.posts[id] = p
	if id > f.posts.nextID {
		f.posts.nextID = id
	}
	return p
}

func (f *fixture) like(postID int64, userID userdomain.ID) {
	f.likes.likes[likedomain.Like{PostID: postID, UserID: userID}] = struct{}{}
}

func (f *fixture) feedService(mode service.ViewerMode) *service.FeedService {
	return service.NewFeedService(f.posts, f.users, f.assembler, mode, f.log)
}

func (f *fixture) gateway(policy service.ExpiryPolicy) *service.IngestionGateway {
	return service.NewIngestionGateway(
		f.users,
		f.posts,
		jwtverify.NewVerifier([]byte(testSecret), testIssuer),
		f.assembler,
		f.publisher,
		policy,
		f.clock,
		f.log,
	)
}

func (f *fixture) likeService() *service.LikeService {
	return service.NewLikeService(
		f.users,
		f.posts,
		f.likes,
		jwtverify.NewVerifier([]byte(testSecret), testIssuer),
		f.assembler,
		f.log,
	)
}

func signToken(t *testing.T, username string, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":      testIssuer,
		"username": username,
		"exp":      exp.Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func idPtr(id userdomain.ID) *userdomain.ID {
	return &id
}
