package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/service"
	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
)

func TestFeedAssembler_Assemble_NoLikes(t *testing.T) {
	f := newFixture(t)
	post := f.addPost(1, "hi", 7, baseTime)

	view, err := f.assembler.Assemble(context.Background(), post, idPtr(7))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := domain.EnrichedView{ID: 1, Content: "hi", CreatedAt: baseTime, Author: "alice", LikeCount: 0, Liked: false}
	if view != want {
		t.Errorf("expected %+v, got %+v", want, view)
	}
}

func TestFeedAssembler_Assemble_NilViewerNeverLiked(t *testing.T) {
	f := newFixture(t)
	post := f.addPost(1, "hi", 7, baseTime)
	f.like(1, 7)
	f.like(1, 8)

	view, err := f.assembler.Assemble(context.Background(), post, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if view.Liked {
		t.Error("expected liked=false without a viewer")
	}
	if view.LikeCount != 2 {
		t.Errorf("expected 2 likes, got %d", view.LikeCount)
	}
}

func TestFeedAssembler_Assemble_Idempotent(t *testing.T) {
	f := newFixture(t)
	post := f.addPost(1, "hi", 7, baseTime)
	f.like(1, 8)

	first, err := f.assembler.Assemble(context.Background(), post, idPtr(8))
	if err != nil {
		t.Fatalf("first assemble: %v", err)
	}
	second, err := f.assembler.Assemble(context.Background(), post, idPtr(8))
	if err != nil {
		t.Fatalf("second assemble: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("assemble not idempotent: %+v vs %+v", first, second)
	}
}

func TestFeedAssembler_Assemble_AuthorMissing(t *testing.T) {
	f := newFixture(t)
	post := f.addPost(1, "orphan", 42, baseTime)

	view, err := f.assembler.Assemble(context.Background(), post, nil)
	if !errors.Is(err, service.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
	if view != (domain.EnrichedView{}) {
		t.Errorf("expected zero view on error, got %+v", view)
	}
}

func TestFeedAssembler_Assemble_LikeStoreFailure(t *testing.T) {
	f := newFixture(t)
	post := f.addPost(1, "hi", 7, baseTime)
	f.likes.countForPostFunc = func(ctx context.Context, postID int64) (int64, error) {
		return 0, errors.New("redis down")
	}

	_, err := f.assembler.Assemble(context.Background(), post, nil)
	if err == nil {
		t.Fatal("expected error from like store")
	}
	if errors.Is(err, service.ErrAuthorNotFound) {
		t.Error("like store failure must not be reported as a missing author")
	}
}

func TestFeedAssembler_AssembleMany_MatchesAssemble(t *testing.T) {
	f := newFixture(t)
	posts := []domain.Post{
		f.addPost(1, "one", 7, baseTime),
		f.addPost(2, "two", 8, baseTime.Add(time.Minute)),
		f.addPost(3, "three", 7, baseTime.Add(2*time.Minute)),
	}
	f.like(1, 7)
	f.like(1, 8)
	f.like(2, 7)
	f.like(3, 8)

	viewers := []*userdomain.ID{idPtr(7), nil, idPtr(8)}

	batch, err := f.assembler.AssembleMany(context.Background(), posts, viewers)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(batch) != len(posts) {
		t.Fatalf("expected %d views, got %d", len(posts), len(batch))
	}

	for i, p := range posts {
		single, err := f.assembler.Assemble(context.Background(), p, viewers[i])
		if err != nil {
			t.Fatalf("assemble post %d: %v", p.ID, err)
		}
		if !reflect.DeepEqual(single, batch[i]) {
			t.Errorf("post %d: batch %+v differs from single %+v", p.ID, batch[i], single)
		}
	}
}

func TestFeedAssembler_AssembleMany_NilViewers(t *testing.T) {
	f := newFixture(t)
	posts := []domain.Post{f.addPost(1, "one", 7, baseTime)}
	f.like(1, 7)

	views, err := f.assembler.AssembleMany(context.Background(), posts, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if views[0].Liked {
		t.Error("expected liked=false with no viewers")
	}
	if views[0].LikeCount != 1 {
		t.Errorf("expected 1 like, got %d", views[0].LikeCount)
	}
}

func TestFeedAssembler_AssembleMany_Empty(t *testing.T) {
	f := newFixture(t)

	views, err := f.assembler.AssembleMany(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", views)
	}
}

func TestFeedAssembler_AssembleMany_AuthorMissing(t *testing.T) {
	f := newFixture(t)
	posts := []domain.Post{
		f.addPost(1, "one", 7, baseTime),
		f.addPost(2, "orphan", 99, baseTime),
	}

	_, err := f.assembler.AssembleMany(context.Background(), posts, nil)
	if !errors.Is(err, service.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
}

func TestFeedAssembler_AssembleMany_ViewerLengthMismatch(t *testing.T) {
	f := newFixture(t)
	posts := []domain.Post{f.addPost(1, "one", 7, baseTime)}

	_, err := f.assembler.AssembleMany(context.Background(), posts, []*userdomain.ID{idPtr(7), idPtr(8)})
	if err == nil {
		t.Fatal("expected error for mismatched viewers")
	}
}

func TestFeedAssembler_UsesDisplayName(t *testing.T) {
	f := newFixture(t)
	f.users.users[9] = userdomain.User{ID: 9, Username: "carol", DisplayName: "Carol Danvers", CreatedAt: baseTime}
	f.users.users[10] = userdomain.User{ID: 10, Username: "dave", CreatedAt: baseTime}
	carols := f.addPost(1, "hi", 9, baseTime)
	daves := f.addPost(2, "yo", 10, baseTime.Add(time.Minute))

	view, err := f.assembler.Assemble(context.Background(), carols, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if view.Author != "Carol Danvers" {
		t.Errorf("expected display name, got %q", view.Author)
	}

	views, err := f.assembler.AssembleMany(context.Background(), []domain.Post{carols, daves}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if views[0].Author != "Carol Danvers" {
		t.Errorf("batch: expected display name, got %q", views[0].Author)
	}
	if views[1].Author != "dave" {
		t.Errorf("batch: expected username fallback, got %q", views[1].Author)
	}
}
