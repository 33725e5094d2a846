package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
	postrepo "github.com/AlibekovAA/smalltalk-feed/internal/post/repository"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/service"
)

func seedFeed(f *fixture) {
	f.addPost(1, "first", 7, baseTime)
	f.addPost(2, "second", 8, baseTime.Add(time.Minute))
	f.addPost(3, "third", 7, baseTime.Add(2*time.Minute))
}

func TestFeedService_GetByID_ScenarioA(t *testing.T) {
	f := newFixture(t)
	f.addPost(1, "hi", 7, baseTime)
	svc := f.feedService(service.ViewerModeAuthor)

	view, err := svc.GetByID(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := domain.EnrichedView{ID: 1, Content: "hi", CreatedAt: baseTime, Author: "alice", LikeCount: 0, Liked: false}
	if view != want {
		t.Errorf("expected %+v, got %+v", want, view)
	}
}

func TestFeedService_AuthorLikeVisible_ScenarioB(t *testing.T) {
	f := newFixture(t)
	f.addPost(1, "hi", 7, baseTime)
	f.like(1, 7)
	svc := f.feedService(service.ViewerModeAuthor)
	ctx := context.Background()

	view, err := svc.GetByID(ctx, 1, nil)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !view.Liked || view.LikeCount != 1 {
		t.Errorf("expected liked=true likes=1, got %+v", view)
	}

	all, err := svc.ListAll(ctx, nil)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 || !all[0].Liked {
		t.Errorf("expected single liked view from ListAll, got %+v", all)
	}

	page, err := svc.ListPage(ctx, 1, nil)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(page) != 1 || !page[0].Liked {
		t.Errorf("expected single liked view from ListPage, got %+v", page)
	}

	byAuthor, err := svc.ListByAuthor(ctx, 7, nil)
	if err != nil {
		t.Fatalf("ListByAuthor: %v", err)
	}
	if len(byAuthor) != 1 || !byAuthor[0].Liked {
		t.Errorf("expected single liked view from ListByAuthor, got %+v", byAuthor)
	}
}

func TestFeedService_ListByAuthor_UnknownUser_ScenarioE(t *testing.T) {
	f := newFixture(t)
	svc := f.feedService(service.ViewerModeAuthor)

	views, err := svc.ListByAuthor(context.Background(), 999, nil)
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if views != nil {
		t.Errorf("expected no views, got %+v", views)
	}
}

func TestFeedService_ListByAuthor_NoPosts(t *testing.T) {
	f := newFixture(t)
	f.addPost(1, "hi", 7, baseTime)
	svc := f.feedService(service.ViewerModeAuthor)

	views, err := svc.ListByAuthor(context.Background(), 8, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(views) != 0 {
		t.Errorf("expected empty result, got %+v", views)
	}
}

func TestFeedService_ListAll_NewestFirst(t *testing.T) {
	f := newFixture(t)
	seedFeed(f)
	svc := f.feedService(service.ViewerModeAuthor)

	views, err := svc.ListAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var ids []int64
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	if !reflect.DeepEqual(ids, []int64{3, 2, 1}) {
		t.Errorf("expected ids [3 2 1], got %v", ids)
	}
	if views[1].Author != "bob" {
		t.Errorf("expected author bob for post 2, got %s", views[1].Author)
	}
}

func TestFeedService_ListPage_Clamping(t *testing.T) {
	f := newFixture(t)
	seedFeed(f)
	svc := f.feedService(service.ViewerModeAuthor)
	ctx := context.Background()

	first, err := svc.ListPage(ctx, 1, nil)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(first) != testPageSize {
		t.Fatalf("expected %d posts on page 1, got %d", testPageSize, len(first))
	}

	for _, page := range []int{0, -1, -100} {
		got, err := svc.ListPage(ctx, page, nil)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if !reflect.DeepEqual(first, got) {
			t.Errorf("page %d differs from page 1: %+v vs %+v", page, got, first)
		}
	}
}

func TestFeedService_ListPage_SecondAndBeyond(t *testing.T) {
	f := newFixture(t)
	seedFeed(f)
	svc := f.feedService(service.ViewerModeAuthor)
	ctx := context.Background()

	second, err := svc.ListPage(ctx, 2, nil)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(second) != 1 || second[0].ID != 1 {
		t.Errorf("expected only post 1 on page 2, got %+v", second)
	}

	empty, err := svc.ListPage(ctx, 10, nil)
	if err != nil {
		t.Fatalf("page 10: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty page, got %+v", empty)
	}
}

func TestFeedService_ListPage_StoreRejectsPage(t *testing.T) {
	f := newFixture(t)
	seedFeed(f)
	calls := 0
	f.posts.listPageFunc = func(ctx context.Context, page int) ([]domain.Post, error) {
		calls++
		return nil, postrepo.ErrInvalidPage
	}
	svc := f.feedService(service.ViewerModeAuthor)

	_, err := svc.ListPage(context.Background(), 1, nil)
	if !errors.Is(err, service.ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one store call, got %d", calls)
	}
}

func TestFeedService_ListPage_MisconfiguredPageSize(t *testing.T) {
	f := newFixture(t)
	seedFeed(f)
	f.posts.pageSize = 0
	svc := f.feedService(service.ViewerModeAuthor)

	_, err := svc.ListPage(context.Background(), 1, nil)
	if !errors.Is(err, service.ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
}

func TestFeedService_GetByID_NotFound(t *testing.T) {
	f := newFixture(t)
	svc := f.feedService(service.ViewerModeAuthor)

	view, err := svc.GetByID(context.Background(), 404, nil)
	if !errors.Is(err, service.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if view != (domain.EnrichedView{}) {
		t.Errorf("expected zero view, got %+v", view)
	}
}

func TestFeedService_RequestViewerMode(t *testing.T) {
	f := newFixture(t)
	f.addPost(1, "hi", 7, baseTime)
	f.like(1, 7)
	svc := f.feedService(service.ViewerModeRequest)
	ctx := context.Background()

	anon, err := svc.GetByID(ctx, 1, nil)
	if err != nil {
		t.Fatalf("anonymous GetByID: %v", err)
	}
	if anon.Liked {
		t.Error("expected liked=false for anonymous viewer")
	}

	asBob, err := svc.GetByID(ctx, 1, idPtr(8))
	if err != nil {
		t.Fatalf("bob GetByID: %v", err)
	}
	if asBob.Liked {
		t.Error("expected liked=false for bob")
	}

	f.like(1, 8)
	views, err := svc.ListAll(ctx, idPtr(8))
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(views) != 1 || !views[0].Liked || views[0].LikeCount != 2 {
		t.Errorf("expected bob to see his like, got %+v", views)
	}
}

func TestFeedService_UnknownModeFallsBackToAuthor(t *testing.T) {
	f := newFixture(t)
	svc := f.feedService(service.ViewerMode("bogus"))

	if svc.Mode() != service.ViewerModeAuthor {
		t.Errorf("expected author mode, got %s", svc.Mode())
	}
}
