package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pulse-social/pulse-social/internal/apperrors"
)

func postIDs(page *FeedPage) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(page.Posts))
	for _, p := range page.Posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestComposeFeedMergesFollowedAndOwnPosts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	carol := env.addUser(t, "carol")

	if err := env.graph.Follow(ctx, alice, bob); err != nil {
		t.Fatalf("follow: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	p1 := env.addPost(t, alice, "alice early", base.Add(1*time.Minute))
	p10 := env.addPost(t, bob, "bob first", base.Add(3*time.Minute))
	p11 := env.addPost(t, bob, "bob second", base.Add(5*time.Minute))
	env.addPost(t, carol, "carol post", base.Add(4*time.Minute)) // not followed

	page, err := env.feed.ComposeFeed(ctx, alice, 1, 20)
	if err != nil {
		t.Fatalf("compose feed: %v", err)
	}

	got := postIDs(page)
	want := []uuid.UUID{p11, p10, p1}
	if len(got) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestComposeFeedWithoutFollowsShowsOwnPosts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	carol := env.addUser(t, "carol")
	dave := env.addUser(t, "dave")

	p20 := env.addPost(t, carol, "carol alone", time.Now())
	env.addPost(t, dave, "dave post", time.Now())

	page, err := env.feed.ComposeFeed(ctx, carol, 1, 20)
	if err != nil {
		t.Fatalf("compose feed: %v", err)
	}
	if len(page.Posts) != 1 || page.Posts[0].ID != p20 {
		t.Fatalf("expected only carol's own post, got %v", postIDs(page))
	}
}

func TestComposeFeedExcludesDeactivatedPosts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.addUser(t, "bob")

	keep := env.addPost(t, bob, "keep", time.Now().Add(-time.Minute))
	gone := env.addPost(t, bob, "gone", time.Now())

	if err := env.feed.Deactivate(ctx, bob, gone); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// The author gets no special visibility into their own deactivated posts.
	page, err := env.feed.ComposeFeed(ctx, bob, 1, 20)
	if err != nil {
		t.Fatalf("compose feed: %v", err)
	}
	if len(page.Posts) != 1 || page.Posts[0].ID != keep {
		t.Fatalf("deactivated post leaked into feed: %v", postIDs(page))
	}

	if _, err := env.feed.GetPost(ctx, gone); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("deactivated post should read as not found, got %v", err)
	}
}

func TestComposeFeedTieBreaksByID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.addUser(t, "bob")

	at := time.Now().Truncate(time.Second)
	a := env.addPost(t, bob, "first", at)
	b := env.addPost(t, bob, "second", at)

	page, err := env.feed.ComposeFeed(ctx, bob, 1, 20)
	if err != nil {
		t.Fatalf("compose feed: %v", err)
	}
	if len(page.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(page.Posts))
	}

	// Equal timestamps order by id descending, so the larger id comes first.
	first, second := page.Posts[0].ID, page.Posts[1].ID
	if first.String() < second.String() {
		t.Fatalf("tie-break not id-descending: %s before %s", first, second)
	}
	if (first != a && first != b) || first == second {
		t.Fatalf("unexpected posts in feed: %v", postIDs(page))
	}
}

func TestComposeFeedPagination(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.addUser(t, "bob")

	base := time.Now().Add(-time.Hour)
	var all []uuid.UUID
	for i := 0; i < 5; i++ {
		id := env.addPost(t, bob, "post", base.Add(time.Duration(i)*time.Minute))
		all = append(all, id)
	}

	page1, err := env.feed.ComposeFeed(ctx, bob, 1, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	page2, err := env.feed.ComposeFeed(ctx, bob, 2, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}

	if len(page1.Posts) != 2 || len(page2.Posts) != 2 {
		t.Fatalf("expected 2 posts per page, got %d and %d", len(page1.Posts), len(page2.Posts))
	}
	// Newest first, pages contiguous.
	if page1.Posts[0].ID != all[4] || page1.Posts[1].ID != all[3] {
		t.Fatalf("page 1 out of order: %v", postIDs(page1))
	}
	if page2.Posts[0].ID != all[2] || page2.Posts[1].ID != all[1] {
		t.Fatalf("page 2 out of order: %v", postIDs(page2))
	}

	// Beyond the last page is empty, not an error.
	page4, err := env.feed.ComposeFeed(ctx, bob, 4, 2)
	if err != nil {
		t.Fatalf("page 4: %v", err)
	}
	if len(page4.Posts) != 0 {
		t.Fatalf("expected empty page, got %v", postIDs(page4))
	}
}

func TestComposeFeedNormalizesPagination(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.addUser(t, "bob")
	env.addPost(t, bob, "post", time.Now())

	page, err := env.feed.ComposeFeed(ctx, bob, 0, -5)
	if err != nil {
		t.Fatalf("compose feed: %v", err)
	}
	if page.Page != 1 || page.Limit != defaultPageSize {
		t.Fatalf("expected page 1 limit %d, got page %d limit %d", defaultPageSize, page.Page, page.Limit)
	}

	page, err = env.feed.ComposeFeed(ctx, bob, 1, 10_000)
	if err != nil {
		t.Fatalf("compose feed: %v", err)
	}
	if page.Limit != maxPageSize {
		t.Fatalf("expected limit capped at %d, got %d", maxPageSize, page.Limit)
	}
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.addUser(t, "bob")

	if _, err := env.feed.CreatePost(ctx, bob, &CreatePostRequest{Content: ""}); !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("empty content should fail validation, got %v", err)
	}
	long := strings.Repeat("x", 281)
	if _, err := env.feed.CreatePost(ctx, bob, &CreatePostRequest{Content: long}); !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("oversized content should fail validation, got %v", err)
	}
	if _, err := env.feed.CreatePost(ctx, bob, &CreatePostRequest{Content: "hi", Category: "rant"}); !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("unknown category should fail validation, got %v", err)
	}

	// 280 runes of multi-byte text is within the limit.
	ok := strings.Repeat("é", 280)
	post, err := env.feed.CreatePost(ctx, bob, &CreatePostRequest{Content: ok})
	if err != nil {
		t.Fatalf("280-rune post: %v", err)
	}
	if post.Category != "general" {
		t.Fatalf("expected default category general, got %s", post.Category)
	}
}

func TestCreatePostUnknownAuthor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.feed.CreatePost(ctx, uuid.New(), &CreatePostRequest{Content: "hi"})
	if !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found for unknown author, got %v", err)
	}
}

func TestDeactivateIsAuthorOnlyAndOneWay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	post := env.addPost(t, bob, "hello", time.Now())

	if err := env.feed.Deactivate(ctx, alice, post); !apperrors.Is(err, apperrors.KindInvalidOperation) {
		t.Fatalf("non-author deactivate should be rejected, got %v", err)
	}
	if err := env.feed.Deactivate(ctx, bob, post); err != nil {
		t.Fatalf("author deactivate: %v", err)
	}
	// A second deactivate finds nothing: the post is already gone from reads.
	if err := env.feed.Deactivate(ctx, bob, post); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("repeat deactivate should be not found, got %v", err)
	}
}
