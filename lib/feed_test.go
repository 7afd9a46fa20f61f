package lib

import (
	"context"
	"sync"
	"testing"
	"time"

	"instavibe/api"
	"instavibe/shared"
	"instavibe/testutil/fakebackend"
	"instavibe/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(id, username, caption string) *shared.Post {
	return &shared.Post{
		Id:         id,
		Username:   username,
		Caption:    caption,
		ImageUrl:   "https://img.example/" + id + ".jpg",
		UploadedAt: shared.NewTimestamp(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
	}
}

func postIds(posts []*shared.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.Id)
	}
	return ids
}

func TestRefreshLoadsPostsInServerOrder(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	backend.Seed(post("p3", "carol", "newest"), post("p2", "bob", "middle"), post("p1", "alice", "oldest"))

	feed := NewFeed(api.New(backend.URL()), nil)
	require.NoError(t, feed.Refresh(context.Background()))

	assert.Equal(t, []string{"p3", "p2", "p1"}, postIds(feed.Posts()))
	assert.Empty(t, feed.Err())
	assert.False(t, feed.Loading())
}

func TestRefreshAcceptsZonelessUploadTimes(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	backend.Seed(post("p2", "bob", "newer"), post("p1", "alice", "older"))
	backend.Configure(func(b *fakebackend.Backend) { b.NaiveTimes = true })

	feed := NewFeed(api.New(backend.URL()), nil)
	require.NoError(t, feed.Refresh(context.Background()))

	assert.Empty(t, feed.Err())
	assert.Equal(t, []string{"p2", "p1"}, postIds(feed.Posts()))

	entries := feed.Entries()
	require.Len(t, entries, 2)
	assert.True(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Equal(entries[0].Post.UploadedAt.Time))
	assert.NotEqual(t, "unknown time", entries[0].Timestamp)
	assert.NotEmpty(t, entries[0].Posted)
}

func TestRefreshEmptyList(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()

	feed := NewFeed(api.New(backend.URL()), nil)
	require.NoError(t, feed.Refresh(context.Background()))

	assert.Empty(t, feed.Entries())
	assert.Empty(t, feed.Err())
}

func TestRefreshRejectsNonListBody(t *testing.T) {
	for _, body := range []string{`{"posts":[]}`, `"hello"`, `null`, `not json`} {
		t.Run(body, func(t *testing.T) {
			backend := fakebackend.New()
			defer backend.Close()
			backend.Configure(func(b *fakebackend.Backend) { b.ListBody = body })

			feed := NewFeed(api.New(backend.URL()), nil)
			err := feed.Refresh(context.Background())

			var feedErr *FeedError
			require.ErrorAs(t, err, &feedErr)
			assert.Equal(t, MsgInvalidFormat, feedErr.Msg)
			assert.Equal(t, MsgInvalidFormat, feed.Err())
			assert.Empty(t, feed.Posts())
		})
	}
}

func TestRefreshTimeout(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	backend.Seed(post("p1", "alice", "hi"))
	backend.Configure(func(b *fakebackend.Backend) { b.ListDelay = 5 * time.Second })

	feed := NewFeed(api.New(backend.URL()), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := feed.Refresh(ctx)

	var feedErr *FeedError
	require.ErrorAs(t, err, &feedErr)
	assert.Equal(t, MsgFailedToLoad, feedErr.Msg)
	assert.Equal(t, shared.ApiErrorTypeNetwork, feedErr.ApiErr.Type)
	assert.Empty(t, feed.Posts())
}

func TestRefreshServerErrorClearsPosts(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	backend.Seed(post("p1", "alice", "hi"))

	feed := NewFeed(api.New(backend.URL()), nil)
	require.NoError(t, feed.Refresh(context.Background()))
	require.Len(t, feed.Posts(), 1)

	backend.Configure(func(b *fakebackend.Backend) { b.ListStatus = 503 })
	require.Error(t, feed.Refresh(context.Background()))
	assert.Empty(t, feed.Posts())
	assert.Equal(t, MsgFailedToLoad, feed.Err())
}

func TestDeleteRefreshesOnSuccess(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	backend.Seed(post("p2", "bob", "second"), post("p1", "alice", "first"))

	feed := NewFeed(api.New(backend.URL()), nil)
	ctx := context.Background()
	require.NoError(t, feed.Refresh(ctx))

	require.NoError(t, feed.Delete(ctx, "p2"))

	assert.Equal(t, []string{"p1"}, postIds(feed.Posts()))
	assert.Equal(t, 1, backend.Count("DELETE /files/{id}"))
	assert.Equal(t, 2, backend.Count("GET /files"))
	assert.Empty(t, feed.Notice())
}

func TestDeleteFailureLeavesListUnchanged(t *testing.T) {
	for _, tt := range []struct {
		name  string
		setup func(b *fakebackend.Backend)
		id    string
	}{
		{"server error", func(b *fakebackend.Backend) { b.DeleteStatus = 500 }, "p1"},
		{"unknown id", func(b *fakebackend.Backend) {}, "missing"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			backend := fakebackend.New()
			defer backend.Close()
			backend.Seed(post("p2", "bob", "second"), post("p1", "alice", "first"))

			feed := NewFeed(api.New(backend.URL()), nil)
			ctx := context.Background()
			require.NoError(t, feed.Refresh(ctx))
			backend.Configure(tt.setup)

			err := feed.Delete(ctx, tt.id)
			var feedErr *FeedError
			require.ErrorAs(t, err, &feedErr)
			assert.Equal(t, MsgFailedToDelete, feedErr.Msg)

			assert.Equal(t, []string{"p2", "p1"}, postIds(feed.Posts()))
			assert.Equal(t, MsgFailedToDelete, feed.Notice())
			assert.Equal(t, 1, backend.Count("GET /files"))
		})
	}
}

type pendingList struct {
	reply chan []*shared.Post
}

// blockingLister hands every ListPosts call to the test so it can pick the completion order.
func blockingLister(calls chan<- pendingList) func(ctx context.Context) ([]*shared.Post, *shared.ApiError) {
	return func(ctx context.Context) ([]*shared.Post, *shared.ApiError) {
		call := pendingList{reply: make(chan []*shared.Post, 1)}
		calls <- call
		return <-call.reply, nil
	}
}

func TestStaleRefreshIsDropped(t *testing.T) {
	calls := make(chan pendingList)
	feed := NewFeed(&fakeClient{listFn: blockingLister(calls)}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		feed.Refresh(ctx)
	}()
	first := <-calls

	wg.Add(1)
	doneSecond := make(chan struct{})
	go func() {
		defer wg.Done()
		defer close(doneSecond)
		feed.Refresh(ctx)
	}()
	second := <-calls

	assert.True(t, feed.Loading())

	second.reply <- []*shared.Post{post("new", "bob", "fresh")}
	<-doneSecond
	assert.Equal(t, []string{"new"}, postIds(feed.Posts()))

	first.reply <- []*shared.Post{post("old", "alice", "stale")}
	wg.Wait()

	assert.Equal(t, []string{"new"}, postIds(feed.Posts()))
	assert.False(t, feed.Loading())
}

func TestNoUpdatesAfterClose(t *testing.T) {
	calls := make(chan pendingList)
	feed := NewFeed(&fakeClient{listFn: blockingLister(calls)}, nil)

	done := make(chan error, 1)
	go func() {
		done <- feed.Refresh(context.Background())
	}()
	pending := <-calls

	feed.Close()
	pending.reply <- []*shared.Post{post("p1", "alice", "late")}

	assert.ErrorIs(t, <-done, ErrFeedClosed)
	assert.Empty(t, feed.Posts())
	assert.ErrorIs(t, feed.Refresh(context.Background()), ErrFeedClosed)
	assert.ErrorIs(t, feed.Delete(context.Background(), "p1"), ErrFeedClosed)
}

func TestWatchRefreshesOnTrigger(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()

	feed := NewFeed(api.New(backend.URL()), nil)
	trigger := NewRefreshTrigger()

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		feed.Watch(ctx, trigger)
	}()

	require.Eventually(t, func() bool { return backend.Count("GET /files") == 1 }, 2*time.Second, 10*time.Millisecond)

	backend.Seed(post("p1", "alice", "hi"))
	trigger.Bump()

	require.Eventually(t, func() bool { return len(feed.Posts()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, backend.Count("GET /files"))

	cancel()
	<-stopped
}

func TestComposerSuccessRefreshesWatchedFeed(t *testing.T) {
	backend := fakebackend.New()
	defer backend.Close()
	client := api.New(backend.URL())

	trigger := NewRefreshTrigger()
	feed := NewFeed(client, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Watch(ctx, trigger)

	require.Eventually(t, func() bool { return backend.Count("GET /files") == 1 }, 2*time.Second, 10*time.Millisecond)

	composer := NewComposer(client, ComposerOptions{Trigger: trigger})
	composer.SetUsername("john_doe")
	composer.SetCaption("beach day")
	composer.AttachCapture(newCapturedPhoto(t))
	_, err := composer.Submit(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(feed.Entries()) == 1 }, 2*time.Second, 10*time.Millisecond)
	entry := feed.Entries()[0]
	assert.Equal(t, "anjali", entry.DisplayName)
	assert.Equal(t, "john_doe", entry.Post.Username)
	assert.Equal(t, "beach day", entry.Post.Caption)
}

func TestEntriesApplyAliases(t *testing.T) {
	client := &fakeClient{listFn: func(ctx context.Context) ([]*shared.Post, *shared.ApiError) {
		return []*shared.Post{post("p1", "jane_smith", "a"), post("p2", "stranger", "b")}, nil
	}}
	feed := NewFeed(client, NewUsernameAliases(map[string]string{"stranger": "Friend"}))
	require.NoError(t, feed.Refresh(context.Background()))

	entries := feed.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "shivani", entries[0].DisplayName)
	assert.Equal(t, "jane_smith", entries[0].Post.Username)
	assert.Equal(t, "Friend", entries[1].DisplayName)
}

func TestSearch(t *testing.T) {
	client := &fakeClient{listFn: func(ctx context.Context) ([]*shared.Post, *shared.ApiError) {
		return []*shared.Post{
			post("p1", "travel_buddy", "mountains at dawn"),
			post("p2", "bob", "coffee"),
			post("p3", "carol", "mountain bike"),
		}, nil
	}}
	feed := NewFeed(client, nil)
	require.NoError(t, feed.Refresh(context.Background()))

	assert.Len(t, feed.Search(""), 3)

	ids := func(entries []FeedEntry) []string {
		var res []string
		for _, e := range entries {
			res = append(res, e.Post.Id)
		}
		return res
	}
	assert.Equal(t, []string{"p1", "p3"}, ids(feed.Search("mountain")))
	assert.Equal(t, []string{"p1"}, ids(feed.Search("shruti")))
	assert.Equal(t, []string{"p2"}, ids(feed.Search("COFFEE")))
}

func TestProbeImagesMarksOnlyBrokenEntries(t *testing.T) {
	client := &fakeClient{
		listFn: func(ctx context.Context) ([]*shared.Post, *shared.ApiError) {
			broken := post("p2", "bob", "broken")
			noUrl := post("p3", "carol", "no url")
			noUrl.ImageUrl = ""
			return []*shared.Post{post("p1", "alice", "ok"), broken, noUrl}, nil
		},
		headerFn: func(ctx context.Context, url string) (*types.ImageHeader, *shared.ApiError) {
			if url == "https://img.example/p2.jpg" {
				return nil, &shared.ApiError{Type: shared.ApiErrorTypeOther, Status: 404}
			}
			return &types.ImageHeader{Format: "jpeg", Width: 640, Height: 480}, nil
		},
	}
	feed := NewFeed(client, nil)
	require.NoError(t, feed.Refresh(context.Background()))
	feed.ProbeImages(context.Background())

	entries := feed.Entries()
	require.Len(t, entries, 3)

	assert.False(t, entries[0].ImageBroken)
	assert.Equal(t, "https://img.example/p1.jpg", entries[0].ImageUrl)
	assert.Equal(t, "jpeg 640x480", entries[0].ImageInfo)

	assert.True(t, entries[1].ImageBroken)
	assert.Equal(t, PlaceholderImageUrl, entries[1].ImageUrl)
	assert.Equal(t, "bob", entries[1].Post.Username)

	assert.True(t, entries[2].ImageBroken)
	assert.Equal(t, PlaceholderImageUrl, entries[2].ImageUrl)
}
