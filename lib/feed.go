package lib

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"instavibe/format"
	"instavibe/shared"
	"instavibe/types"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const imageProbeWorkers = 4

var ErrFeedClosed = errors.New("feed is closed")

// FeedError is a failed load or delete. Msg is what the user sees.
type FeedError struct {
	Msg    string
	ApiErr *shared.ApiError
}

func (e *FeedError) Error() string {
	return e.Msg
}

func (e *FeedError) Unwrap() error {
	if e.ApiErr == nil {
		return nil
	}
	return e.ApiErr
}

type FeedEntry struct {
	Post        *shared.Post
	DisplayName string
	Posted      string
	Timestamp   string

	// ImageUrl is the post's image, or the placeholder once the image failed to load.
	ImageUrl    string
	ImageBroken bool
	ImageInfo   string
}

type imageStatus struct {
	broken bool
	info   string
}

// Feed is the client's view of GET /files.
type Feed struct {
	mu      sync.Mutex
	client  types.ApiClient
	aliases UsernameAliases

	posts  []*shared.Post
	images map[string]imageStatus

	loadErr string
	notice  string

	// every refresh is tagged; a response older than the newest applied one is dropped
	issued  uint64
	applied uint64

	closed  bool
	changes chan struct{}
}

func NewFeed(client types.ApiClient, aliases UsernameAliases) *Feed {
	if aliases == nil {
		aliases = NewUsernameAliases(nil)
	}
	return &Feed{
		client:  client,
		aliases: aliases,
		images:  make(map[string]imageStatus),
		changes: make(chan struct{}, 1),
	}
}

// Changes fires after any update to what the feed would display.
func (f *Feed) Changes() <-chan struct{} {
	return f.changes
}

func (f *Feed) notify() {
	select {
	case f.changes <- struct{}{}:
	default:
	}
}

func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFeedClosed
	}
	f.issued++
	seq := f.issued
	f.mu.Unlock()
	f.notify()

	posts, apiErr := f.client.ListPosts(ctx)

	f.mu.Lock()
	defer f.notify()
	defer f.mu.Unlock()

	if f.closed {
		log.Printf("feed closed, dropping refresh %d", seq)
		return ErrFeedClosed
	}

	if seq < f.applied {
		log.Printf("dropping stale refresh %d (already applied %d)", seq, f.applied)
		return nil
	}
	f.applied = seq

	if apiErr != nil {
		log.Printf("error loading posts: %v", apiErr)
		f.posts = nil
		f.loadErr = FeedErrorMessage(apiErr)
		return &FeedError{Msg: f.loadErr, ApiErr: apiErr}
	}

	f.posts = posts
	f.loadErr = ""

	live := make(map[string]bool, len(posts))
	for _, p := range posts {
		live[p.Id] = true
	}
	for id := range f.images {
		if !live[id] {
			delete(f.images, id)
		}
	}

	return nil
}

// Delete removes a post on the server, then reloads. A failed delete leaves the list as it was.
func (f *Feed) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFeedClosed
	}
	f.notice = ""
	f.mu.Unlock()

	apiErr := f.client.DeletePost(ctx, id)
	if apiErr != nil {
		log.Printf("error deleting post %s: %v", id, apiErr)
		f.mu.Lock()
		f.notice = MsgFailedToDelete
		f.mu.Unlock()
		f.notify()
		return &FeedError{Msg: MsgFailedToDelete, ApiErr: apiErr}
	}

	return f.Refresh(ctx)
}

// Watch refreshes once on start and again every time trigger moves, until ctx is done.
func (f *Feed) Watch(ctx context.Context, trigger *RefreshTrigger) {
	ch, unsubscribe := trigger.Subscribe()
	defer unsubscribe()

	last := trigger.Value()
	if err := f.Refresh(ctx); errors.Is(err, ErrFeedClosed) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case v := <-ch:
			if v == last {
				continue
			}
			last = v
			if err := f.Refresh(ctx); errors.Is(err, ErrFeedClosed) {
				return
			}
		}
	}
}

// ProbeImages checks every unchecked post image. Failures only mark that one entry.
func (f *Feed) ProbeImages(ctx context.Context) {
	f.mu.Lock()
	var pending []*shared.Post
	for _, p := range f.posts {
		if _, ok := f.images[p.Id]; !ok {
			pending = append(pending, p)
		}
	}
	f.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	jobs := make(chan *shared.Post)
	var wg sync.WaitGroup
	for i := 0; i < imageProbeWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				status := f.probe(ctx, p)
				f.mu.Lock()
				if !f.closed {
					f.images[p.Id] = status
				}
				f.mu.Unlock()
			}
		}()
	}

	for _, p := range pending {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	f.notify()
}

func (f *Feed) probe(ctx context.Context, p *shared.Post) imageStatus {
	if strings.TrimSpace(p.ImageUrl) == "" {
		return imageStatus{broken: true}
	}
	header, apiErr := f.client.FetchImageHeader(ctx, p.ImageUrl)
	if apiErr != nil {
		log.Printf("image for post %s failed to load: %v", p.Id, apiErr)
		return imageStatus{broken: true}
	}
	return imageStatus{info: fmt.Sprintf("%s %dx%d", header.Format, header.Width, header.Height)}
}

func (f *Feed) Entries() []FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := make([]FeedEntry, 0, len(f.posts))
	for _, p := range f.posts {
		entry := FeedEntry{
			Post:        p,
			DisplayName: f.aliases.Display(p.Username),
			Posted:      format.Time(p.UploadedAt.Time),
			Timestamp:   format.Timestamp(p.UploadedAt.Time),
			ImageUrl:    p.ImageUrl,
		}
		if status, ok := f.images[p.Id]; ok {
			entry.ImageInfo = status.info
			if status.broken {
				entry.ImageBroken = true
				entry.ImageUrl = PlaceholderImageUrl
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// Search fuzzy-filters the displayed entries on username, display name and caption.
func (f *Feed) Search(q string) []FeedEntry {
	entries := f.Entries()
	q = strings.TrimSpace(q)
	if q == "" {
		return entries
	}

	var res []FeedEntry
	for _, e := range entries {
		if fuzzy.MatchFold(q, e.Post.Username) || fuzzy.MatchFold(q, e.DisplayName) || fuzzy.MatchFold(q, e.Post.Caption) {
			res = append(res, e)
		}
	}
	return res
}

func (f *Feed) Posts() []*shared.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*shared.Post(nil), f.posts...)
}

// Loading is true while the newest refresh hasn't come back.
func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applied < f.issued
}

func (f *Feed) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadErr
}

// Notice is the last action failure, e.g. a delete that didn't go through.
func (f *Feed) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Close stops the feed from taking any further updates.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
