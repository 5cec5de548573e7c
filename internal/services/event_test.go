package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"eventtiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	appendErr error
	flierErr  error
	deleteErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (r *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	event.ID = fmt.Sprintf("evt-%d", r.nextID)
	r.nextID++
	cp := *event
	r.byID[event.ID] = &cp
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ev
	cp.Attendees = append([]domain.Attendee(nil), ev.Attendees...)
	return &cp, nil
}

func (r *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.byID {
		if ev.Slug == slug {
			cp := *ev
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Event
	for _, ev := range r.byID {
		if ev.OwnerID == ownerID {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) SetFlierURL(ctx context.Context, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flierErr != nil {
		return r.flierErr
	}
	ev, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	ev.FlierURL = url
	return nil
}

func (r *fakeEventRepo) Disable(ctx context.Context, id, expiredSlug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	ev.DisableRegistration = true
	ev.Slug = expiredSlug
	return nil
}

func (r *fakeEventRepo) AppendAttendee(ctx context.Context, id string, attendee domain.Attendee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	ev, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	ev.Attendees = append(ev.Attendees, attendee)
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeEventRepo) Watch(ctx context.Context, ownerID string) (domain.EventSubscription, error) {
	return nil, errors.New("not implemented")
}

// fakeFlierStore records uploads and deletes.
type fakeFlierStore struct {
	uploadErr error
	deleteErr error
	uploaded  map[string]string
	deleted   []string
}

func newFakeFlierStore() *fakeFlierStore {
	return &fakeFlierStore{uploaded: make(map[string]string)}
}

func (f *fakeFlierStore) Upload(ctx context.Context, eventID, dataURL string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	url := "https://storage.example.com/events/" + eventID + "/image"
	f.uploaded[eventID] = dataURL
	return url, nil
}

func (f *fakeFlierStore) Delete(ctx context.Context, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return f.deleteErr
}

func newTestEventService(repo *fakeEventRepo, store *fakeFlierStore) domain.EventService {
	return NewEventService(repo, store, testLogger(), 2*time.Second)
}

func TestCreateEvent(t *testing.T) {
	t.Run("creates event with slug from title", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeFlierStore())

		event, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
			Title: "Spring Meetup!!",
			Date:  "2026-04-02",
			Time:  "18:30",
			Venue: "Town Hall",
		})
		require.NoError(t, err)
		assert.Equal(t, "spring-meetup", event.Slug)
		assert.Equal(t, "owner-1", event.OwnerID)
		assert.False(t, event.DisableRegistration)
		assert.Empty(t, event.Attendees)
		assert.NotEmpty(t, event.ID)
	})

	t.Run("uploads flier and records its url", func(t *testing.T) {
		repo := newFakeEventRepo()
		store := newFakeFlierStore()
		svc := newTestEventService(repo, store)

		event, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
			Title: "Launch Party",
			Date:  "2026-05-01",
			Time:  "20:00",
			Flier: "data:image/png;base64,aGVsbG8=",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, event.FlierURL)
		assert.Contains(t, store.uploaded, event.ID)

		stored, err := repo.GetByID(context.Background(), event.ID)
		require.NoError(t, err)
		assert.Equal(t, event.FlierURL, stored.FlierURL)
	})

	t.Run("keeps event when flier upload fails", func(t *testing.T) {
		repo := newFakeEventRepo()
		store := newFakeFlierStore()
		store.uploadErr = errors.New("bucket unavailable")
		svc := newTestEventService(repo, store)

		event, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
			Title: "Launch Party",
			Date:  "2026-05-01",
			Time:  "20:00",
			Flier: "data:image/png;base64,aGVsbG8=",
		})
		require.NoError(t, err)
		assert.Empty(t, event.FlierURL)

		stored, err := repo.GetByID(context.Background(), event.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.FlierURL)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc := newTestEventService(newFakeEventRepo(), newFakeFlierStore())

		tests := []struct {
			name  string
			input domain.CreateEventInput
		}{
			{"missing title", domain.CreateEventInput{Date: "2026-05-01", Time: "10:00"}},
			{"missing date", domain.CreateEventInput{Title: "X", Time: "10:00"}},
			{"bad time", domain.CreateEventInput{Title: "X", Date: "2026-05-01", Time: "25:00"}},
			{"symbol-only title", domain.CreateEventInput{Title: "!!!", Date: "2026-05-01", Time: "10:00"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.CreateEvent(context.Background(), "owner-1", tt.input)
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			})
		}
	})
}

func TestGetEvent(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo, newFakeFlierStore())
	event, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
		Title: "Demo Day", Date: "2026-06-01", Time: "09:00",
	})
	require.NoError(t, err)

	t.Run("returns owner's event", func(t *testing.T) {
		got, err := svc.GetEvent(context.Background(), event.ID, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, event.ID, got.ID)
	})

	t.Run("rejects other owners", func(t *testing.T) {
		_, err := svc.GetEvent(context.Background(), event.ID, "owner-2")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetEvent(context.Background(), "missing", "owner-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGetEventBySlug(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo, newFakeFlierStore())
	_, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
		Title: "Demo Day", Date: "2026-06-01", Time: "09:00",
	})
	require.NoError(t, err)

	got, err := svc.GetEventBySlug(context.Background(), "demo-day")
	require.NoError(t, err)
	assert.Equal(t, "Demo Day", got.Title)

	_, err = svc.GetEventBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDisableRegistration(t *testing.T) {
	expiredSlug := regexp.MustCompile(`^expired-\d+$`)

	t.Run("closes registration and rewrites slug", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeFlierStore())
		event, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
			Title: "Demo Day", Date: "2026-06-01", Time: "09:00",
		})
		require.NoError(t, err)

		require.NoError(t, svc.DisableRegistration(context.Background(), event.ID, "owner-1"))

		stored, err := repo.GetByID(context.Background(), event.ID)
		require.NoError(t, err)
		assert.True(t, stored.DisableRegistration)
		assert.Regexp(t, expiredSlug, stored.Slug)

		_, err = svc.GetEventBySlug(context.Background(), "demo-day")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("repeat call picks a fresh slug", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeFlierStore())
		event, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
			Title: "Demo Day", Date: "2026-06-01", Time: "09:00",
		})
		require.NoError(t, err)

		require.NoError(t, svc.DisableRegistration(context.Background(), event.ID, "owner-1"))
		first, err := repo.GetByID(context.Background(), event.ID)
		require.NoError(t, err)

		require.NoError(t, svc.DisableRegistration(context.Background(), event.ID, "owner-1"))
		second, err := repo.GetByID(context.Background(), event.ID)
		require.NoError(t, err)

		assert.Regexp(t, expiredSlug, second.Slug)
		assert.NotEqual(t, first.Slug, second.Slug)
		assert.True(t, second.DisableRegistration)
	})

	t.Run("rejects other owners", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeFlierStore())
		event, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
			Title: "Demo Day", Date: "2026-06-01", Time: "09:00",
		})
		require.NoError(t, err)

		err = svc.DisableRegistration(context.Background(), event.ID, "owner-2")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDeleteEvent(t *testing.T) {
	t.Run("deletes event and flier", func(t *testing.T) {
		repo := newFakeEventRepo()
		store := newFakeFlierStore()
		svc := newTestEventService(repo, store)
		event, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
			Title: "Demo Day", Date: "2026-06-01", Time: "09:00",
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteEvent(context.Background(), event.ID, "owner-1"))
		_, err = repo.GetByID(context.Background(), event.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, []string{event.ID}, store.deleted)
	})

	t.Run("flier delete failure does not fail the delete", func(t *testing.T) {
		repo := newFakeEventRepo()
		store := newFakeFlierStore()
		store.deleteErr = errors.New("object store down")
		svc := newTestEventService(repo, store)
		event, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
			Title: "Demo Day", Date: "2026-06-01", Time: "09:00",
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteEvent(context.Background(), event.ID, "owner-1"))
		_, err = repo.GetByID(context.Background(), event.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rejects other owners", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := newTestEventService(repo, newFakeFlierStore())
		event, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
			Title: "Demo Day", Date: "2026-06-01", Time: "09:00",
		})
		require.NoError(t, err)

		err = svc.DeleteEvent(context.Background(), event.ID, "owner-2")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestListEvents(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo, newFakeFlierStore())
	for _, title := range []string{"One", "Two"} {
		_, err := svc.CreateEvent(context.Background(), "owner-1", domain.CreateEventInput{
			Title: title, Date: "2026-06-01", Time: "09:00",
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateEvent(context.Background(), "owner-2", domain.CreateEventInput{
		Title: "Other", Date: "2026-06-01", Time: "09:00",
	})
	require.NoError(t, err)

	events, err := svc.ListEvents(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
