// Package firestore implements the event document store on Cloud Firestore.
package firestore

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventtiz/internal/domain"
)

const eventsCollection = "events"

type eventRepository struct {
	client *firestore.Client
}

// NewEventRepository returns an EventRepository backed by the given Firestore client.
func NewEventRepository(client *firestore.Client) domain.EventRepository {
	return &eventRepository{client: client}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	ref := r.client.Collection(eventsCollection).NewDoc()
	if _, err := ref.Create(ctx, event); err != nil {
		return fmt.Errorf("create event document: %w", err)
	}
	event.ID = ref.ID
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	snap, err := r.client.Collection(eventsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event document: %w", err)
	}
	return decodeEvent(snap)
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	iter := r.client.Collection(eventsCollection).
		Where("slug", "==", slug).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query event by slug: %w", err)
	}
	return decodeEvent(snap)
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	iter := r.client.Collection(eventsCollection).
		Where("user_id", "==", ownerID).
		Documents(ctx)
	defer iter.Stop()

	events := []*domain.Event{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list events by owner: %w", err)
		}
		event, err := decodeEvent(snap)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *eventRepository) SetFlierURL(ctx context.Context, id, url string) error {
	_, err := r.client.Collection(eventsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "flier_url", Value: url},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("set flier url: %w", err)
	}
	return nil
}

func (r *eventRepository) Disable(ctx context.Context, id, expiredSlug string) error {
	// One update so the gate and the link invalidation land together.
	_, err := r.client.Collection(eventsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "disableRegistration", Value: true},
		{Path: "slug", Value: expiredSlug},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("disable registration: %w", err)
	}
	return nil
}

func (r *eventRepository) AppendAttendee(ctx context.Context, id string, attendee domain.Attendee) error {
	// ArrayUnion never rewrites the whole array, so concurrent appends are
	// not lost to each other.
	_, err := r.client.Collection(eventsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "attendees", Value: firestore.ArrayUnion(attendee)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("append attendee: %w", err)
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(eventsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete event document: %w", err)
	}
	return nil
}

func (r *eventRepository) Watch(ctx context.Context, ownerID string) (domain.EventSubscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	iter := r.client.Collection(eventsCollection).
		Where("user_id", "==", ownerID).
		Snapshots(ctx)

	sub := &eventSubscription{
		ch:     make(chan []*domain.Event, 1),
		cancel: cancel,
		stop:   iter.Stop,
	}

	go func() {
		defer close(sub.ch)
		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					sub.setErr(fmt.Errorf("event snapshot stream: %w", err))
				}
				return
			}
			events, err := collectSnapshot(snap)
			if err != nil {
				sub.setErr(err)
				return
			}
			select {
			case sub.ch <- events:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub, nil
}

func collectSnapshot(snap *firestore.QuerySnapshot) ([]*domain.Event, error) {
	events := []*domain.Event{}
	for {
		doc, err := snap.Documents.Next()
		if err == iterator.Done {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot document: %w", err)
		}
		event, err := decodeEvent(doc)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
}

func decodeEvent(snap *firestore.DocumentSnapshot) (*domain.Event, error) {
	var event domain.Event
	if err := snap.DataTo(&event); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", snap.Ref.ID, err)
	}
	event.ID = snap.Ref.ID
	if event.Attendees == nil {
		event.Attendees = []domain.Attendee{}
	}
	return &event, nil
}

type eventSubscription struct {
	ch     chan []*domain.Event
	cancel context.CancelFunc
	stop   func()

	mu   sync.Mutex
	err  error
	once sync.Once
}

func (s *eventSubscription) Events() <-chan []*domain.Event { return s.ch }

func (s *eventSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *eventSubscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *eventSubscription) Close() {
	s.once.Do(func() {
		s.cancel()
		s.stop()
	})
}
