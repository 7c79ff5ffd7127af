package projector

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelworks/gavel-stack/common/events"
	"github.com/gavelworks/gavel-stack/common/logging"
	"github.com/gavelworks/gavel-stack/common/messaging"
	"github.com/gavelworks/gavel-stack/search/internal/models"
	"github.com/gavelworks/gavel-stack/search/internal/storage"
)

type fakeStore struct {
	docs       map[string]*models.SearchItem
	upsertErr  error
	upsertHits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*models.SearchItem)}
}

func (f *fakeStore) Get(ctx context.Context, id string) (*models.SearchItem, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, storage.ErrItemNotFound
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeStore) Upsert(ctx context.Context, item *models.SearchItem) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upsertHits++
	cp := *item
	f.docs[item.ID] = &cp
	return nil
}

func (f *fakeStore) Tombstone(ctx context.Context, id string) error {
	doc, ok := f.docs[id]
	if !ok {
		doc = &models.SearchItem{ID: id}
		f.docs[id] = doc
	}
	doc.Deleted = true
	return nil
}

func (f *fakeStore) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	return &models.SearchResponse{}, nil
}

func (f *fakeStore) Count(ctx context.Context) (int, error) {
	return len(f.docs), nil
}

func (f *fakeStore) BulkUpsert(ctx context.Context, items []*models.SearchItem) error {
	for _, item := range items {
		if err := f.Upsert(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func message(t *testing.T, eventType events.EventType, payload any) *messaging.Message {
	t.Helper()

	entityID := ""
	switch p := payload.(type) {
	case *events.AuctionSnapshot:
		entityID = p.ID
	case events.AuctionDeleted:
		entityID = p.ID
	}

	env, err := events.NewEnvelope(eventType, entityID, payload)
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)

	return &messaging.Message{Subject: "auction." + string(eventType), Data: data, Attempt: 1}
}

func snapshot(id, model string) *events.AuctionSnapshot {
	return &events.AuctionSnapshot{
		ID:        id,
		Seller:    "alice",
		Make:      "Ford",
		Model:     model,
		Year:      2020,
		Color:     "White",
		Status:    "live",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestProjectCreated(t *testing.T) {
	store := newFakeStore()
	proj := New(store, logging.Default())

	err := proj.Handle(context.Background(), message(t, events.TypeAuctionCreated, snapshot("a1", "GT")))
	require.NoError(t, err)

	doc, err := store.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "GT", doc.Model)
	assert.False(t, doc.Deleted)
}

func TestProjectionIsIdempotent(t *testing.T) {
	store := newFakeStore()
	proj := New(store, logging.Default())

	msg := message(t, events.TypeAuctionCreated, snapshot("a1", "GT"))
	require.NoError(t, proj.Handle(context.Background(), msg))
	require.NoError(t, proj.Handle(context.Background(), msg))

	assert.Len(t, store.docs, 1)
	assert.Equal(t, 2, store.upsertHits)
}

func TestProjectUpdatedReplacesDocument(t *testing.T) {
	store := newFakeStore()
	proj := New(store, logging.Default())

	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionCreated, snapshot("a1", "GT"))))

	updated := snapshot("a1", "GT")
	updated.Color = "Red"
	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionUpdated, updated)))

	doc, err := store.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Red", doc.Color)
}

func TestProjectUpdateWithoutPriorCreate(t *testing.T) {
	// Snapshots are self-contained; an update arriving before (or instead
	// of) the create still produces a complete document.
	store := newFakeStore()
	proj := New(store, logging.Default())

	err := proj.Handle(context.Background(),
		message(t, events.TypeAuctionUpdated, snapshot("a1", "GT")))
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "a1")
	assert.NoError(t, err)
}

func TestProjectDeleted(t *testing.T) {
	store := newFakeStore()
	proj := New(store, logging.Default())

	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionCreated, snapshot("a1", "GT"))))
	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionDeleted, events.AuctionDeleted{ID: "a1"})))

	doc, err := store.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, doc.Deleted)
}

func TestDeleteIsTerminal(t *testing.T) {
	// A stale update delivered after the delete must not resurrect the
	// document.
	store := newFakeStore()
	proj := New(store, logging.Default())

	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionCreated, snapshot("a1", "GT"))))
	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionDeleted, events.AuctionDeleted{ID: "a1"})))
	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionUpdated, snapshot("a1", "GT"))))

	doc, err := store.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, doc.Deleted)
}

func TestDeleteBeforeCreateLeavesTombstone(t *testing.T) {
	store := newFakeStore()
	proj := New(store, logging.Default())

	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionDeleted, events.AuctionDeleted{ID: "a1"})))
	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionCreated, snapshot("a1", "GT"))))

	doc, err := store.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, doc.Deleted)
}

func TestStaleSnapshotDoesNotRollBack(t *testing.T) {
	// A deferred publish retried after later events carries an older
	// snapshot; applying it would revert the document.
	store := newFakeStore()
	proj := New(store, logging.Default())

	current := snapshot("a1", "GT")
	current.Color = "Red"
	current.UpdatedAt = time.Now().UTC()
	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionUpdated, current)))

	stale := snapshot("a1", "GT")
	stale.Color = "White"
	stale.UpdatedAt = current.UpdatedAt.Add(-time.Minute)
	require.NoError(t, proj.Handle(context.Background(),
		message(t, events.TypeAuctionCreated, stale)))

	doc, err := store.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Red", doc.Color)
	assert.Equal(t, 1, store.upsertHits)
}

func TestEmptyModelIsValidationFault(t *testing.T) {
	store := newFakeStore()
	proj := New(store, logging.Default())

	err := proj.Handle(context.Background(),
		message(t, events.TypeAuctionCreated, snapshot("a1", "")))
	require.Error(t, err)
	assert.Equal(t, events.CategoryValidation, events.CategoryOf(err))
	assert.Empty(t, store.docs)
}

func TestStorageErrorIsStorageFault(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = errors.New("cluster red")
	proj := New(store, logging.Default())

	err := proj.Handle(context.Background(),
		message(t, events.TypeAuctionCreated, snapshot("a1", "GT")))
	require.Error(t, err)
	assert.Equal(t, events.CategoryStorage, events.CategoryOf(err))
}

func TestUnknownEventType(t *testing.T) {
	store := newFakeStore()
	proj := New(store, logging.Default())

	env, err := events.NewEnvelope("auction.exploded", "a1", events.AuctionDeleted{ID: "a1"})
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)

	err = proj.Handle(context.Background(), &messaging.Message{Subject: "auction.exploded", Data: data})
	require.Error(t, err)
	assert.Equal(t, events.CategoryValidation, events.CategoryOf(err))
}

func TestUndecodableMessage(t *testing.T) {
	store := newFakeStore()
	proj := New(store, logging.Default())

	err := proj.Handle(context.Background(), &messaging.Message{Subject: "auction.created", Data: []byte("not json")})
	require.Error(t, err)
	assert.Equal(t, events.CategoryValidation, events.CategoryOf(err))
}
