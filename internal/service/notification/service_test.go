package notification

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type fakeNotificationRepo struct {
	byID map[uuid.UUID]*model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{byID: make(map[uuid.UUID]*model.Notification)}
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	f.byID[n.ID] = n
	return nil
}

func (f *fakeNotificationRepo) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	n, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotificationRepo) List(_ context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range f.byID {
		if n.UserID != filters.UserID {
			continue
		}
		if filters.IsRead != nil && n.IsRead != *filters.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	n, ok := f.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	n.IsRead = true
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range f.byID {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func seed(t *testing.T, repo *fakeNotificationRepo, userID uuid.UUID, read bool) *model.Notification {
	t.Helper()
	n := &model.Notification{
		UserID:  userID,
		Type:    model.NotificationTypeSystem,
		Title:   "hello",
		Message: "world",
		IsRead:  read,
	}
	require.NoError(t, repo.Create(context.Background(), n))
	return n
}

func TestListFiltersByReadState(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo)
	userID := uuid.New()

	seed(t, repo, userID, false)
	seed(t, repo, userID, false)
	seed(t, repo, userID, true)
	seed(t, repo, uuid.New(), false)

	all, err := svc.List(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	unread := false
	filtered, err := svc.List(context.Background(), userID, &unread)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo)
	userID := uuid.New()
	n := seed(t, repo, userID, false)

	require.NoError(t, svc.MarkRead(context.Background(), userID, n.ID))
	require.NoError(t, svc.MarkRead(context.Background(), userID, n.ID))

	stored, err := repo.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)
}

// Another user's notification reads as not found, not forbidden, so the
// endpoint leaks nothing about other inboxes.
func TestMarkReadForeignNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo)
	n := seed(t, repo, uuid.New(), false)

	err := svc.MarkRead(context.Background(), uuid.New(), n.ID)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestMarkAllReadCountsOnlyFlipped(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo)
	userID := uuid.New()

	seed(t, repo, userID, false)
	seed(t, repo, userID, false)
	seed(t, repo, userID, true)

	count, err := svc.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// Re-running finds nothing left to flip.
	count, err = svc.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestNotifyRequiresRecipient(t *testing.T) {
	svc := NewService(newFakeNotificationRepo())

	err := svc.Notify(context.Background(), &model.Notification{Title: "x"})
	assert.Error(t, err)
}
