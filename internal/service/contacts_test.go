package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-contacts-api/internal/models"
	"github.com/pribylovaa/go-contacts-api/internal/storage"
)

func TestContacts_NormalizesPaging(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()

	cases := []struct {
		name       string
		in         storage.ContactFilter
		wantLimit  int
		wantOffset int
	}{
		{"defaults", storage.ContactFilter{}, 50, 0},
		{"negative", storage.ContactFilter{Limit: -1, Offset: -5}, 50, 0},
		{"capped", storage.ContactFilter{Limit: 10000, Offset: 20}, 500, 20},
		{"as is", storage.ContactFilter{Limit: 25, Offset: 75}, 25, 75},
	}

	for _, tc := range cases {
		var got storage.ContactFilter
		st.EXPECT().Contacts(gomock.Any(), ownerID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, filter storage.ContactFilter) ([]models.Contact, error) {
				got = filter
				return nil, nil
			})

		_, err := svc.Contacts(context.Background(), ownerID, tc.in)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.wantLimit, got.Limit, tc.name)
		require.Equal(t, tc.wantOffset, got.Offset, tc.name)
	}
}

func TestContacts_PassesFilters(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	in := storage.ContactFilter{FirstName: "Al", LastName: "Sm", Email: "example.com", Limit: 10}

	st.EXPECT().Contacts(gomock.Any(), ownerID, in).
		Return([]models.Contact{{ID: uuid.New()}}, nil)

	contacts, err := svc.Contacts(context.Background(), ownerID, in)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
}

func TestContactByID_OK_And_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	id := uuid.New()
	contact := &models.Contact{ID: id, UserID: ownerID, FirstName: "Alice"}

	st.EXPECT().ContactByID(gomock.Any(), ownerID, id).Return(contact, nil)

	got, err := svc.ContactByID(context.Background(), ownerID, id)
	require.NoError(t, err)
	require.Equal(t, contact, got)

	st.EXPECT().ContactByID(gomock.Any(), ownerID, id).
		Return(nil, storage.ErrNotFound)

	_, err = svc.ContactByID(context.Background(), ownerID, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateContact_OK(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	birthday := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)

	var saved *models.Contact
	st.EXPECT().SaveContact(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *models.Contact) error {
			saved = c
			return nil
		})

	in := &models.Contact{
		FirstName: "  Alice ",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Birthday:  birthday,
	}

	created, err := svc.CreateContact(context.Background(), ownerID, in)
	require.NoError(t, err)
	require.Same(t, saved, created)

	require.NotEqual(t, uuid.Nil, created.ID)
	require.Equal(t, ownerID, created.UserID)
	require.Equal(t, "Alice", created.FirstName)
	require.False(t, created.CreatedAt.IsZero())
	require.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func TestCreateContact_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	birthday := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateContact(context.Background(), ownerID, &models.Contact{
		FirstName: "   ",
		Birthday:  birthday,
	})
	require.ErrorIs(t, err, ErrInvalidContact)

	_, err = svc.CreateContact(context.Background(), ownerID, &models.Contact{
		FirstName: "Alice",
	})
	require.ErrorIs(t, err, ErrInvalidContact)

	_, err = svc.CreateContact(context.Background(), ownerID, &models.Contact{
		FirstName: "Alice",
		Email:     "not-an-email",
		Birthday:  birthday,
	})
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestUpdateContact_OK(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	id := uuid.New()
	firstName := " Bob "
	updated := &models.Contact{ID: id, UserID: ownerID, FirstName: "Bob"}

	var gotUpdate storage.ContactUpdate
	st.EXPECT().UpdateContact(gomock.Any(), ownerID, id, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ uuid.UUID, update storage.ContactUpdate) (*models.Contact, error) {
			gotUpdate = update
			return updated, nil
		})

	got, err := svc.UpdateContact(context.Background(), ownerID, id, storage.ContactUpdate{FirstName: &firstName})
	require.NoError(t, err)
	require.Equal(t, updated, got)

	// Имя нормализуется до записи.
	require.NotNil(t, gotUpdate.FirstName)
	require.Equal(t, "Bob", *gotUpdate.FirstName)
}

func TestUpdateContact_Validation_And_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	id := uuid.New()

	empty := "   "
	_, err := svc.UpdateContact(context.Background(), ownerID, id, storage.ContactUpdate{FirstName: &empty})
	require.ErrorIs(t, err, ErrInvalidContact)

	badEmail := "not-an-email"
	_, err = svc.UpdateContact(context.Background(), ownerID, id, storage.ContactUpdate{Email: &badEmail})
	require.ErrorIs(t, err, ErrInvalidEmail)

	var zero time.Time
	_, err = svc.UpdateContact(context.Background(), ownerID, id, storage.ContactUpdate{Birthday: &zero})
	require.ErrorIs(t, err, ErrInvalidContact)

	note := "call back"
	st.EXPECT().UpdateContact(gomock.Any(), ownerID, id, gomock.Any()).
		Return(nil, storage.ErrNotFound)

	_, err = svc.UpdateContact(context.Background(), ownerID, id, storage.ContactUpdate{Note: &note})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteContact_OK_And_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	id := uuid.New()

	st.EXPECT().DeleteContact(gomock.Any(), ownerID, id).Return(nil)
	require.NoError(t, svc.DeleteContact(context.Background(), ownerID, id))

	st.EXPECT().DeleteContact(gomock.Any(), ownerID, id).Return(storage.ErrNotFound)
	err := svc.DeleteContact(context.Background(), ownerID, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpcomingBirthdays_UsesWeekWindow(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()

	var gotFrom time.Time
	var gotDays int
	st.EXPECT().UpcomingBirthdays(gomock.Any(), ownerID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, from time.Time, days int) ([]models.Contact, error) {
			gotFrom = from
			gotDays = days
			return []models.Contact{{ID: uuid.New()}}, nil
		})

	contacts, err := svc.UpcomingBirthdays(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	require.Equal(t, birthdayWindowDays, gotDays)
	require.WithinDuration(t, time.Now().UTC(), gotFrom, 2*time.Second)
}

func TestContacts_StorageError_Propagated(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	st.EXPECT().Contacts(gomock.Any(), ownerID, gomock.Any()).
		Return(nil, errors.New("db problem"))

	_, err := svc.Contacts(context.Background(), ownerID, storage.ContactFilter{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
