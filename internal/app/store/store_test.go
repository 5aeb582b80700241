package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

func newTestStore(t *testing.T) *MemStore {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	tick := 0
	return New(WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}))
}

func mustUser(t *testing.T, s *MemStore, name string) *models.User {
	t.Helper()
	u, err := s.CreateUser(models.User{Username: name, Email: name + "@example.com", Password: "hash"})
	require.NoError(t, err)
	return u
}

func mustDestination(t *testing.T, s *MemStore, name string) *models.Destination {
	t.Helper()
	d, err := s.CreateDestination(models.Destination{
		Name:       name,
		Country:    "Somewhere",
		PriceLevel: 2,
		Categories: []models.Category{models.CategoryCity},
		Region:     models.RegionEurope,
	})
	require.NoError(t, err)
	return d
}

func TestCreateUser(t *testing.T) {
	s := newTestStore(t)

	first := mustUser(t, s, "ana")
	second := mustUser(t, s, "bruno")
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())

	t.Run("duplicate username", func(t *testing.T) {
		_, err := s.CreateUser(models.User{Username: "ANA", Email: "other@example.com"})
		assert.ErrorIs(t, err, models.ErrConflict)
		assert.ErrorIs(t, err, models.ErrUsernameTaken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.CreateUser(models.User{Username: "carla", Email: "bruno@example.com"})
		assert.ErrorIs(t, err, models.ErrConflict)
		assert.ErrorIs(t, err, models.ErrEmailTaken)
	})

	t.Run("failed create does not consume an id", func(t *testing.T) {
		third := mustUser(t, s, "carla")
		assert.Equal(t, int64(3), third.ID)
	})
}

func TestGetUserReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, "ana")

	u.Bio = "mutated outside"
	stored, err := s.GetUser(u.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Bio)

	_, err = s.GetUser(99)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, "ana")
	mustUser(t, s, "bruno")

	u.Bio = "beach person"
	updated, err := s.UpdateUser(*u)
	require.NoError(t, err)
	assert.Equal(t, "beach person", updated.Bio)
	assert.Equal(t, u.CreatedAt, updated.CreatedAt)

	u.Username = "bruno"
	_, err = s.UpdateUser(*u)
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = s.UpdateUser(models.User{ID: 42})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateDestinationValidatesPriceLevel(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateDestination(models.Destination{Name: "Nowhere", PriceLevel: 4})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDestinationDetail(t *testing.T) {
	s := newTestStore(t)
	d := mustDestination(t, s, "Tokyo")

	detail, err := s.CreateDestinationDetail(models.DestinationDetail{DestinationID: d.ID, BestTimeToVisit: "Spring"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.ID)

	_, err = s.CreateDestinationDetail(models.DestinationDetail{DestinationID: d.ID})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = s.CreateDestinationDetail(models.DestinationDetail{DestinationID: 99})
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := s.GetDestinationDetail(d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring", got.BestTimeToVisit)
}

func TestUpsertSwipe(t *testing.T) {
	s := newTestStore(t)

	first, created, err := s.UpsertSwipe(1, 3, false)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := s.UpsertSwipe(1, 3, true)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.Liked)
	assert.True(t, again.CreatedAt.After(first.CreatedAt))

	other, created, err := s.UpsertSwipe(2, 3, true)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(2), other.ID)

	assert.Len(t, s.ListSwipes(nil), 2)
	liked := s.ListSwipes(func(sw models.Swipe) bool { return sw.DestinationID == 3 && sw.Liked })
	assert.Len(t, liked, 2)
}

func TestCreateTravelBuddyIfAbsent(t *testing.T) {
	s := newTestStore(t)

	b, created, err := s.CreateTravelBuddyIfAbsent(2, 1, 3)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.BuddyStatusPending, b.Status)
	assert.Equal(t, int64(2), b.UserOneID)

	same, created, err := s.CreateTravelBuddyIfAbsent(1, 2, 3)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, b.ID, same.ID)

	_, created, err = s.CreateTravelBuddyIfAbsent(1, 2, 4)
	require.NoError(t, err)
	assert.True(t, created)

	_, _, err = s.CreateTravelBuddyIfAbsent(1, 1, 3)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateTravelBuddyIfAbsentConcurrent(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _, _ = s.CreateTravelBuddyIfAbsent(1, 2, 7)
			} else {
				_, _, _ = s.CreateTravelBuddyIfAbsent(2, 1, 7)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.ListTravelBuddies(nil), 1)
}

func TestUpdateTravelBuddyStatus(t *testing.T) {
	s := newTestStore(t)
	b, _, err := s.CreateTravelBuddyIfAbsent(1, 2, 3)
	require.NoError(t, err)

	updated, err := s.UpdateTravelBuddyStatus(b.ID, models.BuddyStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.BuddyStatusAccepted, updated.Status)

	stored, err := s.GetTravelBuddy(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BuddyStatusAccepted, stored.Status)

	_, err = s.UpdateTravelBuddyStatus(99, models.BuddyStatusRejected)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGroupsAndMembers(t *testing.T) {
	s := newTestStore(t)
	ana := mustUser(t, s, "ana")
	bruno := mustUser(t, s, "bruno")

	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	g, creator, err := s.CreateGroupWithCreator("Summer crew", ana.ID, &end)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, creator.UserID)
	assert.Equal(t, g.ID, creator.GroupID)
	assert.True(t, s.IsGroupMember(g.ID, ana.ID))

	_, _, err = s.CreateGroupWithCreator("Ghost crew", 99, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	m, created, err := s.AddGroupMemberIfAbsent(g.ID, bruno.ID)
	require.NoError(t, err)
	assert.True(t, created)

	dup, created, err := s.AddGroupMemberIfAbsent(g.ID, bruno.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, m.ID, dup.ID)
	assert.Len(t, s.ListGroupMembers(func(gm models.GroupMember) bool { return gm.GroupID == g.ID }), 2)

	_, _, err = s.AddGroupMemberIfAbsent(99, bruno.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, _, err = s.AddGroupMemberIfAbsent(g.ID, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)

	stored, err := s.GetGroup(g.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VoteEndTime)
	*stored.VoteEndTime = stored.VoteEndTime.Add(time.Hour)
	again, err := s.GetGroup(g.ID)
	require.NoError(t, err)
	assert.Equal(t, end, *again.VoteEndTime)
}

func TestMarkVoteClosedAnnounced(t *testing.T) {
	s := newTestStore(t)
	ana := mustUser(t, s, "ana")
	g, _, err := s.CreateGroupWithCreator("crew", ana.ID, nil)
	require.NoError(t, err)

	marked, err := s.MarkVoteClosedAnnounced(g.ID)
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = s.MarkVoteClosedAnnounced(g.ID)
	require.NoError(t, err)
	assert.False(t, marked)

	_, err = s.MarkVoteClosedAnnounced(99)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpsertGroupVote(t *testing.T) {
	s := newTestStore(t)

	v, created, err := s.UpsertGroupVote(1, 1, 5, true)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := s.UpsertGroupVote(1, 1, 5, false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, v.ID, again.ID)
	assert.False(t, again.Liked)

	_, created, err = s.UpsertGroupVote(2, 1, 5, true)
	require.NoError(t, err)
	assert.True(t, created)

	assert.Len(t, s.ListGroupVotes(func(gv models.GroupVote) bool { return gv.GroupID == 1 }), 1)
}

func TestListOrderedByID(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"a1", "b2", "c3", "d4", "e5"} {
		mustDestination(t, s, name)
	}

	list := s.ListDestinations(nil)
	require.Len(t, list, 5)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
}
