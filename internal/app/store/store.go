// Package store keeps every entity of the service in process memory.
//
// A MemStore is constructed explicitly and handed to the services that need
// it. Each entity type has its own id counter; ids start at 1 and are never
// reused. Values returned by the store are copies.
package store

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

type counters struct {
	user        int64
	destination int64
	detail      int64
	swipe       int64
	buddy       int64
	group       int64
	member      int64
	vote        int64
}

type MemStore struct {
	mu sync.RWMutex

	users        map[int64]models.User
	destinations map[int64]models.Destination
	details      map[int64]models.DestinationDetail // keyed by destination id
	swipes       map[int64]models.Swipe
	buddies      map[int64]models.TravelBuddy
	groups       map[int64]models.Group
	members      map[int64]models.GroupMember
	votes        map[int64]models.GroupVote

	ids counters
	now func() time.Time
}

type Option func(*MemStore)

// WithClock overrides the time source used for server-set timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		s.now = now
	}
}

func New(opts ...Option) *MemStore {
	s := &MemStore{
		users:        make(map[int64]models.User),
		destinations: make(map[int64]models.Destination),
		details:      make(map[int64]models.DestinationDetail),
		swipes:       make(map[int64]models.Swipe),
		buddies:      make(map[int64]models.TravelBuddy),
		groups:       make(map[int64]models.Group),
		members:      make(map[int64]models.GroupMember),
		votes:        make(map[int64]models.GroupVote),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func next(counter *int64) int64 {
	*counter++
	return *counter
}

// collect copies the values matching keep and orders them by id.
func collect[T any](m map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, models.ErrNotFound)
}

// Users

func (s *MemStore) CreateUser(u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUniqueLocked(0, u.Username, u.Email); err != nil {
		return nil, err
	}

	u.ID = next(&s.ids.user)
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	return &u, nil
}

func (s *MemStore) checkUniqueLocked(selfID int64, username, email string) error {
	for _, existing := range s.users {
		if existing.ID == selfID {
			continue
		}
		if strings.EqualFold(existing.Username, username) {
			return fmt.Errorf("%w: %w", models.ErrConflict, models.ErrUsernameTaken)
		}
		if email != "" && strings.EqualFold(existing.Email, email) {
			return fmt.Errorf("%w: %w", models.ErrConflict, models.ErrEmailTaken)
		}
	}
	return nil
}

func (s *MemStore) GetUser(id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (s *MemStore) GetUserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
}

// UpdateUser replaces the stored record. Id and creation time are kept.
func (s *MemStore) UpdateUser(u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return nil, notFound("user", u.ID)
	}
	if err := s.checkUniqueLocked(u.ID, u.Username, u.Email); err != nil {
		return nil, err
	}
	u.CreatedAt = existing.CreatedAt
	s.users[u.ID] = u
	return &u, nil
}

// Destinations

func (s *MemStore) CreateDestination(d models.Destination) (*models.Destination, error) {
	if d.PriceLevel < 1 || d.PriceLevel > 3 {
		return nil, fmt.Errorf("destination %q price level %d: %w", d.Name, d.PriceLevel, models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = next(&s.ids.destination)
	d.Categories = slices.Clone(d.Categories)
	s.destinations[d.ID] = d
	return &d, nil
}

func (s *MemStore) GetDestination(id int64) (*models.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.destinations[id]
	if !ok {
		return nil, notFound("destination", id)
	}
	return &d, nil
}

func (s *MemStore) ListDestinations(keep func(models.Destination) bool) []models.Destination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.destinations, keep)
}

func (s *MemStore) CreateDestinationDetail(d models.DestinationDetail) (*models.DestinationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.destinations[d.DestinationID]; !ok {
		return nil, notFound("destination", d.DestinationID)
	}
	if _, ok := s.details[d.DestinationID]; ok {
		return nil, fmt.Errorf("details for destination %d: %w", d.DestinationID, models.ErrConflict)
	}

	d.ID = next(&s.ids.detail)
	s.details[d.DestinationID] = d
	return &d, nil
}

func (s *MemStore) GetDestinationDetail(destinationID int64) (*models.DestinationDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.details[destinationID]
	if !ok {
		return nil, fmt.Errorf("details for destination %d: %w", destinationID, models.ErrNotFound)
	}
	return &d, nil
}

// Swipes

// UpsertSwipe records the decision of userID on destinationID. A repeat swipe
// overwrites liked and the timestamp of the existing row and keeps its id.
// created reports whether a new row was inserted.
func (s *MemStore) UpsertSwipe(userID, destinationID int64, liked bool) (swipe *models.Swipe, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.swipes {
		if existing.UserID == userID && existing.DestinationID == destinationID {
			existing.Liked = liked
			existing.CreatedAt = s.now()
			s.swipes[id] = existing
			return &existing, false, nil
		}
	}

	sw := models.Swipe{
		ID:            next(&s.ids.swipe),
		UserID:        userID,
		DestinationID: destinationID,
		Liked:         liked,
		CreatedAt:     s.now(),
	}
	s.swipes[sw.ID] = sw
	return &sw, true, nil
}

func (s *MemStore) ListSwipes(keep func(models.Swipe) bool) []models.Swipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.swipes, keep)
}

// Travel buddies

// CreateTravelBuddyIfAbsent inserts a pending match for the unordered pair
// {userOne, userTwo} at destinationID unless one already exists, in which case
// the existing match is returned with created=false.
func (s *MemStore) CreateTravelBuddyIfAbsent(userOne, userTwo, destinationID int64) (buddy *models.TravelBuddy, created bool, err error) {
	if userOne == userTwo {
		return nil, false, fmt.Errorf("user %d cannot match with themselves: %w", userOne, models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.buddies {
		if existing.SamePair(userOne, userTwo, destinationID) {
			return &existing, false, nil
		}
	}

	b := models.TravelBuddy{
		ID:            next(&s.ids.buddy),
		UserOneID:     userOne,
		UserTwoID:     userTwo,
		DestinationID: destinationID,
		Status:        models.BuddyStatusPending,
		CreatedAt:     s.now(),
	}
	s.buddies[b.ID] = b
	return &b, true, nil
}

func (s *MemStore) GetTravelBuddy(id int64) (*models.TravelBuddy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buddies[id]
	if !ok {
		return nil, notFound("travel buddy", id)
	}
	return &b, nil
}

func (s *MemStore) ListTravelBuddies(keep func(models.TravelBuddy) bool) []models.TravelBuddy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.buddies, keep)
}

func (s *MemStore) UpdateTravelBuddyStatus(id int64, status models.BuddyStatus) (*models.TravelBuddy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buddies[id]
	if !ok {
		return nil, notFound("travel buddy", id)
	}
	b.Status = status
	s.buddies[id] = b
	return &b, nil
}

// Groups

// CreateGroupWithCreator inserts the group and the creator's membership in one
// step so a group is never observable without its creator.
func (s *MemStore) CreateGroupWithCreator(name string, creatorID int64, voteEndTime *time.Time) (*models.Group, *models.GroupMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[creatorID]; !ok {
		return nil, nil, notFound("user", creatorID)
	}

	now := s.now()
	g := models.Group{
		ID:        next(&s.ids.group),
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: now,
	}
	if voteEndTime != nil {
		end := voteEndTime.UTC()
		g.VoteEndTime = &end
	}
	s.groups[g.ID] = g

	m := models.GroupMember{
		ID:       next(&s.ids.member),
		GroupID:  g.ID,
		UserID:   creatorID,
		JoinedAt: now,
	}
	s.members[m.ID] = m

	out := g
	out.VoteEndTime = copyTime(g.VoteEndTime)
	return &out, &m, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (s *MemStore) GetGroup(id int64) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, notFound("group", id)
	}
	g.VoteEndTime = copyTime(g.VoteEndTime)
	return &g, nil
}

func (s *MemStore) ListGroups(keep func(models.Group) bool) []models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := collect(s.groups, keep)
	for i := range out {
		out[i].VoteEndTime = copyTime(out[i].VoteEndTime)
	}
	return out
}

// MarkVoteClosedAnnounced flips the announced flag of a group. It reports
// false when the flag was already set.
func (s *MemStore) MarkVoteClosedAnnounced(groupID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return false, notFound("group", groupID)
	}
	if g.ClosedAnnounced {
		return false, nil
	}
	g.ClosedAnnounced = true
	s.groups[groupID] = g
	return true, nil
}

// Group members

// AddGroupMemberIfAbsent adds userID to groupID. When the user is already a
// member the existing row is returned with created=false and nothing changes.
func (s *MemStore) AddGroupMemberIfAbsent(groupID, userID int64) (member *models.GroupMember, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return nil, false, notFound("group", groupID)
	}
	if _, ok := s.users[userID]; !ok {
		return nil, false, notFound("user", userID)
	}
	if existing, ok := s.memberLocked(groupID, userID); ok {
		return &existing, false, nil
	}

	m := models.GroupMember{
		ID:       next(&s.ids.member),
		GroupID:  groupID,
		UserID:   userID,
		JoinedAt: s.now(),
	}
	s.members[m.ID] = m
	return &m, true, nil
}

func (s *MemStore) memberLocked(groupID, userID int64) (models.GroupMember, bool) {
	for _, m := range s.members {
		if m.GroupID == groupID && m.UserID == userID {
			return m, true
		}
	}
	return models.GroupMember{}, false
}

func (s *MemStore) IsGroupMember(groupID, userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.memberLocked(groupID, userID)
	return ok
}

func (s *MemStore) ListGroupMembers(keep func(models.GroupMember) bool) []models.GroupMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.members, keep)
}

// Group votes

// UpsertGroupVote keeps one vote per (group, user, destination). A repeat vote
// overwrites liked and the timestamp in place.
func (s *MemStore) UpsertGroupVote(groupID, userID, destinationID int64, liked bool) (vote *models.GroupVote, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.votes {
		if existing.GroupID == groupID && existing.UserID == userID && existing.DestinationID == destinationID {
			existing.Liked = liked
			existing.CreatedAt = s.now()
			s.votes[id] = existing
			return &existing, false, nil
		}
	}

	v := models.GroupVote{
		ID:            next(&s.ids.vote),
		GroupID:       groupID,
		UserID:        userID,
		DestinationID: destinationID,
		Liked:         liked,
		CreatedAt:     s.now(),
	}
	s.votes[v.ID] = v
	return &v, true, nil
}

func (s *MemStore) ListGroupVotes(keep func(models.GroupVote) bool) []models.GroupVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.votes, keep)
}
