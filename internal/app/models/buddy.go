package models

import "time"

type BuddyStatus string

const (
	BuddyStatusPending  BuddyStatus = "pending"
	BuddyStatusAccepted BuddyStatus = "accepted"
	BuddyStatusRejected BuddyStatus = "rejected"
)

type TravelBuddy struct {
	ID            int64       `json:"id"`
	UserOneID     int64       `json:"userOneId"`
	UserTwoID     int64       `json:"userTwoId"`
	DestinationID int64       `json:"destinationId"`
	Status        BuddyStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Involves reports whether userID is one of the two matched users.
func (b TravelBuddy) Involves(userID int64) bool {
	return b.UserOneID == userID || b.UserTwoID == userID
}

// Other returns the matched user that is not userID.
func (b TravelBuddy) Other(userID int64) int64 {
	if b.UserOneID == userID {
		return b.UserTwoID
	}
	return b.UserOneID
}

// SamePair reports whether the match is for the unordered pair {a, b} at
// destinationID.
func (b TravelBuddy) SamePair(a, c, destinationID int64) bool {
	if b.DestinationID != destinationID {
		return false
	}
	return (b.UserOneID == a && b.UserTwoID == c) || (b.UserOneID == c && b.UserTwoID == a)
}

type TravelBuddyMatch struct {
	ID                  int64       `json:"id"`
	UserID              int64       `json:"userId"`
	MatchedUserID       int64       `json:"matchedUserId"`
	MatchedUsername     string      `json:"matchedUsername"`
	MatchedProfileImage string      `json:"matchedProfileImage,omitempty"`
	DestinationID       int64       `json:"destinationId"`
	DestinationName     string      `json:"destinationName"`
	Status              BuddyStatus `json:"status"`
	CreatedAt           time.Time   `json:"createdAt"`
}

type UpdateBuddyStatusRequest struct {
	Status BuddyStatus `json:"status" binding:"required"`
	UserID int64       `json:"userId"`
}
