package models

import "time"

type Swipe struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	DestinationID int64     `json:"destinationId"`
	Liked         bool      `json:"liked"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SwipeRequest struct {
	UserID        int64 `json:"userId"`
	DestinationID int64 `json:"destinationId" binding:"required,gt=0"`
	Liked         *bool `json:"liked" binding:"required"`
}

type SwipeResult struct {
	Swipe   *Swipe        `json:"swipe"`
	Matches []TravelBuddy `json:"matches"`
}

// LikedDestination is a destination the user liked, with the time of the like.
type LikedDestination struct {
	Destination
	SavedAt time.Time `json:"savedAt"`
}
