package models

import "time"

type Group struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	CreatorID       int64      `json:"creatorId"`
	VoteEndTime     *time.Time `json:"voteEndTime,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ClosedAnnounced bool       `json:"-"`
}

// VotingOpen reports whether the advisory vote window is still running at now.
func (g Group) VotingOpen(now time.Time) bool {
	return g.VoteEndTime == nil || now.Before(*g.VoteEndTime)
}

type GroupView struct {
	Group
	VotingOpen bool `json:"votingOpen"`
}

type GroupMember struct {
	ID       int64     `json:"id"`
	GroupID  int64     `json:"groupId"`
	UserID   int64     `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

type GroupMemberView struct {
	GroupMember
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type GroupVote struct {
	ID            int64     `json:"id"`
	GroupID       int64     `json:"groupId"`
	UserID        int64     `json:"userId"`
	DestinationID int64     `json:"destinationId"`
	Liked         bool      `json:"liked"`
	CreatedAt     time.Time `json:"createdAt"`
}

// VoteResult is one row of a group tally.
type VoteResult struct {
	Destination DestinationSummary `json:"destination"`
	Likes       int                `json:"likes"`
	Total       int                `json:"total"`
	Percentage  int                `json:"percentage"`
}

type CreateGroupRequest struct {
	Name        string     `json:"name" binding:"required,max=80"`
	CreatorID   int64      `json:"creatorId"`
	VoteEndTime *time.Time `json:"voteEndTime"`
}

type AddMemberRequest struct {
	UserID int64 `json:"userId" binding:"required,gt=0"`
}

type GroupVoteRequest struct {
	UserID        int64 `json:"userId"`
	DestinationID int64 `json:"destinationId" binding:"required,gt=0"`
	Liked         *bool `json:"liked" binding:"required"`
}
