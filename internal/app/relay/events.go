package relay

import (
	"encoding/json"
	"fmt"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

// Event kinds pushed to clients.
const (
	KindNewMatch          = "new_match"
	KindBuddyStatusUpdate = "buddy_status_update"
	KindNewGroupMember    = "new_group_member"
	KindNewGroupVote      = "new_group_vote"
	KindVoteClosed        = "vote_closed"

	KindAuth   = "auth"
	KindAuthOK = "auth_ok"
	KindPing   = "ping"
	KindPong   = "pong"
	KindError  = "error"
)

// Event is a single message for one client. It is encoded as a flat JSON
// object: the payload fields plus "type".
type Event struct {
	Type    string
	Payload any
}

func (e Event) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if e.Payload != nil {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", e.Type, err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%s payload must encode to a JSON object: %w", e.Type, err)
		}
	}
	kind, err := json.Marshal(e.Type)
	if err != nil {
		return nil, err
	}
	fields["type"] = kind
	return json.Marshal(fields)
}

type NewMatchPayload struct {
	Match         models.TravelBuddy `json:"match"`
	MatchedUserID int64              `json:"matchedUserId"`
	DestinationID int64              `json:"destinationId"`
}

type BuddyStatusPayload struct {
	BuddyID int64              `json:"buddyId"`
	Status  models.BuddyStatus `json:"status"`
	ActorID int64              `json:"actorId"`
}

type GroupMemberPayload struct {
	GroupID int64 `json:"groupId"`
	UserID  int64 `json:"userId"`
	AddedBy int64 `json:"addedBy"`
}

type GroupVotePayload struct {
	GroupID       int64 `json:"groupId"`
	UserID        int64 `json:"userId"`
	DestinationID int64 `json:"destinationId"`
	Liked         bool  `json:"liked"`
}

type VoteClosedPayload struct {
	GroupID int64               `json:"groupId"`
	Results []models.VoteResult `json:"results"`
}

type authPayload struct {
	UserID int64 `json:"userId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// clientMessage is anything a client may send.
type clientMessage struct {
	Type   string `json:"type"`
	UserID int64  `json:"userId"`
}
