package models

import (
	"encoding/json"
	"time"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusAccepted || s == RequestStatusRejected
}

type ConnectionRequest struct {
	ID        string        `json:"_id"`
	FromUser  string        `json:"fromUser"`
	ToUser    string        `json:"toUser"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Party is one side of a request: a bare id, or the expanded user summary.
type Party struct {
	ID      string
	Summary *UserSummary
}

// MarshalJSON writes the summary object when expanded and the id string otherwise.
func (p Party) MarshalJSON() ([]byte, error) {
	if p.Summary != nil {
		return json.Marshal(p.Summary)
	}
	return json.Marshal(p.ID)
}

// RequestView is a request with one side expanded for listing.
type RequestView struct {
	ID        string        `json:"_id"`
	FromUser  Party         `json:"fromUser"`
	ToUser    Party         `json:"toUser"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// IncomingView expands the sender.
func (r ConnectionRequest) IncomingView(from *UserSummary) RequestView {
	return RequestView{
		ID:        r.ID,
		FromUser:  Party{ID: r.FromUser, Summary: from},
		ToUser:    Party{ID: r.ToUser},
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// OutgoingView expands the recipient.
func (r ConnectionRequest) OutgoingView(to *UserSummary) RequestView {
	return RequestView{
		ID:        r.ID,
		FromUser:  Party{ID: r.FromUser},
		ToUser:    Party{ID: r.ToUser, Summary: to},
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
