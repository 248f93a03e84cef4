package models

import (
	"time"
)

type VoteOption string

const (
	OptionAgree    VoteOption = "agree"
	OptionNeutral  VoteOption = "neutral"
	OptionDisagree VoteOption = "disagree"
)

// Valid reports whether the option is one of the three enumerated values.
func (o VoteOption) Valid() bool {
	switch o {
	case OptionAgree, OptionNeutral, OptionDisagree:
		return true
	}
	return false
}

// Vote is one user's single choice on one topic. Append-only: there is no
// vote-change flow, and the (user_id, topic_id) unique index is the only
// place the at-most-one-vote invariant can actually be enforced, since two
// tabs of the same user can race.
type Vote struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Option    VoteOption `gorm:"size:10;not null" json:"option"`
	UserID    string     `gorm:"size:36;not null;uniqueIndex:idx_votes_user_topic" json:"user_id"`
	TopicID   string     `gorm:"size:36;not null;index;uniqueIndex:idx_votes_user_topic" json:"topic_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// VoteStats is derived from the current vote set of a topic. Never persisted
// and never patched incrementally: always recomputed from a full ListVotes.
type VoteStats struct {
	Total    int `json:"total"`
	Agree    int `json:"agree"`
	Neutral  int `json:"neutral"`
	Disagree int `json:"disagree"`

	AgreePct    int `json:"agree_pct"`
	NeutralPct  int `json:"neutral_pct"`
	DisagreePct int `json:"disagree_pct"`
}
