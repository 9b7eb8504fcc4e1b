// Package events defines the domain event topics and payloads published on
// the in-process bus.
package events

import "github.com/wingshot-club/wingshot-bot/internal/store"

const (
	TopicSubmissionReceived = "submission.received"
	TopicJudgmentSaved      = "judgment.saved"
	TopicWeekStatusChanged  = "week.status.changed"
)

// Topics lists every domain topic, in the order the audit subscriber
// attaches to them.
var Topics = []string{
	TopicSubmissionReceived,
	TopicJudgmentSaved,
	TopicWeekStatusChanged,
}

// SubmissionReceived is published after a submission upsert commits.
type SubmissionReceived struct {
	Week         int    `json:"week"`
	MemberID     string `json:"memberId"`
	Species      string `json:"species"`
	PhotoCount   int    `json:"photoCount"`
	Resubmission bool   `json:"resubmission"`
}

// JudgmentSaved is published after a judgment write commits.
type JudgmentSaved struct {
	Week    int    `json:"week"`
	MemberA string `json:"memberA"`
	MemberB string `json:"memberB"`
	Winner  string `json:"winner"`
}

// WeekStatusChanged is published after an admin changes a week's status.
type WeekStatusChanged struct {
	Week   int              `json:"week"`
	Status store.WeekStatus `json:"status"`
}
