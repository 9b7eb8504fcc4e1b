package store

import (
	"encoding/json"
	"time"
)

// WeekStatus is the closed status enumeration for a contest week.
type WeekStatus string

const (
	WeekStatusUpcoming  WeekStatus = "upcoming"
	WeekStatusActive    WeekStatus = "active"
	WeekStatusCompleted WeekStatus = "completed"
)

// Valid reports whether s is one of the recognized statuses. SetWeekStatus
// rejects anything else before touching disk.
func (s WeekStatus) Valid() bool {
	switch s {
	case WeekStatusUpcoming, WeekStatusActive, WeekStatusCompleted:
		return true
	}
	return false
}

// Member is one club member eligible to submit.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Week is one scheduled contest week.
type Week struct {
	Number int        `json:"number"`
	Theme  string     `json:"theme"`
	Status WeekStatus `json:"status"`
}

// Submission is one member's entry for one week. The (Week, MemberID) pair
// is the composite key: at most one submission exists per pair, and a
// resubmission replaces the old entry while carrying its original timestamp
// forward in PreviousSubmittedAt.
type Submission struct {
	Week                int        `json:"week"`
	MemberID            string     `json:"memberId"`
	Species             string     `json:"species"`
	Description         string     `json:"description,omitempty"`
	Photos              []string   `json:"photos"`
	SubmittedAt         time.Time  `json:"submittedAt"`
	ResubmittedAt       *time.Time `json:"resubmittedAt,omitempty"`
	PreviousSubmittedAt *time.Time `json:"previousSubmittedAt,omitempty"`
}

// Judgment is one head-to-head verdict keyed by (Week, MemberA, MemberB).
// Winner holds the winning member's ID; everything the judge produced
// beyond that rides along untouched in Result.
type Judgment struct {
	Week     int             `json:"week"`
	MemberA  string          `json:"memberA"`
	MemberB  string          `json:"memberB"`
	Winner   string          `json:"winner"`
	JudgedAt time.Time       `json:"judgedAt"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// Dataset is the full persisted document. Exactly one dataset is current at
// any time; the primary file holds its JSON serialization.
type Dataset struct {
	Members     []Member     `json:"members"`
	Schedule    []Week       `json:"schedule"`
	Submissions []Submission `json:"submissions"`
	Judgments   []Judgment   `json:"judgments"`
}

// StandingRow is one computed standings entry. Standings are derived from
// judgments on every call, never stored.
type StandingRow struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// normalize replaces nil collections with empty ones so serialized output
// always carries all four top-level arrays.
func (d *Dataset) normalize() {
	if d.Members == nil {
		d.Members = []Member{}
	}
	if d.Schedule == nil {
		d.Schedule = []Week{}
	}
	if d.Submissions == nil {
		d.Submissions = []Submission{}
	}
	if d.Judgments == nil {
		d.Judgments = []Judgment{}
	}
}
