package model

import "time"

// SessionKind distinguishes in-person lessons (which carry travel
// implications) from remote ones.
type SessionKind string

const (
	KindInPerson SessionKind = "in_person"
	KindRemote   SessionKind = "remote"
)

// GeoPoint is an already-resolved coordinate pair; geocoding happens upstream.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// Student holds the per-student scheduling defaults a booking falls back to
// when it carries no overrides of its own.
type Student struct {
	ID              string
	TutorID         string
	Name            string
	Phone           string // WhatsApp-reachable number, may be empty
	DefaultKind     SessionKind
	DefaultTime     string // "HH:MM", may be empty
	DefaultDuration int    // minutes, 0 means unset
	DefaultLocation *GeoPoint
	CreatedAt       time.Time
}

// Group is a named set of students taught together. Its sessions occupy a
// single interval regardless of member count.
type Group struct {
	ID              string
	TutorID         string
	Name            string
	DefaultKind     SessionKind
	DefaultTime     string
	DefaultDuration int
	DefaultLocation *GeoPoint
	CreatedAt       time.Time
}

// Session is an individual booking on a calendar day. Time, duration, kind
// and location are overrides; empty/zero values defer to the student's
// defaults.
type Session struct {
	ID        string
	TutorID   string
	StudentID string
	Date      string // "YYYY-MM-DD"
	Time      string // "HH:MM" override, may be empty
	Duration  int    // minutes override, 0 means unset
	Kind      SessionKind
	Location  *GeoPoint
	Status    string // scheduled | completed | cancelled | excused
	CreatedAt time.Time
}

// GroupSession is a booking for a whole group; kind and location come from
// the group's defaults.
type GroupSession struct {
	ID       string
	TutorID  string
	GroupID  string
	Date     string
	Time     string
	Duration int
	Status   string
}

// Settings are the per-tutor business settings that bound the slot scan.
type Settings struct {
	TutorID   string
	WorkStart string // "HH:MM"
	WorkEnd   string // "HH:MM"
}

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusExcused   = "excused"
)
