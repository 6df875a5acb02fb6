package model

import (
	"fmt"
	"strings"
)

// Bucket is the coarse status category a member row occupies.
type Bucket string

const (
	BucketUnassigned Bucket = "unassigned"
	BucketActive     Bucket = "active"
	BucketInactive   Bucket = "inactive"
)

var Buckets = []Bucket{BucketUnassigned, BucketActive, BucketInactive}

// Rank orders buckets for de-duplication: a member seen mid-reassignment reads
// as unassigned rather than a stale active/inactive row.
func (b Bucket) Rank() int {
	switch b {
	case BucketUnassigned:
		return 3
	case BucketActive:
		return 2
	case BucketInactive:
		return 1
	default:
		return 0
	}
}

func (b Bucket) Label() string {
	switch b {
	case BucketUnassigned:
		return "Unassigned"
	case BucketActive:
		return "Active"
	case BucketInactive:
		return "Inactive"
	default:
		return "-"
	}
}

func ParseBucket(s string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unassigned":
		return BucketUnassigned, nil
	case "active":
		return BucketActive, nil
	case "inactive":
		return BucketInactive, nil
	default:
		return "", fmt.Errorf("invalid status %q (want unassigned|active|inactive)", s)
	}
}

// RosterRow is one managed entity in the member directory. Assignment is nil
// for unassigned members.
type RosterRow struct {
	MemberID   int64       `json:"memberId"`
	Bucket     Bucket      `json:"bucket"`
	Member     Member      `json:"member"`
	Assignment *TeamMember `json:"assignment,omitempty"`
}

// Key identifies the row: assigned rows by assignment, unassigned rows by
// member. A member on several teams has one row per assignment.
func (r RosterRow) Key() string {
	if r.Assignment != nil {
		return AssignmentRowKey(r.Assignment.ID)
	}
	return MemberRowKey(r.MemberID)
}

func MemberRowKey(memberID int64) string { return "m:" + IDKey(memberID) }

func AssignmentRowKey(assignmentID int64) string { return "a:" + IDKey(assignmentID) }

func (r RosterRow) TeamName() string {
	if r.Assignment == nil {
		return ""
	}
	return r.Assignment.TeamName
}

func UnassignedRow(m Member) RosterRow {
	return RosterRow{MemberID: m.ID, Bucket: BucketUnassigned, Member: m}
}

func AssignedRow(tm TeamMember) RosterRow {
	b := BucketInactive
	if tm.IsActive {
		b = BucketActive
	}
	a := tm
	m := tm.Member
	if m.ID == 0 {
		m.ID = tm.MemberID
	}
	return RosterRow{MemberID: tm.MemberID, Bucket: b, Member: m, Assignment: &a}
}
