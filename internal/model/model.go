package model

import (
	"strconv"
	"strings"
)

type Team struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

type Role struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	TeamID *int64 `json:"teamId,omitempty"`
}

type Subteam struct {
	ID     int64  `json:"id"`
	TeamID int64  `json:"teamId"`
	Name   string `json:"name"`
}

type Member struct {
	ID             int64  `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Major          string `json:"major,omitempty"`
	GraduationYear *int   `json:"graduationYear,omitempty"`
}

func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// TeamMember is one assignment of a member to a team. ID is the assignment id,
// not the member id.
type TeamMember struct {
	ID          int64  `json:"id"`
	MemberID    int64  `json:"memberId"`
	Member      Member `json:"member"`
	TeamID      int64  `json:"teamId"`
	TeamName    string `json:"teamName"`
	RoleID      int64  `json:"roleId"`
	RoleName    string `json:"roleName"`
	SubteamID   *int64 `json:"subteamId,omitempty"`
	SubteamName string `json:"subteamName,omitempty"`
	IsActive    bool   `json:"isActive"`
}

type Alumni struct {
	ID             int64  `json:"id"`
	MemberID       *int64 `json:"memberId,omitempty"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email,omitempty"`
	GraduationYear int    `json:"graduationYear"`
	LastTeam       string `json:"lastTeam,omitempty"`
	LastRole       string `json:"lastRole,omitempty"`
	Employer       string `json:"employer,omitempty"`
}

type Project struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	TeamID int64  `json:"teamId"`
	Status string `json:"status,omitempty"`
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskBlocked    TaskStatus = "BLOCKED"
)

var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskCompleted, TaskBlocked}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	Difficulty  Difficulty `json:"difficulty"`
	AssigneeID  *int64     `json:"assigneeId,omitempty"`
}

// Key is the identity used by list reconciliation.
func (t Task) Key() string { return IDKey(t.ID) }

func IDKey(id int64) string { return strconv.FormatInt(id, 10) }
