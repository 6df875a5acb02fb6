package devserver

import (
	"strings"

	"clubhub-cli/internal/model"
)

// Dataset is the in-memory state served by the dev server. Assignments carry
// only ids; names are filled in when they are served.
type Dataset struct {
	Teams       []model.Team
	Roles       []model.Role
	Subteams    []model.Subteam
	Members     []model.Member
	Assignments []model.TeamMember
	Projects    []model.Project
	Tasks       []model.Task
	Alumni      []model.Alumni
}

func (d Dataset) clone() Dataset {
	return Dataset{
		Teams:       append([]model.Team(nil), d.Teams...),
		Roles:       append([]model.Role(nil), d.Roles...),
		Subteams:    append([]model.Subteam(nil), d.Subteams...),
		Members:     append([]model.Member(nil), d.Members...),
		Assignments: append([]model.TeamMember(nil), d.Assignments...),
		Projects:    append([]model.Project(nil), d.Projects...),
		Tasks:       append([]model.Task(nil), d.Tasks...),
		Alumni:      append([]model.Alumni(nil), d.Alumni...),
	}
}

func ptr[T any](v T) *T { return &v }

// Seed returns a small club: three teams, twelve members of whom four are
// unassigned, two projects with tasks, and a few alumni.
func Seed() Dataset {
	names := [][2]string{
		{"Ada", "Lovelace"}, {"Alan", "Turing"}, {"Grace", "Hopper"}, {"Edsger", "Dijkstra"},
		{"Barbara", "Liskov"}, {"Ken", "Thompson"}, {"Rob", "Pike"}, {"Margaret", "Hamilton"},
		{"Donald", "Knuth"}, {"Frances", "Allen"}, {"John", "McCarthy"}, {"Radia", "Perlman"},
	}
	majors := []string{"Computer Science", "Electrical Engineering", "Mathematics", "Physics"}
	var members []model.Member
	for i, n := range names {
		id := int64(i + 1)
		members = append(members, model.Member{
			ID:             id,
			FirstName:      n[0],
			LastName:       n[1],
			Email:          strings.ToLower(n[0] + "." + n[1]) + "@club.example",
			Major:          majors[i%len(majors)],
			GraduationYear: ptr(2026 + i%4),
		})
	}

	return Dataset{
		Teams: []model.Team{
			{ID: 1, Name: "Alpha", Description: "Autonomy and controls", IsActive: true},
			{ID: 2, Name: "Beta", Description: "Embedded systems", IsActive: true},
			{ID: 3, Name: "Gamma", Description: "Outreach", IsActive: true},
		},
		Roles: []model.Role{
			{ID: 1, Name: "Member"},
			{ID: 2, Name: "Team Lead"},
			{ID: 3, Name: "Firmware Engineer", TeamID: ptr[int64](2)},
			{ID: 4, Name: "Controls Engineer", TeamID: ptr[int64](1)},
		},
		Subteams: []model.Subteam{
			{ID: 1, TeamID: 1, Name: "Perception"},
			{ID: 2, TeamID: 1, Name: "Planning"},
			{ID: 3, TeamID: 2, Name: "Power"},
		},
		Members: members,
		Assignments: []model.TeamMember{
			{ID: 1, MemberID: 1, TeamID: 1, RoleID: 2, IsActive: true},
			{ID: 2, MemberID: 2, TeamID: 1, RoleID: 4, SubteamID: ptr[int64](1), IsActive: true},
			{ID: 3, MemberID: 3, TeamID: 1, RoleID: 1, IsActive: false},
			{ID: 4, MemberID: 4, TeamID: 2, RoleID: 2, IsActive: true},
			{ID: 5, MemberID: 5, TeamID: 2, RoleID: 3, SubteamID: ptr[int64](3), IsActive: true},
			{ID: 6, MemberID: 6, TeamID: 2, RoleID: 1, IsActive: false},
			{ID: 7, MemberID: 7, TeamID: 3, RoleID: 1, IsActive: true},
			{ID: 8, MemberID: 8, TeamID: 3, RoleID: 2, IsActive: true},
		},
		Projects: []model.Project{
			{ID: 1, Name: "Rover v2", TeamID: 1, Status: "ACTIVE"},
			{ID: 2, Name: "Battery monitor", TeamID: 2, Status: "ACTIVE"},
		},
		Tasks: []model.Task{
			{ID: 1, ProjectID: 1, Title: "Lidar driver", Description: "Port the **lidar** driver to the new board.\n\n- read frames\n- publish scans", Status: model.TaskInProgress, Priority: model.PriorityHigh, Difficulty: model.DifficultyHard, AssigneeID: ptr[int64](2)},
			{ID: 2, ProjectID: 1, Title: "Path planner tests", Status: model.TaskTodo, Priority: model.PriorityMedium, Difficulty: model.DifficultyMedium},
			{ID: 3, ProjectID: 1, Title: "Chassis CAD", Status: model.TaskCompleted, Priority: model.PriorityLow, Difficulty: model.DifficultyEasy, AssigneeID: ptr[int64](1)},
			{ID: 4, ProjectID: 2, Title: "Cell balancing", Description: "Balance cells within 10 mV.", Status: model.TaskBlocked, Priority: model.PriorityUrgent, Difficulty: model.DifficultyHard, AssigneeID: ptr[int64](5)},
			{ID: 5, ProjectID: 2, Title: "Telemetry over CAN", Status: model.TaskTodo, Priority: model.PriorityMedium, Difficulty: model.DifficultyMedium},
		},
		Alumni: []model.Alumni{
			{ID: 1, FirstName: "Dennis", LastName: "Ritchie", Email: "dmr@alumni.example", GraduationYear: 2021, LastTeam: "Beta", LastRole: "Team Lead", Employer: "Bell Labs"},
			{ID: 2, FirstName: "Niklaus", LastName: "Wirth", GraduationYear: 2022, LastTeam: "Alpha", LastRole: "Member"},
		},
	}
}
