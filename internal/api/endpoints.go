package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"clubhub-cli/internal/model"
	"clubhub-cli/internal/mutate"
)

var _ mutate.Backend = (*Client)(nil)

func (c *Client) ListTeams(ctx context.Context) ([]model.Team, error) {
	var out []model.Team
	if err := c.do(ctx, http.MethodGet, "/api/teams", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTeam(ctx context.Context, a mutate.CreateTeam) (model.Team, error) {
	var out model.Team
	err := c.do(ctx, http.MethodPost, "/api/teams", nil, a, &out)
	return out, err
}

func (c *Client) ListRoles(ctx context.Context) ([]model.Role, error) {
	var out []model.Role
	if err := c.do(ctx, http.MethodGet, "/api/roles", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListSubteams(ctx context.Context, teamID int64) ([]model.Subteam, error) {
	q := url.Values{"teamId": {strconv.FormatInt(teamID, 10)}}
	var out []model.Subteam
	if err := c.do(ctx, http.MethodGet, "/api/subteams", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListUnassignedMembers(ctx context.Context) ([]model.Member, error) {
	var out []model.Member
	if err := c.do(ctx, http.MethodGet, "/api/members/unassigned", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TeamMemberQuery narrows the assignment listing. Nil fields are not sent.
type TeamMemberQuery struct {
	TeamID   *int64
	IsActive *bool
}

func (q TeamMemberQuery) values() url.Values {
	v := url.Values{}
	if q.TeamID != nil {
		v.Set("teamId", strconv.FormatInt(*q.TeamID, 10))
	}
	if q.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*q.IsActive))
	}
	return v
}

func (c *Client) ListTeamMembers(ctx context.Context, q TeamMemberQuery) ([]model.TeamMember, error) {
	var out []model.TeamMember
	if err := c.do(ctx, http.MethodGet, "/api/team-members", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Assign(ctx context.Context, a mutate.Assign) error {
	return c.do(ctx, http.MethodPost, "/api/team-members/assign", nil, a, nil)
}

func (c *Client) Transfer(ctx context.Context, a mutate.Transfer) error {
	return c.do(ctx, http.MethodPost, idPath("/api/team-members/%s/transfer", a.AssignmentID), nil, a, nil)
}

func (c *Client) ChangeRole(ctx context.Context, a mutate.ChangeRole) error {
	return c.do(ctx, http.MethodPost, idPath("/api/team-members/%s/role", a.AssignmentID), nil, a, nil)
}

func (c *Client) UpdateStatus(ctx context.Context, a mutate.UpdateStatus) error {
	return c.do(ctx, http.MethodPost, idPath("/api/team-members/%s/status", a.AssignmentID), nil, a, nil)
}

func (c *Client) UpdateMember(ctx context.Context, a mutate.UpdateMember) (model.Member, error) {
	var out model.Member
	err := c.do(ctx, http.MethodPatch, idPath("/api/members/%s", a.MemberID), nil, a.Fields, &out)
	return out, err
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTasks(ctx context.Context, projectID int64) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, idPath("/api/projects/%s/tasks", projectID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateTask(ctx context.Context, a mutate.UpdateTask) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPatch, idPath("/api/tasks/%s", a.TaskID), nil, a.Fields, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, a mutate.DeleteTask) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/tasks/%s", a.TaskID), nil, nil, nil)
}

func (c *Client) ListAlumni(ctx context.Context) ([]model.Alumni, error) {
	var out []model.Alumni
	if err := c.do(ctx, http.MethodGet, "/api/alumni", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
