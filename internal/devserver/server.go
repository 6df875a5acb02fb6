// Package devserver serves the membership REST API from memory so the client
// can be exercised without a deployment.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"clubhub-cli/internal/model"
	"clubhub-cli/internal/mutate"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	// Data replaces the seed dataset when non-nil.
	Data *Dataset
	// Token, when set, must be presented as a bearer token.
	Token string
	// Lag delays every response.
	Lag    time.Duration
	Logger *slog.Logger
}

type Server struct {
	mu     sync.Mutex
	data   Dataset
	nextID int64

	token string
	lag   atomic.Int64
	log   *slog.Logger
}

func New(opts Options) *Server {
	d := Seed()
	if opts.Data != nil {
		d = opts.Data.clone()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{data: d, token: opts.Token, log: log, nextID: 1000}
	s.lag.Store(int64(opts.Lag))
	return s
}

// SetLag changes the response delay for subsequent requests.
func (s *Server) SetLag(d time.Duration) { s.lag.Store(int64(d)) }

// Snapshot returns a copy of the current dataset.
func (s *Server) Snapshot() Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone()
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.delay)
	r.Use(s.auth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/teams", s.listTeams)
		r.Post("/teams", s.createTeam)
		r.Get("/roles", s.listRoles)
		r.Get("/subteams", s.listSubteams)
		r.Get("/members/unassigned", s.listUnassigned)
		r.Patch("/members/{id}", s.updateMember)
		r.Get("/team-members", s.listTeamMembers)
		r.Post("/team-members/assign", s.assign)
		r.Post("/team-members/{id}/transfer", s.transfer)
		r.Post("/team-members/{id}/role", s.changeRole)
		r.Post("/team-members/{id}/status", s.updateStatus)
		r.Get("/projects", s.listProjects)
		r.Get("/projects/{id}/tasks", s.listTasks)
		r.Patch("/tasks/{id}", s.updateTask)
		r.Delete("/tasks/{id}", s.deleteTask)
		r.Get("/alumni", s.listAlumni)
	})
	return r
}

// ListenAndServe runs the server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("devserver_listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d := time.Duration(s.lag.Load()); d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		s.log.Debug("devserver_request", "method", r.Method, "path", r.URL.Path, "request_id", r.Header.Get("X-Request-ID"))
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg, "error": http.StatusText(status)})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}

// validate rejects actions the way the real API's request validation does.
func validate(w http.ResponseWriter, a mutate.Action) bool {
	if fe := mutate.Validate(a); len(fe) > 0 {
		writeError(w, http.StatusBadRequest, mutate.ValidationError{Fields: fe}.Error())
		return false
	}
	return true
}

func (s *Server) listTeams(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.data.Teams))
}

func (s *Server) createTeam(w http.ResponseWriter, r *http.Request) {
	var a mutate.CreateTeam
	if !decode(w, r, &a) || !validate(w, a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.data.Teams {
		if strings.EqualFold(t.Name, a.TeamName) {
			writeError(w, http.StatusConflict, "Duplicate team name")
			return
		}
	}
	s.nextID++
	t := model.Team{ID: s.nextID, Name: a.TeamName, Description: a.Description, IsActive: true}
	s.data.Teams = append(s.data.Teams, t)
	s.log.Info("devserver_create_team", "team_id", t.ID)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) listRoles(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.data.Roles))
}

func (s *Server) listSubteams(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.ParseInt(r.URL.Query().Get("teamId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "teamId is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Subteam{}
	for _, st := range s.data.Subteams {
		if st.TeamID == teamID {
			out = append(out, st)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listUnassigned(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assigned := map[int64]bool{}
	for _, a := range s.data.Assignments {
		assigned[a.MemberID] = true
	}
	out := []model.Member{}
	for _, m := range s.data.Members {
		if !assigned[m.ID] {
			out = append(out, m)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listTeamMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var teamID *int64
	if v := q.Get("teamId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "teamId must be a number")
			return
		}
		teamID = &id
	}
	var active *bool
	if v := q.Get("isActive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "isActive must be true or false")
			return
		}
		active = &b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.TeamMember{}
	for _, a := range s.data.Assignments {
		if teamID != nil && a.TeamID != *teamID {
			continue
		}
		if active != nil && a.IsActive != *active {
			continue
		}
		out = append(out, s.expand(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// expand fills the display names of an assignment. Caller holds s.mu.
func (s *Server) expand(a model.TeamMember) model.TeamMember {
	if m, ok := s.member(a.MemberID); ok {
		a.Member = m
	}
	if t, ok := s.team(a.TeamID); ok {
		a.TeamName = t.Name
	}
	if rl, ok := s.role(a.RoleID); ok {
		a.RoleName = rl.Name
	}
	a.SubteamName = ""
	if a.SubteamID != nil {
		for _, st := range s.data.Subteams {
			if st.ID == *a.SubteamID {
				a.SubteamName = st.Name
			}
		}
	}
	return a
}

func (s *Server) member(id int64) (model.Member, bool) {
	for _, m := range s.data.Members {
		if m.ID == id {
			return m, true
		}
	}
	return model.Member{}, false
}

func (s *Server) team(id int64) (model.Team, bool) {
	for _, t := range s.data.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return model.Team{}, false
}

func (s *Server) role(id int64) (model.Role, bool) {
	for _, r := range s.data.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return model.Role{}, false
}

func (s *Server) assignment(id int64) int {
	for i, a := range s.data.Assignments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// checkPlacement reports why memberID cannot hold roleID on teamID. skip is an
// assignment id ignored in the duplicate check.
func (s *Server) checkPlacement(memberID, teamID, roleID, skip int64) (int, string) {
	if _, ok := s.team(teamID); !ok {
		return http.StatusNotFound, "Team not found"
	}
	rl, ok := s.role(roleID)
	if !ok {
		return http.StatusNotFound, "Role not found"
	}
	if rl.TeamID != nil && *rl.TeamID != teamID {
		return http.StatusBadRequest, "Role does not belong to team"
	}
	for _, a := range s.data.Assignments {
		if a.ID != skip && a.MemberID == memberID && a.TeamID == teamID {
			return http.StatusConflict, "Member is already assigned to this team"
		}
	}
	return 0, ""
}

func (s *Server) assign(w http.ResponseWriter, r *http.Request) {
	var a mutate.Assign
	if !decode(w, r, &a) || !validate(w, a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.member(a.MemberID); !ok {
		writeError(w, http.StatusNotFound, "Member not found")
		return
	}
	if status, msg := s.checkPlacement(a.MemberID, a.TeamID, a.RoleID, 0); status != 0 {
		writeError(w, status, msg)
		return
	}
	s.nextID++
	tm := model.TeamMember{ID: s.nextID, MemberID: a.MemberID, TeamID: a.TeamID, RoleID: a.RoleID, IsActive: true}
	s.data.Assignments = append(s.data.Assignments, tm)
	s.log.Info("devserver_assign", "member_id", a.MemberID, "team_id", a.TeamID)
	writeJSON(w, http.StatusCreated, s.expand(tm))
}

func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}
	var a mutate.Transfer
	if !decode(w, r, &a) {
		return
	}
	a.AssignmentID = id
	if !validate(w, a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.assignment(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Assignment not found")
		return
	}
	cur := s.data.Assignments[i]
	if status, msg := s.checkPlacement(cur.MemberID, a.NewTeamID, a.NewRoleID, id); status != 0 {
		writeError(w, status, msg)
		return
	}
	cur.TeamID, cur.RoleID, cur.SubteamID, cur.IsActive = a.NewTeamID, a.NewRoleID, nil, true
	s.data.Assignments[i] = cur
	writeJSON(w, http.StatusOK, s.expand(cur))
}

func (s *Server) changeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}
	var a mutate.ChangeRole
	if !decode(w, r, &a) {
		return
	}
	a.AssignmentID = id
	if !validate(w, a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.assignment(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Assignment not found")
		return
	}
	cur := s.data.Assignments[i]
	if status, msg := s.checkPlacement(cur.MemberID, cur.TeamID, a.NewRoleID, id); status != 0 {
		writeError(w, status, msg)
		return
	}
	cur.RoleID, cur.SubteamID = a.NewRoleID, a.NewSubteamID
	s.data.Assignments[i] = cur
	writeJSON(w, http.StatusOK, s.expand(cur))
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}
	var a mutate.UpdateStatus
	if !decode(w, r, &a) {
		return
	}
	a.AssignmentID = id
	if !validate(w, a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.assignment(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Assignment not found")
		return
	}
	s.data.Assignments[i].IsActive = a.IsActive
	writeJSON(w, http.StatusOK, s.expand(s.data.Assignments[i]))
}

func (s *Server) updateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid member id")
		return
	}
	a := mutate.UpdateMember{MemberID: id}
	if !decode(w, r, &a.Fields) || !validate(w, a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.data.Members {
		if m.ID != id {
			continue
		}
		if err := patch(&m, a.Fields); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		m.ID = id
		s.data.Members[i] = m
		writeJSON(w, http.StatusOK, m)
		return
	}
	writeError(w, http.StatusNotFound, "Member not found")
}

func (s *Server) listProjects(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.data.Projects))
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid project id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, p := range s.data.Projects {
		found = found || p.ID == id
	}
	if !found {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	out := []model.Task{}
	for _, t := range s.data.Tasks {
		if t.ProjectID == id {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	a := mutate.UpdateTask{TaskID: id}
	if !decode(w, r, &a.Fields) || !validate(w, a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.data.Tasks {
		if t.ID != id {
			continue
		}
		if err := patch(&t, a.Fields); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t.ID = id
		s.data.Tasks[i] = t
		writeJSON(w, http.StatusOK, t)
		return
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.data.Tasks {
		if t.ID == id {
			s.data.Tasks = append(s.data.Tasks[:i], s.data.Tasks[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (s *Server) listAlumni(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.data.Alumni))
}

// patch overlays fields onto v through its JSON form.
func patch(v any, fields map[string]any) error {
	cur, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m := map[string]any{}
	if err := json.Unmarshal(cur, &m); err != nil {
		return err
	}
	for k, val := range fields {
		m[k] = val
	}
	next, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(next, v); err != nil {
		return fmt.Errorf("invalid field value: %w", err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
