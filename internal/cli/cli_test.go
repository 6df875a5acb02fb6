package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"clubhub-cli/internal/devserver"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// setup isolates the config dir and starts a dev server; it returns the
// leading args every command needs.
func setup(t *testing.T) []string {
	t.Helper()
	t.Setenv("CLUBHUB_CONFIG_DIR", t.TempDir())
	ts := httptest.NewServer(devserver.New(devserver.Options{}).Handler())
	t.Cleanup(ts.Close)
	return []string{"--api", ts.URL}
}

func mustData(t *testing.T, base []string, args ...string) any {
	t.Helper()
	all := append(append([]string{}, base...), args...)
	stdout, stderr, err := runCLI(t, all)
	if err != nil {
		t.Fatalf("command failed: clubhub %v\nerr: %v\nstderr:\n%s", all, err, stderr)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout: %v\nstdout:\n%s", err, stdout)
	}
	data, ok := env["data"]
	if !ok {
		t.Fatalf("expected data key; got %v", env)
	}
	return data
}

func TestTeamsList(t *testing.T) {
	base := setup(t)
	teams, _ := mustData(t, base, "teams", "list").([]any)
	if len(teams) != 3 {
		t.Fatalf("expected 3 teams, got %d", len(teams))
	}
}

func TestTeamsCreate(t *testing.T) {
	base := setup(t)
	mustData(t, base, "teams", "create", "--name", "Delta")

	teams, _ := mustData(t, base, "teams", "list").([]any)
	if len(teams) != 4 {
		t.Fatalf("expected 4 teams after create, got %d", len(teams))
	}

	_, stderr, err := runCLI(t, append(append([]string{}, base...), "teams", "create", "--name", "delta"))
	if err == nil {
		t.Fatalf("expected duplicate name to fail")
	}
	if got := strings.TrimSpace(string(stderr)); got != "A record with the same details already exists." {
		t.Fatalf("unexpected stderr: %q", got)
	}
}

func TestMembersList_Filters(t *testing.T) {
	base := setup(t)

	all, _ := mustData(t, base, "members", "list").([]any)
	if len(all) != 12 {
		t.Fatalf("expected 12 members in merged view, got %d", len(all))
	}
	un, _ := mustData(t, base, "members", "list", "--status", "unassigned").([]any)
	if len(un) != 4 {
		t.Fatalf("expected 4 unassigned, got %d", len(un))
	}
	alpha, _ := mustData(t, base, "members", "list", "--team", "1", "--status", "inactive").([]any)
	if len(alpha) != 1 {
		t.Fatalf("expected 1 inactive Alpha member, got %d", len(alpha))
	}
	row := alpha[0].(map[string]any)
	if row["team"] != "Alpha" || row["status"] != "inactive" {
		t.Fatalf("unexpected row: %v", row)
	}

	_, stderr, err := runCLI(t, append(base, "members", "list", "--status", "gone"))
	if err == nil || !strings.Contains(string(stderr), "invalid status") {
		t.Fatalf("expected invalid status error, got err=%v stderr=%s", err, stderr)
	}
}

func TestMembersAssign_ConflictShowsFriendlyMessage(t *testing.T) {
	base := setup(t)
	_, stderr, err := runCLI(t, append(base, "members", "assign", "--member", "7", "--team", "3", "--role", "1"))
	if err == nil {
		t.Fatalf("expected assign to fail")
	}
	if got := strings.TrimSpace(strings.Split(string(stderr), "\n")[0]); got != "This member is already on that team." {
		t.Fatalf("unexpected message: %q", got)
	}

	hist, _ := mustData(t, base, "history").([]any)
	if len(hist) != 1 || hist[0].(map[string]any)["outcome"] != "error" {
		t.Fatalf("expected one failed journal entry, got %v", hist)
	}
}

func TestMembersAssign_ValidationNotSent(t *testing.T) {
	base := setup(t)
	_, stderr, err := runCLI(t, append(base, "members", "assign", "--member", "9"))
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	out := string(stderr)
	if !strings.Contains(out, "roleId: must be selected") || !strings.Contains(out, "teamId: must be selected") {
		t.Fatalf("expected inline field errors, got:\n%s", out)
	}

	hist, _ := mustData(t, base, "history").([]any)
	if len(hist) != 0 {
		t.Fatalf("validation failures must not be submitted; journal has %v", hist)
	}
}

func TestMembersAssignThenStatus(t *testing.T) {
	base := setup(t)
	mustData(t, base, "members", "assign", "--member", "9", "--team", "2", "--role", "1", "--reason", "joined")

	beta, _ := mustData(t, base, "members", "list", "--team", "2", "--status", "active").([]any)
	var assignmentID float64
	for _, r := range beta {
		m := r.(map[string]any)
		if m["memberId"] == float64(9) {
			assignmentID, _ = m["assignmentId"].(float64)
		}
	}
	if assignmentID == 0 {
		t.Fatalf("member 9 not listed on Beta: %v", beta)
	}

	mustData(t, base, "members", "status", "--assignment", jsonNum(assignmentID), "--active=false", "--reason", "semester abroad")
	inactive, _ := mustData(t, base, "members", "list", "--team", "2", "--status", "inactive").([]any)
	found := false
	for _, r := range inactive {
		found = found || r.(map[string]any)["memberId"] == float64(9)
	}
	if !found {
		t.Fatalf("member 9 should be inactive on Beta: %v", inactive)
	}

	hist, _ := mustData(t, base, "history", "--limit", "1").([]any)
	if len(hist) != 1 || hist[0].(map[string]any)["action"] != "update-status" {
		t.Fatalf("unexpected newest journal entry: %v", hist)
	}
}

func TestTasksSetAndDelete(t *testing.T) {
	base := setup(t)
	mustData(t, base, "tasks", "set", "--task", "2", "--status", "completed")

	tasks, _ := mustData(t, base, "tasks", "list", "--project", "1").([]any)
	for _, x := range tasks {
		m := x.(map[string]any)
		if m["id"] == float64(2) && m["status"] != "COMPLETED" {
			t.Fatalf("task 2 not updated: %v", m)
		}
	}

	_, stderr, err := runCLI(t, append(base, "tasks", "set", "--task", "2", "--status", "done"))
	if err == nil || !strings.Contains(string(stderr), "status: must be one of") {
		t.Fatalf("expected status validation error, got err=%v stderr=%s", err, stderr)
	}

	mustData(t, base, "tasks", "delete", "--task", "2")
	tasks, _ = mustData(t, base, "tasks", "list", "--project", "1").([]any)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks after delete, got %d", len(tasks))
	}
}

func TestConfigShow_RedactsToken(t *testing.T) {
	base := setup(t)
	cfg, _ := mustData(t, append(base, "--token", "s3cret"), "config", "show").(map[string]any)
	if cfg["api.token"] != "********" {
		t.Fatalf("token not redacted: %v", cfg["api.token"])
	}
	if cfg["nav.close_delay"] != "150ms" {
		t.Fatalf("unexpected close delay: %v", cfg["nav.close_delay"])
	}
}

func TestTableFormat(t *testing.T) {
	base := setup(t)
	stdout, stderr, err := runCLI(t, append(base, "--format", "table", "alumni", "list"))
	if err != nil {
		t.Fatalf("alumni list: %v\n%s", err, stderr)
	}
	if !strings.Contains(string(stdout), "Ritchie") {
		t.Fatalf("expected table output, got:\n%s", stdout)
	}
}

func jsonNum(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

func TestDocs(t *testing.T) {
	base := setup(t)
	data, _ := mustData(t, base, "docs").(map[string]any)
	topics, _ := data["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected topics, got %v", data)
	}

	stdout, _, err := runCLI(t, append(base, "docs", "navigation", "--raw"))
	if err != nil {
		t.Fatalf("docs navigation: %v", err)
	}
	if !strings.HasPrefix(string(stdout), "# Navigation") {
		t.Fatalf("expected raw markdown, got:\n%s", stdout)
	}

	_, stderr, err := runCLI(t, append(base, "docs", "nope"))
	if err == nil || !strings.Contains(string(stderr), "unknown docs topic") {
		t.Fatalf("expected unknown topic error; got %v %s", err, stderr)
	}
}
