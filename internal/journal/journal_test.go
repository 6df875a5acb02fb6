package journal

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"clubhub-cli/internal/mutate"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	j.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	if _, err := j.Record(ctx, mutate.Assign{MemberID: 7, TeamID: 2, RoleID: 4}, errors.New("Member is already assigned to this team")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := j.Record(ctx, mutate.DeleteTask{TaskID: 3}, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Action != "delete-task" || got[0].Outcome != OutcomeOK || got[0].Message != "" {
		t.Fatalf("unexpected newest entry: %#v", got[0])
	}
	if got[1].Action != "assign" || got[1].Target != "member:7" || got[1].Outcome != OutcomeError {
		t.Fatalf("unexpected oldest entry: %#v", got[1])
	}
	if got[1].Payload != `{"memberId":7,"teamId":2,"roleId":4}` {
		t.Fatalf("unexpected payload: %s", got[1].Payload)
	}
	if !got[1].At.Equal(base.Add(time.Second)) {
		t.Fatalf("unexpected timestamp: %v", got[1].At)
	}

	limited, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(limited) != 1 || limited[0].Action != "delete-task" {
		t.Fatalf("limit not applied: %#v", limited)
	}
}

func TestJournal_ObserverRecords(t *testing.T) {
	j := openTemp(t)
	obs := j.Observer(nil)
	obs(mutate.StatusChange(3, false, "graduated"), nil)

	got, err := j.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Action != "update-status" || got[0].Target != "assignment:3" {
		t.Fatalf("unexpected entries: %#v", got)
	}
}

func TestJournal_ReopenKeepsEntries(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	j, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := j.Record(ctx, mutate.DeleteTask{TaskID: 1}, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = j.Close()

	j2, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j2.Close()
	got, err := j2.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected entry to survive reopen, got %d", len(got))
	}
}

func TestUIState_SaveLoad_RoundTrip(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	st0, err := j.LoadUIState(ctx)
	if err != nil {
		t.Fatalf("LoadUIState: %v", err)
	}
	if st0 == nil || st0.Version != 1 {
		t.Fatalf("expected default Version=1; got %#v", st0)
	}

	want := &UIState{Version: 1, Page: "projects", MemberTeamID: 2, MemberStatus: "active", ProjectID: 1}
	if err := j.SaveUIState(ctx, want); err != nil {
		t.Fatalf("SaveUIState: %v", err)
	}
	got, err := j.LoadUIState(ctx)
	if err != nil {
		t.Fatalf("LoadUIState (after save): %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("roundtrip mismatch:\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestUIState_CorruptLoadsDefault(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()
	if _, err := j.db.ExecContext(ctx, `INSERT INTO ui_state(k, v) VALUES(?, ?)`, uiStateKey, "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	st, err := j.LoadUIState(ctx)
	if err != nil {
		t.Fatalf("LoadUIState: %v", err)
	}
	if st.Version != 1 || st.Page != "" {
		t.Fatalf("expected default state, got %#v", st)
	}
}
