package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type task struct {
	id     string
	status string
}

type filter struct {
	project string
}

type fakeServer struct {
	tasks map[string][]task
	calls int
	fail  error
}

func (s *fakeServer) load(_ context.Context, f filter) ([]task, error) {
	s.calls++
	if s.fail != nil {
		return nil, s.fail
	}
	out := make([]task, len(s.tasks[f.project]))
	copy(out, s.tasks[f.project])
	return out, nil
}

func setTaskField(t *task, field string, value any) error {
	switch field {
	case "status":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("status: want string, got %T", value)
		}
		t.status = s
		return nil
	default:
		return fmt.Errorf("unknown field %q", field)
	}
}

func newTaskList(s *fakeServer) *List[filter, task] {
	return New[filter, task](s.load, Options[task]{
		Key:      func(t task) string { return t.id },
		SetField: setTaskField,
	})
}

type fakeMutation struct {
	effect Effect
	err    error
	apply  func()
	calls  int
}

func (m *fakeMutation) Do(context.Context) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	if m.apply != nil {
		m.apply()
	}
	return nil
}

func (m *fakeMutation) Effect() Effect { return m.effect }

func TestLoad_IsIdempotent(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"p1": {{id: "1", status: "TODO"}, {id: "2", status: "TODO"}}}}
	l := newTaskList(s)

	first, err := l.Load(context.Background(), filter{project: "p1"})
	require.NoError(t, err)
	second, err := l.Load(context.Background(), filter{project: "p1"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, s.calls)
}

func TestApply_DropsStaleResults(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{
		"old": {{id: "1"}},
		"new": {{id: "2"}},
	}}
	l := newTaskList(s)
	ctx := context.Background()

	oldTicket := l.Begin(filter{project: "old"})
	newTicket := l.Begin(filter{project: "new"})

	newRes := l.Fetch(ctx, newTicket)
	oldRes := l.Fetch(ctx, oldTicket)

	assert.True(t, l.Apply(newRes))
	assert.False(t, l.Apply(oldRes), "an older fetch must not overwrite a newer one")
	assert.Equal(t, []task{{id: "2"}}, l.Rows())
}

func TestApply_DropsResultForSameSeqButChangedFilter(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"a": {{id: "1"}}}}
	l := newTaskList(s)
	res := l.Fetch(context.Background(), l.Begin(filter{project: "a"}))
	res.Ticket.Filter = filter{project: "b"}
	assert.False(t, l.Apply(res))
}

func TestApply_FetchFailureEmptiesList(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"p": {{id: "1"}}}}
	l := newTaskList(s)
	_, err := l.Load(context.Background(), filter{project: "p"})
	require.NoError(t, err)

	s.fail = errors.New("boom")
	rows, err := l.Refresh(context.Background())
	require.Error(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
	assert.EqualError(t, l.Err(), "boom")

	s.fail = nil
	_, err = l.Refresh(context.Background())
	require.NoError(t, err)
	assert.NoError(t, l.Err())
	assert.Equal(t, 1, l.Len())
}

func TestApplyFieldPatch_VisibleBeforeServerResponds(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"p": {{id: "3", status: "TODO"}}}}
	l := newTaskList(s)
	_, err := l.Load(context.Background(), filter{project: "p"})
	require.NoError(t, err)

	require.NoError(t, l.ApplyFieldPatch("3", "status", "COMPLETED"))
	got, ok := l.Find("3")
	require.True(t, ok)
	assert.Equal(t, "COMPLETED", got.status)
	assert.Equal(t, "TODO", s.tasks["p"][0].status, "server data is untouched")
}

func TestApplyFieldPatch_Errors(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"p": {{id: "3"}}}}
	l := newTaskList(s)
	_, _ = l.Load(context.Background(), filter{project: "p"})

	assert.ErrorIs(t, l.ApplyFieldPatch("99", "status", "X"), ErrNotFound)
	assert.Error(t, l.ApplyFieldPatch("3", "colour", "X"))
	assert.Error(t, l.ApplyFieldPatch("3", "status", 4))
}

func TestCommit_StructuralRefetchesOnSuccess(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"p": {{id: "1", status: "TODO"}}}}
	l := newTaskList(s)
	_, _ = l.Load(context.Background(), filter{project: "p"})

	m := &fakeMutation{effect: Structural, apply: func() {
		s.tasks["p"] = append(s.tasks["p"], task{id: "2", status: "TODO"})
	}}
	require.NoError(t, l.Commit(context.Background(), m))
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 2, s.calls)
}

func TestCommit_StructuralFailureLeavesListAndPatch(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"p": {{id: "1", status: "TODO"}}}}
	l := New[filter, task](s.load, Options[task]{
		Key:      func(t task) string { return t.id },
		SetField: setTaskField,
		Classify: func(err error) error { return fmt.Errorf("friendly: %w", err) },
	})
	_, _ = l.Load(context.Background(), filter{project: "p"})
	require.NoError(t, l.ApplyFieldPatch("1", "status", "DONE"))

	m := &fakeMutation{effect: Structural, err: errors.New("rejected")}
	err := l.Commit(context.Background(), m)
	require.EqualError(t, err, "friendly: rejected")
	assert.Equal(t, 1, s.calls, "no refetch after a failed structural mutation")
	got, _ := l.Find("1")
	assert.Equal(t, "DONE", got.status)
}

func TestCommit_CosmeticRefetchesOnlyOnFailure(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"p": {{id: "1", status: "TODO"}}}}
	l := newTaskList(s)
	_, _ = l.Load(context.Background(), filter{project: "p"})

	require.NoError(t, l.ApplyFieldPatch("1", "status", "COMPLETED"))
	ok := &fakeMutation{effect: Cosmetic}
	require.NoError(t, l.Commit(context.Background(), ok))
	assert.Equal(t, 1, s.calls)
	got, _ := l.Find("1")
	assert.Equal(t, "COMPLETED", got.status)

	bad := &fakeMutation{effect: Cosmetic, err: errors.New("nope")}
	require.Error(t, l.Commit(context.Background(), bad))
	assert.Equal(t, 2, s.calls)
	got, _ = l.Find("1")
	assert.Equal(t, "TODO", got.status, "refetch restores server truth")
}

func TestCommit_ShapeRefetchesOnSuccess(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"p": {{id: "1"}, {id: "2"}}}}
	l := newTaskList(s)
	_, _ = l.Load(context.Background(), filter{project: "p"})

	m := &fakeMutation{effect: Shape, apply: func() { s.tasks["p"] = s.tasks["p"][1:] }}
	require.NoError(t, l.Commit(context.Background(), m))
	assert.Equal(t, []task{{id: "2"}}, l.Rows())
}

func TestSettle(t *testing.T) {
	l := newTaskList(&fakeServer{})
	fail := errors.New("x")
	assert.True(t, l.Settle(&fakeMutation{effect: Structural}, nil))
	assert.False(t, l.Settle(&fakeMutation{effect: Structural}, fail))
	assert.False(t, l.Settle(&fakeMutation{effect: Cosmetic}, nil))
	assert.True(t, l.Settle(&fakeMutation{effect: Cosmetic}, fail))
	assert.True(t, l.Settle(&fakeMutation{effect: Shape}, nil))
	assert.False(t, l.Settle(&fakeMutation{effect: Shape}, fail))
}

func TestRowsReturnsCopy(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"p": {{id: "1", status: "TODO"}}}}
	l := newTaskList(s)
	_, _ = l.Load(context.Background(), filter{project: "p"})
	rows := l.Rows()
	rows[0].status = "MUTATED"
	got, _ := l.Find("1")
	assert.Equal(t, "TODO", got.status)
}

func TestCommit_LogsRefetchFailureAfterFailedMutation(t *testing.T) {
	s := &fakeServer{tasks: map[string][]task{"p1": {{id: "1", status: "TODO"}}}}
	var buf bytes.Buffer
	l := New[filter, task](s.load, Options[task]{
		Key:    func(t task) string { return t.id },
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
	})
	_, err := l.Load(context.Background(), filter{project: "p1"})
	require.NoError(t, err)

	s.fail = errors.New("server down")
	m := &fakeMutation{effect: Cosmetic, err: errors.New("locked")}
	err = l.Commit(context.Background(), m)
	require.EqualError(t, err, "locked")
	assert.Contains(t, buf.String(), "refetch after mutation failed")
	assert.Contains(t, buf.String(), "server down")
	assert.Equal(t, s.fail, l.Err())
}
