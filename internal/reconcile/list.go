package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrNotFound = errors.New("entity not found in list")

// Loader fetches the authoritative collection for a filter.
type Loader[F comparable, T any] func(ctx context.Context, filter F) ([]T, error)

// FieldSetter writes one named field on a row in place.
type FieldSetter[T any] func(row *T, field string, value any) error

// Effect says how a committed mutation relates to the list shape.
type Effect int

const (
	// Structural mutations move rows between buckets; the list is refetched
	// after success and never hand-patched.
	Structural Effect = iota
	// Cosmetic mutations were already patched locally; refetch only on failure.
	Cosmetic
	// Shape mutations add or remove rows; refetch after success.
	Shape
)

func (e Effect) String() string {
	switch e {
	case Structural:
		return "structural"
	case Cosmetic:
		return "cosmetic"
	case Shape:
		return "shape"
	default:
		return fmt.Sprintf("effect(%d)", int(e))
	}
}

// Mutation is a server-side change submitted through a List.
type Mutation interface {
	Do(ctx context.Context) error
	Effect() Effect
}

// Ticket identifies one fetch. Results carrying an outdated ticket are dropped.
type Ticket[F comparable] struct {
	Seq    uint64
	Filter F
}

type Result[F comparable, T any] struct {
	Ticket Ticket[F]
	Rows   []T
	Err    error
}

type Options[T any] struct {
	Key      func(T) string
	SetField FieldSetter[T]
	// Classify maps raw mutation errors to what the caller displays.
	Classify func(error) error
	Logger   *slog.Logger
}

// List holds the displayed collection for one page. It is owned by a single
// controller; Fetch is the only method that may run off the UI goroutine.
type List[F comparable, T any] struct {
	load     Loader[F, T]
	key      func(T) string
	setField FieldSetter[T]
	classify func(error) error
	log      *slog.Logger

	filter F
	seq    uint64
	rows   []T
	err    error
	loaded bool
}

func New[F comparable, T any](load Loader[F, T], opts Options[T]) *List[F, T] {
	l := &List[F, T]{
		load:     load,
		key:      opts.Key,
		setField: opts.SetField,
		classify: opts.Classify,
		log:      opts.Logger,
		rows:     []T{},
	}
	if l.classify == nil {
		l.classify = func(err error) error { return err }
	}
	if l.log == nil {
		l.log = slog.New(slog.DiscardHandler)
	}
	return l
}

func (l *List[F, T]) Filter() F { return l.filter }

// Rows returns a copy of the displayed rows.
func (l *List[F, T]) Rows() []T {
	out := make([]T, len(l.rows))
	copy(out, l.rows)
	return out
}

func (l *List[F, T]) Len() int { return len(l.rows) }

// Err is the error from the most recent applied fetch.
func (l *List[F, T]) Err() error { return l.err }

func (l *List[F, T]) Loaded() bool { return l.loaded }

// Begin makes f the active filter and issues a ticket for fetching it. Any
// ticket issued earlier becomes stale.
func (l *List[F, T]) Begin(f F) Ticket[F] {
	l.seq++
	l.filter = f
	return Ticket[F]{Seq: l.seq, Filter: f}
}

// Fetch runs the loader for a ticket. It does not touch list state.
func (l *List[F, T]) Fetch(ctx context.Context, t Ticket[F]) Result[F, T] {
	rows, err := l.load(ctx, t.Filter)
	return Result[F, T]{Ticket: t, Rows: rows, Err: err}
}

// Apply installs a fetch result unless a newer fetch was begun or the filter
// has changed since. A failed fetch empties the list and records the error.
func (l *List[F, T]) Apply(res Result[F, T]) bool {
	if res.Ticket.Seq != l.seq || res.Ticket.Filter != l.filter {
		l.log.Debug("dropping stale fetch", "seq", res.Ticket.Seq, "current", l.seq)
		return false
	}
	l.loaded = true
	if res.Err != nil {
		l.rows = []T{}
		l.err = res.Err
		l.log.Warn("fetch failed", "error", res.Err)
		return true
	}
	rows := res.Rows
	if rows == nil {
		rows = []T{}
	}
	l.rows = rows
	l.err = nil
	return true
}

// Load fetches f synchronously and installs the result.
func (l *List[F, T]) Load(ctx context.Context, f F) ([]T, error) {
	res := l.Fetch(ctx, l.Begin(f))
	l.Apply(res)
	return l.Rows(), res.Err
}

// Refresh reloads the active filter.
func (l *List[F, T]) Refresh(ctx context.Context) ([]T, error) {
	return l.Load(ctx, l.filter)
}

// ApplyFieldPatch sets one field on one displayed row without contacting the
// server.
func (l *List[F, T]) ApplyFieldPatch(id, field string, value any) error {
	if l.setField == nil || l.key == nil {
		return fmt.Errorf("field patches not supported for this list")
	}
	for i := range l.rows {
		if l.key(l.rows[i]) != id {
			continue
		}
		return l.setField(&l.rows[i], field, value)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Find returns the displayed row with the given key.
func (l *List[F, T]) Find(id string) (T, bool) {
	var zero T
	if l.key == nil {
		return zero, false
	}
	for _, row := range l.rows {
		if l.key(row) == id {
			return row, true
		}
	}
	return zero, false
}

// Execute submits m to the server. List state is not touched, so callers may
// run it off the UI goroutine and hand the error to Settle afterwards.
func (l *List[F, T]) Execute(ctx context.Context, m Mutation) error {
	if err := m.Do(ctx); err != nil {
		return l.classify(err)
	}
	return nil
}

// Settle reports whether the list must be refetched after m finished with err.
func (l *List[F, T]) Settle(m Mutation, err error) bool {
	switch m.Effect() {
	case Cosmetic:
		return err != nil
	default:
		return err == nil
	}
}

// Commit executes m and resynchronizes the list according to its effect. On a
// structural failure the list is left as it was.
func (l *List[F, T]) Commit(ctx context.Context, m Mutation) error {
	err := l.Execute(ctx, m)
	if l.Settle(m, err) {
		if _, ferr := l.Refresh(ctx); ferr != nil {
			l.log.Warn("refetch after mutation failed", "effect", m.Effect().String(), "mutation_error", err, "error", ferr)
		}
	}
	return err
}
