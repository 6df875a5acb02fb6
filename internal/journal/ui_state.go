package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

const uiStateKey = "tui"

// UIState is what the TUI restores on relaunch. It is best effort: missing or
// unreadable state loads as the default.
type UIState struct {
	Version int `json:"version"`

	// Page is one of: members|teams|projects|alumni|history
	Page string `json:"page,omitempty"`

	MemberTeamID int64  `json:"memberTeamId,omitempty"`
	MemberStatus string `json:"memberStatus,omitempty"`

	TeamID    int64 `json:"teamId,omitempty"`
	ProjectID int64 `json:"projectId,omitempty"`
}

func (j *Journal) LoadUIState(ctx context.Context) (*UIState, error) {
	var v string
	err := j.db.QueryRowContext(ctx, `SELECT v FROM ui_state WHERE k = ?`, uiStateKey).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &UIState{Version: 1}, nil
		}
		return nil, err
	}
	var st UIState
	if err := json.Unmarshal([]byte(v), &st); err != nil {
		return &UIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (j *Journal) SaveUIState(ctx context.Context, st *UIState) error {
	if st == nil {
		return nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx, `INSERT OR REPLACE INTO ui_state(k, v) VALUES(?, ?)`, uiStateKey, string(b))
	return err
}
