package mutate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendly_AlreadyAssignedIsMapped(t *testing.T) {
	err := Friendly(serverErr{msg: "Member is already assigned to this team"})
	require.Error(t, err)
	assert.Equal(t, "This member is already on that team.", err.Error())

	var ue *UserError
	require.ErrorAs(t, err, &ue)
	assert.ErrorAs(t, ue.Cause, new(serverErr))
}

func TestFriendly_CaseInsensitive(t *testing.T) {
	err := Friendly(serverErr{msg: "DUPLICATE KEY value violates unique constraint"})
	assert.Equal(t, "A record with the same details already exists.", err.Error())
}

func TestFriendly_UnknownMessageShownVerbatim(t *testing.T) {
	err := Friendly(serverErr{msg: "Role does not belong to team"})
	assert.Equal(t, "Role does not belong to team", err.Error())
}

func TestFriendly_PlainErrorUsesErrorText(t *testing.T) {
	err := Friendly(errors.New("record not found"))
	assert.Equal(t, "That record no longer exists. Refresh and try again.", err.Error())
}

func TestFriendly_Transport(t *testing.T) {
	raw := &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}
	err := Friendly(fmt.Errorf("list teams: %w", raw))
	assert.Equal(t, "Could not reach the server: connection refused", err.Error())
}

func TestFriendly_PassThrough(t *testing.T) {
	assert.NoError(t, Friendly(nil))

	ve := ValidationError{Fields: FieldErrors{"teamId": "must be selected"}}
	assert.Equal(t, ve, Friendly(ve))

	ue := &UserError{Message: "already friendly"}
	assert.Same(t, ue, Friendly(ue))

	err := Friendly(context.Canceled)
	assert.Equal(t, "request canceled", err.Error())
}

func TestValidationError_Message(t *testing.T) {
	err := ValidationError{Fields: FieldErrors{"teamId": "must be selected", "roleId": "must be selected"}}
	assert.Equal(t, "invalid input: roleId must be selected; teamId must be selected", err.Error())
}
