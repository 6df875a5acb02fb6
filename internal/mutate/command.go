package mutate

import (
	"context"
	"fmt"

	"clubhub-cli/internal/model"
	"clubhub-cli/internal/reconcile"
)

// Backend is the server surface mutations are submitted to.
type Backend interface {
	Assign(ctx context.Context, a Assign) error
	Transfer(ctx context.Context, a Transfer) error
	ChangeRole(ctx context.Context, a ChangeRole) error
	UpdateStatus(ctx context.Context, a UpdateStatus) error
	UpdateTask(ctx context.Context, a UpdateTask) (model.Task, error)
	DeleteTask(ctx context.Context, a DeleteTask) error
	UpdateMember(ctx context.Context, a UpdateMember) (model.Member, error)
	CreateTeam(ctx context.Context, a CreateTeam) (model.Team, error)
}

// Observer is told about every submitted action and its raw outcome.
type Observer func(a Action, err error)

// Command binds an action to a backend so it can be committed through a
// reconcile.List.
type Command struct {
	Backend Backend
	Action  Action
	Observe Observer
}

var _ reconcile.Mutation = Command{}

func (c Command) Effect() reconcile.Effect { return c.Action.Effect() }

// Do validates the action and submits it. Invalid actions are not sent.
func (c Command) Do(ctx context.Context) error {
	if fe := Validate(c.Action); len(fe) > 0 {
		return ValidationError{Fields: fe}
	}
	err := c.submit(ctx)
	if c.Observe != nil {
		c.Observe(c.Action, err)
	}
	return err
}

func (c Command) submit(ctx context.Context) error {
	switch a := c.Action.(type) {
	case Assign:
		return c.Backend.Assign(ctx, a)
	case Transfer:
		return c.Backend.Transfer(ctx, a)
	case ChangeRole:
		return c.Backend.ChangeRole(ctx, a)
	case UpdateStatus:
		return c.Backend.UpdateStatus(ctx, a)
	case UpdateTask:
		_, err := c.Backend.UpdateTask(ctx, a)
		return err
	case DeleteTask:
		return c.Backend.DeleteTask(ctx, a)
	case UpdateMember:
		_, err := c.Backend.UpdateMember(ctx, a)
		return err
	case CreateTeam:
		_, err := c.Backend.CreateTeam(ctx, a)
		return err
	default:
		return fmt.Errorf("unsupported action %T", c.Action)
	}
}
