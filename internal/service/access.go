package service

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
)

// Action is an operation checked by AccessControl
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Anyone may read; only the owner may write or delete.
const accessModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.act == p.act && (r.act == "read" || r.sub == r.obj.Owner)
`

// accessObject is the attribute set the matcher sees for a resource
type accessObject struct {
	Owner string
}

// AccessControl decides owner-only mutations with a casbin ABAC model
type AccessControl struct {
	enforcer *casbin.Enforcer
}

func NewAccessControl() (*AccessControl, error) {
	m, err := model.NewModelFromString(accessModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load access model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	for _, act := range []Action{ActionRead, ActionWrite, ActionDelete} {
		if _, err := enforcer.AddPolicy(string(act)); err != nil {
			return nil, fmt.Errorf("failed to add policy %s: %w", act, err)
		}
	}

	return &AccessControl{enforcer: enforcer}, nil
}

// Check returns ErrForbidden unless actor may perform act on obj.
// A nil actor is anonymous and may only read.
func (a *AccessControl) Check(actor *uuid.UUID, obj models.Owned, act Action) error {
	sub := ""
	if actor != nil {
		sub = actor.String()
	}

	allowed, err := a.enforcer.Enforce(sub, accessObject{Owner: obj.OwnerID().String()}, string(act))
	if err != nil {
		return fmt.Errorf("failed to evaluate access: %w", err)
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}
