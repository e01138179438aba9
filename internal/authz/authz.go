// Package authz decides which role may perform which action, using a casbin
// RBAC model with an in-code policy.
package authz

import (
	"fmt"

	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Objects and actions referenced by route guards.
const (
	ObjEvent        = "event"
	ObjRegistration = "registration"
	ObjTicket       = "ticket"
	ObjStats        = "stats"
	ObjUpload       = "upload"

	ActRegister = "register"
	ActManage   = "manage"
	ActReview   = "review"
	ActCheckIn  = "checkin"
	ActRead     = "read"
	ActCancel   = "cancel"
	ActWrite    = "write"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

var defaultPolicy = [][]string{
	{string(models.RoleAttendee), ObjEvent, ActRegister},
	{string(models.RoleHost), ObjEvent, ActRegister},
	{string(models.RoleAttendee), ObjRegistration, ActCancel},
	{string(models.RoleHost), ObjRegistration, ActCancel},
	{string(models.RoleHost), ObjEvent, ActManage},
	{string(models.RoleHost), ObjTicket, ActCheckIn},
	{string(models.RoleAdmin), ObjTicket, ActCheckIn},
	{string(models.RoleAdmin), ObjEvent, ActReview},
	{string(models.RoleAdmin), ObjStats, ActRead},
	{string(models.RoleAttendee), ObjUpload, ActWrite},
	{string(models.RoleHost), ObjUpload, ActWrite},
	{string(models.RoleAdmin), ObjUpload, ActWrite},
}

type Enforcer struct {
	e *casbin.Enforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("load authz model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	if _, err := e.AddPolicies(defaultPolicy); err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	return &Enforcer{e: e}, nil
}

func (a *Enforcer) Allowed(role models.Role, obj, act string) (bool, error) {
	return a.e.Enforce(string(role), obj, act)
}
