package auth

import "accounts/internal/entity"

// Action names an operation subject to access control.
type Action int

const (
	ActionLogin Action = iota
	ActionUpdateSelf
	ActionDeleteSelf
	ActionDeleteByHandle
	ActionListAdmins
	ActionListUsers
	ActionChangeState
	ActionChangeStateSuperAdmin
	ActionAssignRole
)

func (a Action) String() string {
	switch a {
	case ActionLogin:
		return "login"
	case ActionUpdateSelf:
		return "update_self"
	case ActionDeleteSelf:
		return "delete_self"
	case ActionDeleteByHandle:
		return "delete_by_handle"
	case ActionListAdmins:
		return "list_admins"
	case ActionListUsers:
		return "list_users"
	case ActionChangeState:
		return "change_state"
	case ActionChangeStateSuperAdmin:
		return "change_state_superadmin"
	case ActionAssignRole:
		return "assign_role"
	default:
		return "unknown"
	}
}

// DenyReason explains why Authorize refused an action.
type DenyReason string

const (
	ReasonNoIdentity       DenyReason = "no_identity"
	ReasonInactive         DenyReason = "inactive"
	ReasonBlocked          DenyReason = "blocked"
	ReasonNotOwner         DenyReason = "not_owner"
	ReasonHandleMismatch   DenyReason = "handle_mismatch"
	ReasonNotAdmin         DenyReason = "not_admin"
	ReasonNotSuperAdmin    DenyReason = "not_superadmin"
	ReasonTargetSuperAdmin DenyReason = "target_superadmin"
	ReasonUnknownAction    DenyReason = "unknown_action"
)

// AccessRequest describes one authorization question.
//
// Actor is the identity record fetched for Claims.UserID (or, for
// ActionLogin, the record matching the submitted handle). Target is the
// record being modified, Handle the handle named in the request body and
// Role the grade being assigned, each only where the action needs it.
type AccessRequest struct {
	Action Action
	Claims *Claims
	Actor  *entity.DbUser
	Target *entity.DbUser
	Handle string
	Role   entity.Role
}

// Decision is the outcome of Authorize. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Authorize maps an access request to an allow or deny decision based on the
// actor's role and account state.
func Authorize(req AccessRequest) Decision {
	if req.Actor == nil {
		return deny(ReasonNoIdentity)
	}

	if req.Action == ActionLogin {
		if req.Actor.EtatID == entity.StateBlocked {
			return deny(ReasonBlocked)
		}
		return allow()
	}

	if req.Claims == nil {
		return deny(ReasonNoIdentity)
	}
	if req.Actor.EtatID == entity.StateBlocked {
		return deny(ReasonBlocked)
	}
	if req.Actor.EtatID != entity.StateActive {
		return deny(ReasonInactive)
	}

	switch req.Action {
	case ActionUpdateSelf, ActionDeleteSelf:
		target := req.Target
		if target == nil {
			target = req.Actor
		}
		if req.Claims.UserID != target.ID || req.Actor.ID != target.ID {
			return deny(ReasonNotOwner)
		}
		return allow()

	case ActionDeleteByHandle:
		// the token handle can be stale after a rename
		if req.Claims.Surnom != req.Handle || req.Actor.Surnom != req.Handle {
			return deny(ReasonHandleMismatch)
		}
		return allow()

	case ActionListAdmins, ActionListUsers:
		if !req.Actor.GradeID.IsAdminTier() {
			return deny(ReasonNotAdmin)
		}
		return allow()

	case ActionChangeState:
		if !req.Actor.GradeID.IsAdminTier() {
			return deny(ReasonNotAdmin)
		}
		if req.Target != nil {
			if req.Target.GradeID == entity.RoleSuperAdmin {
				return deny(ReasonTargetSuperAdmin)
			}
			if req.Target.GradeID == entity.RoleAdmin && req.Actor.GradeID != entity.RoleSuperAdmin {
				return deny(ReasonNotSuperAdmin)
			}
		}
		return allow()

	case ActionChangeStateSuperAdmin:
		if req.Actor.GradeID != entity.RoleSuperAdmin {
			return deny(ReasonNotSuperAdmin)
		}
		if req.Target != nil && req.Target.GradeID == entity.RoleSuperAdmin {
			return deny(ReasonTargetSuperAdmin)
		}
		return allow()

	case ActionAssignRole:
		switch req.Role {
		case entity.RoleStandardUser:
			return allow()
		case entity.RoleAdmin:
			if !req.Actor.GradeID.IsAdminTier() {
				return deny(ReasonNotAdmin)
			}
			return allow()
		case entity.RoleSuperAdmin:
			if req.Actor.GradeID != entity.RoleSuperAdmin {
				return deny(ReasonNotSuperAdmin)
			}
			return allow()
		default:
			return deny(ReasonUnknownAction)
		}
	}

	return deny(ReasonUnknownAction)
}
