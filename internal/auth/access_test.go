package auth

import (
	"accounts/internal/entity"
	"testing"
)

func account(id uint, surnom string, role entity.Role, state entity.State) *entity.DbUser {
	return &entity.DbUser{ID: id, Surnom: surnom, GradeID: role, EtatID: state}
}

func claimsFor(u *entity.DbUser) *Claims {
	return &Claims{UserID: u.ID, Surnom: u.Surnom}
}

func TestAuthorize(t *testing.T) {
	superAdmin := account(1, "root", entity.RoleSuperAdmin, entity.StateActive)
	otherSuper := account(5, "root2", entity.RoleSuperAdmin, entity.StateActive)
	admin := account(2, "admin", entity.RoleAdmin, entity.StateActive)
	otherAdmin := account(6, "admin2", entity.RoleAdmin, entity.StateActive)
	user := account(3, "alice", entity.RoleStandardUser, entity.StateActive)
	blocked := account(4, "bob", entity.RoleStandardUser, entity.StateBlocked)
	deleted := account(7, "delete-x", entity.RoleStandardUser, entity.StateDeleted)

	tests := []struct {
		name   string
		req    AccessRequest
		allow  bool
		reason DenyReason
	}{
		{name: "login active", req: AccessRequest{Action: ActionLogin, Actor: user}, allow: true},
		{name: "login blocked", req: AccessRequest{Action: ActionLogin, Actor: blocked}, reason: ReasonBlocked},
		{name: "login unknown", req: AccessRequest{Action: ActionLogin}, reason: ReasonNoIdentity},

		{name: "update self", req: AccessRequest{Action: ActionUpdateSelf, Claims: claimsFor(user), Actor: user}, allow: true},
		{name: "update other", req: AccessRequest{Action: ActionUpdateSelf, Claims: claimsFor(user), Actor: user, Target: admin}, reason: ReasonNotOwner},
		{name: "update with mismatched claims", req: AccessRequest{Action: ActionUpdateSelf, Claims: claimsFor(admin), Actor: user}, reason: ReasonNotOwner},
		{name: "blocked actor cannot update", req: AccessRequest{Action: ActionUpdateSelf, Claims: claimsFor(blocked), Actor: blocked}, reason: ReasonBlocked},
		{name: "deleted actor cannot delete again", req: AccessRequest{Action: ActionDeleteSelf, Claims: claimsFor(deleted), Actor: deleted}, reason: ReasonInactive},
		{name: "missing claims", req: AccessRequest{Action: ActionDeleteSelf, Actor: user}, reason: ReasonNoIdentity},

		{name: "delete by matching handle", req: AccessRequest{Action: ActionDeleteByHandle, Claims: claimsFor(user), Actor: user, Handle: "alice"}, allow: true},
		{name: "delete by other handle", req: AccessRequest{Action: ActionDeleteByHandle, Claims: claimsFor(user), Actor: user, Handle: "admin"}, reason: ReasonHandleMismatch},
		{name: "delete with stale token handle", req: AccessRequest{Action: ActionDeleteByHandle, Claims: &Claims{UserID: user.ID, Surnom: "old-alice"}, Actor: user, Handle: "old-alice"}, reason: ReasonHandleMismatch},
		{name: "delete handle is case sensitive", req: AccessRequest{Action: ActionDeleteByHandle, Claims: claimsFor(user), Actor: user, Handle: "Alice"}, reason: ReasonHandleMismatch},

		{name: "admin lists admins", req: AccessRequest{Action: ActionListAdmins, Claims: claimsFor(admin), Actor: admin}, allow: true},
		{name: "super lists users", req: AccessRequest{Action: ActionListUsers, Claims: claimsFor(superAdmin), Actor: superAdmin}, allow: true},
		{name: "user lists admins", req: AccessRequest{Action: ActionListAdmins, Claims: claimsFor(user), Actor: user}, reason: ReasonNotAdmin},

		{name: "admin blocks user", req: AccessRequest{Action: ActionChangeState, Claims: claimsFor(admin), Actor: admin, Target: user}, allow: true},
		{name: "admin blocks admin", req: AccessRequest{Action: ActionChangeState, Claims: claimsFor(admin), Actor: admin, Target: otherAdmin}, reason: ReasonNotSuperAdmin},
		{name: "super blocks admin", req: AccessRequest{Action: ActionChangeState, Claims: claimsFor(superAdmin), Actor: superAdmin, Target: admin}, allow: true},
		{name: "super blocks super", req: AccessRequest{Action: ActionChangeState, Claims: claimsFor(superAdmin), Actor: superAdmin, Target: otherSuper}, reason: ReasonTargetSuperAdmin},
		{name: "user changes state", req: AccessRequest{Action: ActionChangeState, Claims: claimsFor(user), Actor: user, Target: blocked}, reason: ReasonNotAdmin},

		{name: "guarded super targets admin", req: AccessRequest{Action: ActionChangeStateSuperAdmin, Claims: claimsFor(superAdmin), Actor: superAdmin, Target: admin}, allow: true},
		{name: "guarded super targets super", req: AccessRequest{Action: ActionChangeStateSuperAdmin, Claims: claimsFor(superAdmin), Actor: superAdmin, Target: otherSuper}, reason: ReasonTargetSuperAdmin},
		{name: "guarded super targets self", req: AccessRequest{Action: ActionChangeStateSuperAdmin, Claims: claimsFor(superAdmin), Actor: superAdmin, Target: superAdmin}, reason: ReasonTargetSuperAdmin},
		{name: "guarded admin targets user", req: AccessRequest{Action: ActionChangeStateSuperAdmin, Claims: claimsFor(admin), Actor: admin, Target: user}, reason: ReasonNotSuperAdmin},
		{name: "guarded admin targets super", req: AccessRequest{Action: ActionChangeStateSuperAdmin, Claims: claimsFor(admin), Actor: admin, Target: superAdmin}, reason: ReasonNotSuperAdmin},

		{name: "user assigns standard role", req: AccessRequest{Action: ActionAssignRole, Claims: claimsFor(user), Actor: user, Role: entity.RoleStandardUser}, allow: true},
		{name: "user assigns admin role", req: AccessRequest{Action: ActionAssignRole, Claims: claimsFor(user), Actor: user, Role: entity.RoleAdmin}, reason: ReasonNotAdmin},
		{name: "admin assigns admin role", req: AccessRequest{Action: ActionAssignRole, Claims: claimsFor(admin), Actor: admin, Role: entity.RoleAdmin}, allow: true},
		{name: "admin assigns super role", req: AccessRequest{Action: ActionAssignRole, Claims: claimsFor(admin), Actor: admin, Role: entity.RoleSuperAdmin}, reason: ReasonNotSuperAdmin},
		{name: "super assigns super role", req: AccessRequest{Action: ActionAssignRole, Claims: claimsFor(superAdmin), Actor: superAdmin, Role: entity.RoleSuperAdmin}, allow: true},
		{name: "unknown role", req: AccessRequest{Action: ActionAssignRole, Claims: claimsFor(superAdmin), Actor: superAdmin, Role: 9}, reason: ReasonUnknownAction},

		{name: "unknown action", req: AccessRequest{Action: Action(99), Claims: claimsFor(superAdmin), Actor: superAdmin}, reason: ReasonUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.req)
			if got.Allowed != tt.allow {
				t.Fatalf("expected allowed=%v, got %+v", tt.allow, got)
			}
			if !tt.allow && got.Reason != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, got.Reason)
			}
		})
	}
}
