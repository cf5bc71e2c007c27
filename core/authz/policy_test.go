package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/shule/core/user"
)

var allActions = []Action{
	ActionListUsers, ActionChangeUserRole, ActionDeleteUser,
	ActionCreateClass, ActionListOwnClasses, ActionViewClass, ActionListClassMembers,
	ActionJoinClass, ActionDeleteClass,
	ActionCreateAnnouncement, ActionListAnnouncements,
	ActionCreateDocumentation, ActionListDocumentations,
	ActionCreateTask, ActionListTasks, ActionViewTask,
	ActionSubmitWork, ActionListTaskSubmissions, ActionViewSubmission, ActionGradeSubmission,
	ActionPostClassMessage, ActionListClassMessages, ActionPostPrivateMessage, ActionListPrivateMessages,
	ActionCreateProject, ActionListProjects,
	ActionCreateGroup, ActionListGroups, ActionManageGroupMembers, ActionAppointGroupLeader,
}

func TestPolicyCompleteness(t *testing.T) {
	for _, action := range allActions {
		if _, ok := policy[action]; !ok {
			t.Errorf("policy is missing a rule for %q", action)
		}
	}
	assert.Len(t, policy, len(allActions))
}

func TestAuthorize_unknownActionForbidden(t *testing.T) {
	e := NewEngine(nil, nil, nil, nil)
	idn := Identity{ID: 1, Role: user.RoleCoordinator}
	err := e.Authorize(context.Background(), idn, Action("nope:nope"), 1)
	assert.Equal(t, ErrForbidden, err)
}

func TestRuleAllows(t *testing.T) {
	tests := []struct {
		name string
		rule rule
		role user.Role
		want bool
	}{
		{name: "empty allow-list admits anyone", rule: rule{}, role: user.RoleStudent, want: true},
		{name: "role in list", rule: rule{roles: privileged}, role: user.RoleTeacher, want: true},
		{name: "role not in list", rule: rule{roles: privileged}, role: user.RoleStudent, want: false},
		{name: "coordinator only", rule: rule{roles: coordinatorOnly}, role: user.RoleTeacher, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.allows(tt.role))
		})
	}
}
