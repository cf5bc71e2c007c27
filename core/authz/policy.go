package authz

import (
	"context"

	"github.com/trezcool/shule/core/user"
)

// Action names an operation gated by the policy table.
type Action string

const (
	ActionListUsers      Action = "users:list"
	ActionChangeUserRole Action = "users:change-role"
	ActionDeleteUser     Action = "users:delete"

	ActionCreateClass      Action = "classes:create"
	ActionListOwnClasses   Action = "classes:list-own"
	ActionViewClass        Action = "classes:view"
	ActionListClassMembers Action = "classes:list-members"
	ActionJoinClass        Action = "classes:join"
	ActionDeleteClass      Action = "classes:delete"

	ActionCreateAnnouncement Action = "announcements:create"
	ActionListAnnouncements  Action = "announcements:list"

	ActionCreateDocumentation Action = "documentations:create"
	ActionListDocumentations  Action = "documentations:list"

	ActionCreateTask Action = "tasks:create"
	ActionListTasks  Action = "tasks:list"
	ActionViewTask   Action = "tasks:view"

	ActionSubmitWork          Action = "submissions:create"
	ActionListTaskSubmissions Action = "submissions:list"
	ActionViewSubmission      Action = "submissions:view"
	ActionGradeSubmission     Action = "submissions:grade"

	ActionPostClassMessage    Action = "messages:post-class"
	ActionListClassMessages   Action = "messages:list-class"
	ActionPostPrivateMessage  Action = "messages:post-private"
	ActionListPrivateMessages Action = "messages:list-private"

	ActionCreateProject Action = "projects:create"
	ActionListProjects  Action = "projects:list"

	ActionCreateGroup        Action = "groups:create"
	ActionListGroups         Action = "groups:list"
	ActionManageGroupMembers Action = "groups:manage-members"
	ActionAppointGroupLeader Action = "groups:appoint-leader"
)

type predicate func(e *Engine, ctx context.Context, idn Identity, resourceID int) error

// rule pairs a role allow-list (empty = any authenticated identity) with an
// optional relationship predicate.
type rule struct {
	roles     []user.Role
	predicate predicate
}

func (r rule) allows(role user.Role) bool {
	if len(r.roles) == 0 {
		return true
	}
	for _, allowed := range r.roles {
		if role == allowed {
			return true
		}
	}
	return false
}

var (
	teacherOnly     = []user.Role{user.RoleTeacher}
	studentOnly     = []user.Role{user.RoleStudent}
	coordinatorOnly = []user.Role{user.RoleCoordinator}
	privileged      = []user.Role{user.RoleTeacher, user.RoleCoordinator}
)

// policy is the authority for every gated operation. The resource a
// predicate receives is noted per action.
var policy = map[Action]rule{
	// Coordinator-role-only, no enrollment requirement.
	ActionListUsers:      {roles: coordinatorOnly},
	ActionChangeUserRole: {roles: coordinatorOnly},
	ActionDeleteUser:     {roles: coordinatorOnly},

	ActionCreateClass:      {roles: teacherOnly},
	ActionListOwnClasses:   {},
	ActionViewClass:        {predicate: classMember},        // class id
	ActionListClassMembers: {predicate: classMember},        // class id
	ActionJoinClass:        {},
	ActionDeleteClass:      {roles: teacherOnly, predicate: classOwner}, // class id

	ActionCreateAnnouncement: {roles: teacherOnly, predicate: classOwner}, // class id
	ActionListAnnouncements:  {predicate: classMember},                    // class id

	ActionCreateDocumentation: {roles: teacherOnly, predicate: classOwner}, // class id
	ActionListDocumentations:  {predicate: classMember},                    // class id

	ActionCreateTask: {roles: teacherOnly, predicate: classOwner}, // class id
	ActionListTasks:  {predicate: classMember},                    // class id
	ActionViewTask:   {predicate: classMemberOfTask},              // task id

	ActionSubmitWork:          {roles: studentOnly, predicate: classMemberOfTask},  // task id
	ActionListTaskSubmissions: {roles: teacherOnly, predicate: classOwnerOfTask},   // task id
	ActionViewSubmission:      {predicate: submissionPartyOrTaskOwner},             // submission id
	ActionGradeSubmission:     {roles: teacherOnly, predicate: taskOwnerOfSubmission}, // submission id

	ActionPostClassMessage:    {roles: privileged, predicate: classPrivilegedMember}, // class id
	ActionListClassMessages:   {predicate: classMember},                              // class id
	ActionPostPrivateMessage:  {},
	ActionListPrivateMessages: {},

	ActionCreateProject: {roles: privileged, predicate: classOwnerOrEnrolledCoordinator}, // class id
	ActionListProjects:  {predicate: classMember},                                        // class id

	ActionCreateGroup:        {roles: privileged, predicate: projectOwnerOrEnrolledCoordinator}, // project id
	ActionListGroups:         {predicate: projectClassMember},                                   // project id
	ActionManageGroupMembers: {predicate: groupMutator},                                         // group id
	ActionAppointGroupLeader: {roles: privileged, predicate: groupOwnerOrEnrolledCoordinator},   // group id
}
