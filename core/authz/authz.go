// Package authz decides, per operation, whether an authenticated identity may
// proceed. Every rule lives in one policy table: a role allow-list evaluated
// from the token claims alone, then a relationship predicate evaluated against
// the store. Evaluation order is fixed: role gate, resource existence,
// relationship predicate.
package authz

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/project"
	"github.com/trezcool/shule/core/user"
)

var (
	// ErrForbidden is returned when the role gate or a relationship predicate
	// denies the operation. The two cases are not distinguished to the caller.
	ErrForbidden = errors.New("permission denied")

	// ErrNotFound is returned when the referenced resource does not exist.
	// Only existence is observable; resource contents are never surfaced.
	ErrNotFound = errors.New("not found")
)

// Identity is the decoded token identity. It is a snapshot taken at token
// issuance and may be stale relative to the store: a role change takes effect
// on the next login.
type Identity struct {
	ID    int
	Email string
	Role  user.Role
}

// Engine evaluates the policy table. It only ever reads from the store.
type Engine struct {
	classes     classroom.ClassRepository
	tasks       classroom.TaskRepository
	submissions classroom.SubmissionRepository
	projects    project.Repository
}

func NewEngine(
	classes classroom.ClassRepository,
	tasks classroom.TaskRepository,
	submissions classroom.SubmissionRepository,
	projects project.Repository,
) *Engine {
	return &Engine{
		classes:     classes,
		tasks:       tasks,
		submissions: submissions,
		projects:    projects,
	}
}

// Authorize is the single authorization entry point. resourceID identifies the
// resource the action's predicate relates the identity to (a class, task,
// submission, project or group id depending on the action); it is ignored for
// role-gate-only actions.
func (e *Engine) Authorize(ctx context.Context, idn Identity, action Action, resourceID int) error {
	rule, ok := policy[action]
	if !ok {
		return ErrForbidden
	}
	if !rule.allows(idn.Role) {
		return ErrForbidden
	}
	if rule.predicate == nil {
		return nil
	}
	return rule.predicate(e, ctx, idn, resourceID)
}

// store lookups, with domain not-found errors mapped to ErrNotFound

func (e *Engine) getClass(ctx context.Context, id int) (classroom.Class, error) {
	cls, err := e.classes.GetClassByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == classroom.ErrClassNotFound {
			return classroom.Class{}, ErrNotFound
		}
		return classroom.Class{}, errors.Wrap(err, "looking up class")
	}
	return cls, nil
}

func (e *Engine) getTask(ctx context.Context, id int) (classroom.Task, error) {
	tsk, err := e.tasks.GetTaskByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == classroom.ErrTaskNotFound {
			return classroom.Task{}, ErrNotFound
		}
		return classroom.Task{}, errors.Wrap(err, "looking up task")
	}
	return tsk, nil
}

func (e *Engine) getSubmission(ctx context.Context, id int) (classroom.Submission, error) {
	sub, err := e.submissions.GetSubmissionByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == classroom.ErrSubmissionNotFound {
			return classroom.Submission{}, ErrNotFound
		}
		return classroom.Submission{}, errors.Wrap(err, "looking up submission")
	}
	return sub, nil
}

func (e *Engine) getProject(ctx context.Context, id int) (project.Project, error) {
	prj, err := e.projects.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == project.ErrProjectNotFound {
			return project.Project{}, ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "looking up project")
	}
	return prj, nil
}

func (e *Engine) getGroup(ctx context.Context, id int) (project.Group, error) {
	grp, err := e.projects.GetGroupByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == project.ErrGroupNotFound {
			return project.Group{}, ErrNotFound
		}
		return project.Group{}, errors.Wrap(err, "looking up group")
	}
	return grp, nil
}

func (e *Engine) getMembership(ctx context.Context, classID, userID int) (classroom.Membership, bool, error) {
	mbr, err := e.classes.GetMembership(ctx, classID, userID)
	if err != nil {
		if errors.Cause(err) == classroom.ErrMembershipNotFound {
			return classroom.Membership{}, false, nil
		}
		return classroom.Membership{}, false, errors.Wrap(err, "looking up membership")
	}
	return mbr, true, nil
}
