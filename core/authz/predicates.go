package authz

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/project"
	"github.com/trezcool/shule/core/user"
)

// Relationship predicates. Each receives the id of the resource noted in the
// policy table, checks existence first (ErrNotFound), then relates the
// identity to it (ErrForbidden).

// classMember requires an enrollment row linking the identity to the class.
func classMember(e *Engine, ctx context.Context, idn Identity, classID int) error {
	if _, err := e.getClass(ctx, classID); err != nil {
		return err
	}
	_, ok, err := e.getMembership(ctx, classID, idn.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// classOwner requires the identity to be the class's owning teacher.
func classOwner(e *Engine, ctx context.Context, idn Identity, classID int) error {
	cls, err := e.getClass(ctx, classID)
	if err != nil {
		return err
	}
	if cls.TeacherID != idn.ID {
		return ErrForbidden
	}
	return nil
}

// classPrivilegedMember requires enrollment with a per-class teacher or
// coordinator role.
func classPrivilegedMember(e *Engine, ctx context.Context, idn Identity, classID int) error {
	if _, err := e.getClass(ctx, classID); err != nil {
		return err
	}
	mbr, ok, err := e.getMembership(ctx, classID, idn.ID)
	if err != nil {
		return err
	}
	if !ok || !(mbr.Role == user.RoleTeacher || mbr.Role == user.RoleCoordinator) {
		return ErrForbidden
	}
	return nil
}

// classMemberOfTask requires enrollment in the task's class.
func classMemberOfTask(e *Engine, ctx context.Context, idn Identity, taskID int) error {
	tsk, err := e.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	_, ok, err := e.getMembership(ctx, tsk.ClassID, idn.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// classOwnerOfTask requires ownership of the task's class.
func classOwnerOfTask(e *Engine, ctx context.Context, idn Identity, taskID int) error {
	tsk, err := e.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	return e.ownsClassOf(ctx, idn, tsk)
}

// submissionPartyOrTaskOwner allows the submitting student or the owning
// teacher of the submission's task.
func submissionPartyOrTaskOwner(e *Engine, ctx context.Context, idn Identity, subID int) error {
	sub, err := e.getSubmission(ctx, subID)
	if err != nil {
		return err
	}
	if sub.StudentID == idn.ID {
		return nil
	}
	tsk, err := e.getTask(ctx, sub.TaskID)
	if err != nil {
		return err
	}
	return e.ownsClassOf(ctx, idn, tsk)
}

// taskOwnerOfSubmission requires ownership of the class of the submission's task.
func taskOwnerOfSubmission(e *Engine, ctx context.Context, idn Identity, subID int) error {
	sub, err := e.getSubmission(ctx, subID)
	if err != nil {
		return err
	}
	tsk, err := e.getTask(ctx, sub.TaskID)
	if err != nil {
		return err
	}
	return e.ownsClassOf(ctx, idn, tsk)
}

// classOwnerOrEnrolledCoordinator implements the elevated-role override: a
// teacher must own the class; a coordinator must additionally be enrolled in
// it — the coordinator role alone is insufficient for class-scoped writes.
func classOwnerOrEnrolledCoordinator(e *Engine, ctx context.Context, idn Identity, classID int) error {
	cls, err := e.getClass(ctx, classID)
	if err != nil {
		return err
	}
	return e.ownerOrEnrolledCoordinator(ctx, idn, cls)
}

// projectOwnerOrEnrolledCoordinator applies the same override through
// Project→Class.
func projectOwnerOrEnrolledCoordinator(e *Engine, ctx context.Context, idn Identity, projectID int) error {
	prj, err := e.getProject(ctx, projectID)
	if err != nil {
		return err
	}
	cls, err := e.getClass(ctx, prj.ClassID)
	if err != nil {
		return err
	}
	return e.ownerOrEnrolledCoordinator(ctx, idn, cls)
}

// projectClassMember requires enrollment in the project's class.
func projectClassMember(e *Engine, ctx context.Context, idn Identity, projectID int) error {
	prj, err := e.getProject(ctx, projectID)
	if err != nil {
		return err
	}
	_, ok, err := e.getMembership(ctx, prj.ClassID, idn.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// groupMutator allows the class-owning teacher, an enrolled coordinator, or
// the group's leader (IsGroupCoordinator, distinct from the global
// coordinator role).
func groupMutator(e *Engine, ctx context.Context, idn Identity, groupID int) error {
	grp, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	mbr, err := e.projects.GetGroupMember(ctx, groupID, idn.ID)
	if err != nil && errors.Cause(err) != project.ErrGroupMemberNotFound {
		return errors.Wrap(err, "looking up group member")
	}
	if err == nil && mbr.IsGroupCoordinator {
		return nil
	}
	prj, err := e.getProject(ctx, grp.ProjectID)
	if err != nil {
		return err
	}
	cls, err := e.getClass(ctx, prj.ClassID)
	if err != nil {
		return err
	}
	return e.ownerOrEnrolledCoordinator(ctx, idn, cls)
}

// groupOwnerOrEnrolledCoordinator applies the elevated-role override through
// Group→Project→Class.
func groupOwnerOrEnrolledCoordinator(e *Engine, ctx context.Context, idn Identity, groupID int) error {
	grp, err := e.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	return projectOwnerOrEnrolledCoordinator(e, ctx, idn, grp.ProjectID)
}

func (e *Engine) ownsClassOf(ctx context.Context, idn Identity, tsk classroom.Task) error {
	cls, err := e.getClass(ctx, tsk.ClassID)
	if err != nil {
		return err
	}
	if cls.TeacherID != idn.ID {
		return ErrForbidden
	}
	return nil
}

func (e *Engine) ownerOrEnrolledCoordinator(ctx context.Context, idn Identity, cls classroom.Class) error {
	switch idn.Role {
	case user.RoleTeacher:
		if cls.TeacherID == idn.ID {
			return nil
		}
	case user.RoleCoordinator:
		_, ok, err := e.getMembership(ctx, cls.ID, idn.ID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrForbidden
}
