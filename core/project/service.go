package project

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/user"
)

var (
	// errors
	ErrProjectNotFound     = errors.New("project not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrGroupMemberNotFound = errors.New("group member not found")
	ErrAlreadyInGroup      = errors.New("user is already in this group")
	ErrNotClassStudent     = errors.New("only students enrolled in the class can be added to a group")
)

type Repository interface {
	CreateProject(ctx context.Context, prj Project) (Project, error)
	GetProjectByID(ctx context.Context, id int) (Project, error)
	QueryProjectsByClass(ctx context.Context, classID int) ([]Project, error)
	CreateGroup(ctx context.Context, grp Group) (Group, error)
	GetGroupByID(ctx context.Context, id int) (Group, error)
	QueryGroupsByProject(ctx context.Context, projectID int) ([]Group, error)
	// AddGroupMember fails with ErrAlreadyInGroup on a duplicate (group, user) pair.
	AddGroupMember(ctx context.Context, mbr GroupMember) (GroupMember, error)
	GetGroupMember(ctx context.Context, groupID, userID int) (GroupMember, error)
	QueryGroupMembers(ctx context.Context, groupID int) ([]GroupMember, error)
	RemoveGroupMember(ctx context.Context, groupID, userID int) error
	SetGroupCoordinator(ctx context.Context, groupID, userID int, isCoord bool) (GroupMember, error)
}

type Service struct {
	repo    Repository
	users   user.Repository
	classes classroom.ClassRepository
}

func NewService(repo Repository, users user.Repository, classes classroom.ClassRepository) *Service {
	return &Service{repo: repo, users: users, classes: classes}
}

func (svc *Service) CreateProject(ctx context.Context, np NewProject) (Project, error) {
	return svc.repo.CreateProject(ctx, Project{
		ClassID:     np.ClassID,
		Name:        np.Name,
		Description: np.Description,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) GetProjectByID(ctx context.Context, id int) (Project, error) {
	return svc.repo.GetProjectByID(ctx, id)
}

func (svc *Service) QueryProjectsByClass(ctx context.Context, classID int) ([]Project, error) {
	return svc.repo.QueryProjectsByClass(ctx, classID)
}

func (svc *Service) CreateGroup(ctx context.Context, ng NewGroup) (Group, error) {
	return svc.repo.CreateGroup(ctx, Group{
		ProjectID: ng.ProjectID,
		Name:      ng.Name,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) GetGroupByID(ctx context.Context, id int) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

// QueryGroupsByProject loads the project's groups with their members, one
// group at a time.
func (svc *Service) QueryGroupsByProject(ctx context.Context, projectID int) ([]GroupDetail, error) {
	groups, err := svc.repo.QueryGroupsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	details := make([]GroupDetail, 0, len(groups))
	for _, grp := range groups {
		members, err := svc.repo.QueryGroupMembers(ctx, grp.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "loading members of group %d", grp.ID)
		}
		details = append(details, GroupDetail{Group: grp, Members: members})
	}
	return details, nil
}

// AddMember adds a student to a group. The student must be enrolled in the
// class of the group's project.
func (svc *Service) AddMember(ctx context.Context, groupID, userID int) (GroupMember, error) {
	grp, err := svc.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return GroupMember{}, err
	}
	prj, err := svc.repo.GetProjectByID(ctx, grp.ProjectID)
	if err != nil {
		return GroupMember{}, errors.Wrap(err, "loading group project")
	}

	usr, err := svc.users.GetUserByID(ctx, userID)
	if err != nil {
		return GroupMember{}, err
	}
	if !usr.IsStudent() {
		return GroupMember{}, ErrNotClassStudent
	}
	if _, err = svc.classes.GetMembership(ctx, prj.ClassID, userID); err != nil {
		if errors.Cause(err) == classroom.ErrMembershipNotFound {
			return GroupMember{}, ErrNotClassStudent
		}
		return GroupMember{}, err
	}

	mbr, err := svc.repo.AddGroupMember(ctx, GroupMember{
		GroupID: groupID,
		UserID:  userID,
		AddedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyInGroup {
			return GroupMember{}, core.NewConflictError(ErrAlreadyInGroup)
		}
		return GroupMember{}, err
	}
	return mbr, nil
}

func (svc *Service) RemoveMember(ctx context.Context, groupID, userID int) error {
	return svc.repo.RemoveGroupMember(ctx, groupID, userID)
}

// AppointLeader marks an existing group member as the group coordinator.
func (svc *Service) AppointLeader(ctx context.Context, groupID, userID int) (GroupMember, error) {
	if _, err := svc.repo.GetGroupMember(ctx, groupID, userID); err != nil {
		return GroupMember{}, err
	}
	return svc.repo.SetGroupCoordinator(ctx, groupID, userID, true)
}
