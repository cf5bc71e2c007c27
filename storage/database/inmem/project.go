package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core/project"
)

type projectRepository struct {
	db *DB
}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository(db *DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	prj.ID = repo.db.nextPK()
	repo.db.projects[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id int) (project.Project, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if prj, ok := repo.db.projects[id]; ok {
		return *prj, nil
	}
	return project.Project{}, project.ErrProjectNotFound
}

func (repo *projectRepository) QueryProjectsByClass(ctx context.Context, classID int) ([]project.Project, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	projects := make([]project.Project, 0)
	for _, prj := range repo.db.projects {
		if prj.ClassID == classID {
			projects = append(projects, *prj)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return projects, nil
}

func (repo *projectRepository) CreateGroup(ctx context.Context, grp project.Group) (project.Group, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	grp.ID = repo.db.nextPK()
	repo.db.groups[grp.ID] = &grp
	return grp, nil
}

func (repo *projectRepository) GetGroupByID(ctx context.Context, id int) (project.Group, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if grp, ok := repo.db.groups[id]; ok {
		return *grp, nil
	}
	return project.Group{}, project.ErrGroupNotFound
}

func (repo *projectRepository) QueryGroupsByProject(ctx context.Context, projectID int) ([]project.Group, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	groups := make([]project.Group, 0)
	for _, grp := range repo.db.groups {
		if grp.ProjectID == projectID {
			groups = append(groups, *grp)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].CreatedAt.Before(groups[j].CreatedAt) })
	return groups, nil
}

func (repo *projectRepository) AddGroupMember(ctx context.Context, mbr project.GroupMember) (project.GroupMember, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, m := range repo.db.groupMembers {
		if m.GroupID == mbr.GroupID && m.UserID == mbr.UserID {
			return project.GroupMember{}, project.ErrAlreadyInGroup
		}
	}
	mbr.ID = repo.db.nextPK()
	repo.db.groupMembers[mbr.ID] = &mbr
	return mbr, nil
}

func (repo *projectRepository) GetGroupMember(ctx context.Context, groupID, userID int) (project.GroupMember, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, mbr := range repo.db.groupMembers {
		if mbr.GroupID == groupID && mbr.UserID == userID {
			return *mbr, nil
		}
	}
	return project.GroupMember{}, project.ErrGroupMemberNotFound
}

func (repo *projectRepository) QueryGroupMembers(ctx context.Context, groupID int) ([]project.GroupMember, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	members := make([]project.GroupMember, 0)
	for _, mbr := range repo.db.groupMembers {
		if mbr.GroupID == groupID {
			members = append(members, *mbr)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].AddedAt.Before(members[j].AddedAt) })
	return members, nil
}

func (repo *projectRepository) RemoveGroupMember(ctx context.Context, groupID, userID int) error {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, mbr := range repo.db.groupMembers {
		if mbr.GroupID == groupID && mbr.UserID == userID {
			delete(repo.db.groupMembers, id)
			return nil
		}
	}
	return project.ErrGroupMemberNotFound
}

func (repo *projectRepository) SetGroupCoordinator(ctx context.Context, groupID, userID int, isCoord bool) (project.GroupMember, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, mbr := range repo.db.groupMembers {
		if mbr.GroupID == groupID && mbr.UserID == userID {
			mbr.IsGroupCoordinator = isCoord
			return *mbr, nil
		}
	}
	return project.GroupMember{}, project.ErrGroupMemberNotFound
}
