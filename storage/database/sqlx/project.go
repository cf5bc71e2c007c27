package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/project"
)

type projectRow struct {
	ID          int       `db:"id"`
	ClassID     int       `db:"class_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type groupRow struct {
	ID        int       `db:"id"`
	ProjectID int       `db:"project_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type groupMemberRow struct {
	ID                 int       `db:"id"`
	GroupID            int       `db:"group_id"`
	UserID             int       `db:"user_id"`
	IsGroupCoordinator bool      `db:"is_group_coordinator"`
	AddedAt            time.Time `db:"added_at"`
}

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *sqlx.DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	q := `INSERT INTO project (class_id, name, description, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.GetContext(ctx, &prj.ID, q, prj.ClassID, prj.Name, prj.Description, prj.CreatedAt); err != nil {
		return project.Project{}, errors.Wrap(err, "inserting project")
	}
	return prj, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id int) (project.Project, error) {
	var r projectRow
	q := `SELECT id, class_id, name, description, created_at FROM project WHERE id = $1`
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return project.Project{}, trapNoRows(err, project.ErrProjectNotFound, "getting project by id")
	}
	return project.Project(r), nil
}

func (repo *projectRepository) QueryProjectsByClass(ctx context.Context, classID int) ([]project.Project, error) {
	q := `SELECT id, class_id, name, description, created_at FROM project WHERE class_id = $1 ORDER BY created_at DESC`
	var rows []projectRow
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	projects := make([]project.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, project.Project(r))
	}
	return projects, nil
}

func (repo *projectRepository) CreateGroup(ctx context.Context, grp project.Group) (project.Group, error) {
	q := `INSERT INTO "group" (project_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := repo.db.GetContext(ctx, &grp.ID, q, grp.ProjectID, grp.Name, grp.CreatedAt); err != nil {
		return project.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo *projectRepository) GetGroupByID(ctx context.Context, id int) (project.Group, error) {
	var r groupRow
	q := `SELECT id, project_id, name, created_at FROM "group" WHERE id = $1`
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return project.Group{}, trapNoRows(err, project.ErrGroupNotFound, "getting group by id")
	}
	return project.Group(r), nil
}

func (repo *projectRepository) QueryGroupsByProject(ctx context.Context, projectID int) ([]project.Group, error) {
	q := `SELECT id, project_id, name, created_at FROM "group" WHERE project_id = $1 ORDER BY created_at`
	var rows []groupRow
	if err := repo.db.SelectContext(ctx, &rows, q, projectID); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	groups := make([]project.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, project.Group(r))
	}
	return groups, nil
}

func (repo *projectRepository) AddGroupMember(ctx context.Context, mbr project.GroupMember) (project.GroupMember, error) {
	q := `INSERT INTO group_member (group_id, user_id, is_group_coordinator, added_at)
	      VALUES ($1, $2, $3, $4) RETURNING id`
	err := repo.db.GetContext(ctx, &mbr.ID, q, mbr.GroupID, mbr.UserID, mbr.IsGroupCoordinator, mbr.AddedAt)
	if err != nil {
		if uniqueViolation(err, "group_member_group_user_key") {
			return project.GroupMember{}, project.ErrAlreadyInGroup
		}
		return project.GroupMember{}, errors.Wrap(err, "inserting group member")
	}
	return mbr, nil
}

func (repo *projectRepository) GetGroupMember(ctx context.Context, groupID, userID int) (project.GroupMember, error) {
	var r groupMemberRow
	q := `SELECT id, group_id, user_id, is_group_coordinator, added_at FROM group_member WHERE group_id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &r, q, groupID, userID); err != nil {
		return project.GroupMember{}, trapNoRows(err, project.ErrGroupMemberNotFound, "getting group member")
	}
	return project.GroupMember(r), nil
}

func (repo *projectRepository) QueryGroupMembers(ctx context.Context, groupID int) ([]project.GroupMember, error) {
	q := `SELECT id, group_id, user_id, is_group_coordinator, added_at FROM group_member WHERE group_id = $1 ORDER BY added_at`
	var rows []groupMemberRow
	if err := repo.db.SelectContext(ctx, &rows, q, groupID); err != nil {
		return nil, errors.Wrap(err, "querying group members")
	}
	members := make([]project.GroupMember, 0, len(rows))
	for _, r := range rows {
		members = append(members, project.GroupMember(r))
	}
	return members, nil
}

func (repo *projectRepository) RemoveGroupMember(ctx context.Context, groupID, userID int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM group_member WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return errors.Wrap(err, "removing group member")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return project.ErrGroupMemberNotFound
	}
	return nil
}

func (repo *projectRepository) SetGroupCoordinator(ctx context.Context, groupID, userID int, isCoord bool) (project.GroupMember, error) {
	q := `UPDATE group_member SET is_group_coordinator = $3 WHERE group_id = $1 AND user_id = $2
	      RETURNING id, group_id, user_id, is_group_coordinator, added_at`
	var r groupMemberRow
	if err := repo.db.GetContext(ctx, &r, q, groupID, userID, isCoord); err != nil {
		return project.GroupMember{}, trapNoRows(err, project.ErrGroupMemberNotFound, "setting group coordinator")
	}
	return project.GroupMember(r), nil
}
