package project

import (
	"time"

	"github.com/trezcool/shule/core"
)

type Project struct {
	ID          int       `json:"id"`
	ClassID     int       `json:"class_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type Group struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// GroupMember links a student to a group. IsGroupCoordinator marks the group
// leader; this is unrelated to the global coordinator role.
type GroupMember struct {
	ID                 int       `json:"id"`
	GroupID            int       `json:"group_id"`
	UserID             int       `json:"user_id"`
	IsGroupCoordinator bool      `json:"is_group_coordinator"`
	AddedAt            time.Time `json:"added_at"` // UTC
}

// GroupDetail is a group with its members loaded.
type GroupDetail struct {
	Group
	Members []GroupMember `json:"members"`
}

type NewProject struct {
	ClassID     int    `json:"class_id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (np *NewProject) Validate() error {
	np.Name = core.CleanString(np.Name)
	np.Description = core.CleanString(np.Description)
	return core.Validate.Struct(np)
}

type NewGroup struct {
	ProjectID int    `json:"project_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required"`
}

func (ng *NewGroup) Validate() error {
	ng.Name = core.CleanString(ng.Name)
	return core.Validate.Struct(ng)
}

type NewGroupMember struct {
	UserID int `json:"user_id" validate:"required,gt=0"`
}

func (nm *NewGroupMember) Validate() error { return core.Validate.Struct(nm) }
