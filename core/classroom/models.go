package classroom

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

type Class struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code"` // unique 6-char join code
	TeacherID   int       `json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// Membership links a user to a class with a per-class role. A user enrolls in
// a given class at most once.
type Membership struct {
	ID       int       `json:"id"`
	ClassID  int       `json:"class_id"`
	UserID   int       `json:"user_id"`
	Role     user.Role `json:"role"`
	JoinedAt time.Time `json:"joined_at"` // UTC
}

// Member is a class member as listed to other members.
type Member struct {
	UserID    int       `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

type Announcement struct {
	ID        int       `json:"id"`
	ClassID   int       `json:"class_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Documentation struct {
	ID        int       `json:"id"`
	ClassID   int       `json:"class_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Task struct {
	ID          int       `json:"id"`
	ClassID     int       `json:"class_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    null.Time `json:"deadline"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// Submission holds a student's work for a task; at most one per (task, student).
// A resubmission overwrites content and timestamp.
type Submission struct {
	ID          int         `json:"id"`
	TaskID      int         `json:"task_id"`
	StudentID   int         `json:"student_id"`
	Content     string      `json:"content"`
	Grade       null.Int    `json:"grade"`
	Feedback    null.String `json:"feedback"`
	SubmittedAt time.Time   `json:"submitted_at"` // UTC
}

type NewClass struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return core.Validate.Struct(nc)
}

type JoinClass struct {
	Code string `json:"code" validate:"required,len=6"`
}

func (jc *JoinClass) Validate() error {
	jc.Code = core.CleanString(jc.Code)
	return core.Validate.Struct(jc)
}

type NewAnnouncement struct {
	ClassID int    `json:"class_id" validate:"required,gt=0"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	return core.Validate.Struct(na)
}

type NewDocumentation struct {
	ClassID int    `json:"class_id" validate:"required,gt=0"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (nd *NewDocumentation) Validate() error {
	nd.Title = core.CleanString(nd.Title)
	return core.Validate.Struct(nd)
}

type NewTask struct {
	ClassID     int        `json:"class_id" validate:"required,gt=0"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
}

func (nt *NewTask) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	return core.Validate.Struct(nt)
}

type NewSubmission struct {
	TaskID  int    `json:"task_id" validate:"required,gt=0"`
	Content string `json:"content" validate:"required"`
}

func (ns *NewSubmission) Validate() error { return core.Validate.Struct(ns) }

type GradeSubmission struct {
	Grade    *int   `json:"grade" validate:"required,gte=0,lte=100"`
	Feedback string `json:"feedback"`
}

func (gs *GradeSubmission) Validate() error {
	gs.Feedback = core.CleanString(gs.Feedback)
	return core.Validate.Struct(gs)
}
