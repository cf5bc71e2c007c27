package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core/classroom"
)

type classRepository struct {
	db *DB
}

var _ classroom.ClassRepository = (*classRepository)(nil)

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) CreateClass(ctx context.Context, cls classroom.Class) (classroom.Class, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, c := range repo.db.classes {
		if c.Code == cls.Code {
			return classroom.Class{}, classroom.ErrCodeExists
		}
	}
	cls.ID = repo.db.nextPK()
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id int) (classroom.Class, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return classroom.Class{}, classroom.ErrClassNotFound
}

func (repo *classRepository) GetClassByCode(ctx context.Context, code string) (classroom.Class, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cls := range repo.db.classes {
		if cls.Code == code {
			return *cls, nil
		}
	}
	return classroom.Class{}, classroom.ErrClassNotFound
}

func (repo *classRepository) QueryClassesByMember(ctx context.Context, userID int) ([]classroom.Class, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]classroom.Class, 0)
	for _, mbr := range repo.db.memberships {
		if mbr.UserID == userID {
			if cls, ok := repo.db.classes[mbr.ClassID]; ok {
				classes = append(classes, *cls)
			}
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int) error {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[id]; !ok {
		return classroom.ErrClassNotFound
	}
	delete(repo.db.classes, id)
	for mid, mbr := range repo.db.memberships {
		if mbr.ClassID == id {
			delete(repo.db.memberships, mid)
		}
	}
	return nil
}

func (repo *classRepository) AddMember(ctx context.Context, mbr classroom.Membership) (classroom.Membership, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, m := range repo.db.memberships {
		if m.ClassID == mbr.ClassID && m.UserID == mbr.UserID {
			return classroom.Membership{}, classroom.ErrAlreadyEnrolled
		}
	}
	mbr.ID = repo.db.nextPK()
	repo.db.memberships[mbr.ID] = &mbr
	return mbr, nil
}

func (repo *classRepository) GetMembership(ctx context.Context, classID, userID int) (classroom.Membership, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, mbr := range repo.db.memberships {
		if mbr.ClassID == classID && mbr.UserID == userID {
			return *mbr, nil
		}
	}
	return classroom.Membership{}, classroom.ErrMembershipNotFound
}

func (repo *classRepository) QueryMembers(ctx context.Context, classID int) ([]classroom.Member, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	members := make([]classroom.Member, 0)
	for _, mbr := range repo.db.memberships {
		if mbr.ClassID != classID {
			continue
		}
		usr, ok := repo.db.users[mbr.UserID]
		if !ok {
			continue
		}
		members = append(members, classroom.Member{
			UserID:    usr.ID,
			FirstName: usr.FirstName,
			LastName:  usr.LastName,
			Email:     usr.Email,
			Role:      mbr.Role,
			JoinedAt:  mbr.JoinedAt,
		})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

type postRepository struct {
	db *DB
}

var _ classroom.PostRepository = (*postRepository)(nil)

func NewPostRepository(db *DB) *postRepository {
	return &postRepository{db: db}
}

func (repo *postRepository) CreateAnnouncement(ctx context.Context, ann classroom.Announcement) (classroom.Announcement, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ann.ID = repo.db.nextPK()
	repo.db.announcements[ann.ID] = &ann
	return ann, nil
}

func (repo *postRepository) QueryAnnouncementsByClass(ctx context.Context, classID int) ([]classroom.Announcement, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	anns := make([]classroom.Announcement, 0)
	for _, ann := range repo.db.announcements {
		if ann.ClassID == classID {
			anns = append(anns, *ann)
		}
	}
	sort.Slice(anns, func(i, j int) bool { return anns[i].CreatedAt.After(anns[j].CreatedAt) })
	return anns, nil
}

func (repo *postRepository) CreateDocumentation(ctx context.Context, doc classroom.Documentation) (classroom.Documentation, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	doc.ID = repo.db.nextPK()
	repo.db.docs[doc.ID] = &doc
	return doc, nil
}

func (repo *postRepository) QueryDocumentationsByClass(ctx context.Context, classID int) ([]classroom.Documentation, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	docs := make([]classroom.Documentation, 0)
	for _, doc := range repo.db.docs {
		if doc.ClassID == classID {
			docs = append(docs, *doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs, nil
}

type taskRepository struct {
	db *DB
}

var _ classroom.TaskRepository = (*taskRepository)(nil)

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, tsk classroom.Task) (classroom.Task, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tsk.ID = repo.db.nextPK()
	repo.db.tasks[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id int) (classroom.Task, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tsk, ok := repo.db.tasks[id]; ok {
		return *tsk, nil
	}
	return classroom.Task{}, classroom.ErrTaskNotFound
}

func (repo *taskRepository) QueryTasksByClass(ctx context.Context, classID int) ([]classroom.Task, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tasks := make([]classroom.Task, 0)
	for _, tsk := range repo.db.tasks {
		if tsk.ClassID == classID {
			tasks = append(tasks, *tsk)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

type submissionRepository struct {
	db *DB
}

var _ classroom.SubmissionRepository = (*submissionRepository)(nil)

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) UpsertSubmission(ctx context.Context, sub classroom.Submission) (classroom.Submission, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, s := range repo.db.submissions {
		if s.TaskID == sub.TaskID && s.StudentID == sub.StudentID {
			s.Content = sub.Content
			s.SubmittedAt = sub.SubmittedAt
			return *s, nil
		}
	}
	sub.ID = repo.db.nextPK()
	repo.db.submissions[sub.ID] = &sub
	return sub, nil
}

func (repo *submissionRepository) GetSubmissionByID(ctx context.Context, id int) (classroom.Submission, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.submissions[id]; ok {
		return *sub, nil
	}
	return classroom.Submission{}, classroom.ErrSubmissionNotFound
}

func (repo *submissionRepository) QuerySubmissionsByTask(ctx context.Context, taskID int) ([]classroom.Submission, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subs := make([]classroom.Submission, 0)
	for _, sub := range repo.db.submissions {
		if sub.TaskID == taskID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.Before(subs[j].SubmittedAt) })
	return subs, nil
}

func (repo *submissionRepository) GradeSubmission(ctx context.Context, id, grade int, feedback string) (classroom.Submission, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub, ok := repo.db.submissions[id]
	if !ok {
		return classroom.Submission{}, classroom.ErrSubmissionNotFound
	}
	sub.Grade.SetValid(grade)
	sub.Feedback.SetValid(feedback)
	return *sub, nil
}
