// Package inmemdb provides in-memory repositories backed by plain maps.
// It is meant for tests and local hacking, not production use.
package inmemdb

import (
	"sync"
	"sync/atomic"

	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/messaging"
	"github.com/trezcool/shule/core/project"
	"github.com/trezcool/shule/core/user"
)

type DB struct {
	mutex sync.RWMutex
	calls int64 // repository method invocations, for tests

	users         map[int]*user.User
	classes       map[int]*classroom.Class
	memberships   map[int]*classroom.Membership
	announcements map[int]*classroom.Announcement
	docs          map[int]*classroom.Documentation
	tasks         map[int]*classroom.Task
	submissions   map[int]*classroom.Submission
	messages      map[int]*messaging.Message
	projects      map[int]*project.Project
	groups        map[int]*project.Group
	groupMembers  map[int]*project.GroupMember

	pkCount int
}

func Open() *DB {
	return &DB{
		users:         make(map[int]*user.User),
		classes:       make(map[int]*classroom.Class),
		memberships:   make(map[int]*classroom.Membership),
		announcements: make(map[int]*classroom.Announcement),
		docs:          make(map[int]*classroom.Documentation),
		tasks:         make(map[int]*classroom.Task),
		submissions:   make(map[int]*classroom.Submission),
		messages:      make(map[int]*messaging.Message),
		projects:      make(map[int]*project.Project),
		groups:        make(map[int]*project.Group),
		groupMembers:  make(map[int]*project.GroupMember),
	}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}

func (db *DB) track() { atomic.AddInt64(&db.calls, 1) }

// CallCount returns the number of repository calls made since the last reset.
func (db *DB) CallCount() int64 { return atomic.LoadInt64(&db.calls) }

func (db *DB) ResetCallCount() { atomic.StoreInt64(&db.calls, 0) }
