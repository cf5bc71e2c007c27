package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core/messaging"
)

type messageRepository struct {
	db *DB
}

var _ messaging.Repository = (*messageRepository)(nil)

func NewMessageRepository(db *DB) *messageRepository {
	return &messageRepository{db: db}
}

func (repo *messageRepository) CreateMessage(ctx context.Context, msg messaging.Message) (messaging.Message, error) {
	repo.db.track()
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	msg.ID = repo.db.nextPK()
	repo.db.messages[msg.ID] = &msg
	return msg, nil
}

func (repo *messageRepository) QueryMessagesByClass(ctx context.Context, classID int) ([]messaging.Message, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	msgs := make([]messaging.Message, 0)
	for _, msg := range repo.db.messages {
		if msg.Kind == messaging.KindPublic && msg.ClassID.Valid && msg.ClassID.Int == classID {
			msgs = append(msgs, *msg)
		}
	}
	sortBySentAt(msgs)
	return msgs, nil
}

func (repo *messageRepository) QueryPrivateMessages(ctx context.Context, userID int) ([]messaging.Message, error) {
	repo.db.track()
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	msgs := make([]messaging.Message, 0)
	for _, msg := range repo.db.messages {
		if msg.Kind != messaging.KindPrivate {
			continue
		}
		if msg.SenderID == userID || (msg.ReceiverID.Valid && msg.ReceiverID.Int == userID) {
			msgs = append(msgs, *msg)
		}
	}
	sortBySentAt(msgs)
	return msgs, nil
}

func sortBySentAt(msgs []messaging.Message) {
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].SentAt.Before(msgs[j].SentAt) })
}
