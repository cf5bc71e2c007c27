package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/messaging"
)

type messageRow struct {
	ID         int       `db:"id"`
	Type       string    `db:"type"`
	SenderID   int       `db:"sender_id"`
	ClassID    null.Int  `db:"class_id"`
	ReceiverID null.Int  `db:"receiver_id"`
	Content    string    `db:"content"`
	SentAt     time.Time `db:"sent_at"`
}

func (r messageRow) toModel() messaging.Message {
	return messaging.Message{
		ID:         r.ID,
		Kind:       messaging.Kind(r.Type),
		SenderID:   r.SenderID,
		ClassID:    r.ClassID,
		ReceiverID: r.ReceiverID,
		Content:    r.Content,
		SentAt:     r.SentAt,
	}
}

type messageRepository struct {
	db *sqlx.DB
}

var _ messaging.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{db: db}
}

const messageColumns = `id, type, sender_id, class_id, receiver_id, content, sent_at`

func (repo *messageRepository) CreateMessage(ctx context.Context, msg messaging.Message) (messaging.Message, error) {
	q := `INSERT INTO message (type, sender_id, class_id, receiver_id, content, sent_at)
	      VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := repo.db.GetContext(ctx, &msg.ID, q,
		string(msg.Kind), msg.SenderID, msg.ClassID, msg.ReceiverID, msg.Content, msg.SentAt)
	if err != nil {
		return messaging.Message{}, errors.Wrap(err, "inserting message")
	}
	return msg, nil
}

// chronological orders message listings oldest first.
var chronological = core.DBOrdering{Field: "sent_at", Ascending: true}

func (repo *messageRepository) QueryMessagesByClass(ctx context.Context, classID int) ([]messaging.Message, error) {
	q := `SELECT ` + messageColumns + ` FROM message WHERE type = 'public' AND class_id = $1` +
		core.OrderBy(chronological)
	var rows []messageRow
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying class messages")
	}
	msgs := make([]messaging.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.toModel())
	}
	return msgs, nil
}

func (repo *messageRepository) QueryPrivateMessages(ctx context.Context, userID int) ([]messaging.Message, error) {
	q := `SELECT ` + messageColumns + ` FROM message
	      WHERE type = 'private' AND (sender_id = $1 OR receiver_id = $1)` +
		core.OrderBy(chronological)
	var rows []messageRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying private messages")
	}
	msgs := make([]messaging.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.toModel())
	}
	return msgs, nil
}
