package messaging

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrSelfMessage      = errors.New("cannot send a private message to yourself")
	ErrReceiverNotFound = errors.New("receiver not found")
)

type Repository interface {
	CreateMessage(ctx context.Context, msg Message) (Message, error)
	QueryMessagesByClass(ctx context.Context, classID int) ([]Message, error)
	// QueryPrivateMessages returns private messages sent or received by the user.
	QueryPrivateMessages(ctx context.Context, userID int) ([]Message, error)
}

type Service struct {
	repo  Repository
	users user.Repository
}

func NewService(repo Repository, users user.Repository) *Service {
	return &Service{repo: repo, users: users}
}

// Post stores a new message. Public messages are gated upstream on class
// membership; private messages require an existing receiver other than the
// sender.
func (svc *Service) Post(ctx context.Context, senderID int, nm NewMessage) (Message, error) {
	msg := Message{
		Kind:     nm.Type,
		SenderID: senderID,
		Content:  nm.Content,
		SentAt:   time.Now().UTC(),
	}
	switch nm.Type {
	case KindPublic:
		msg.ClassID = null.IntFrom(nm.ClassID)
	case KindPrivate:
		if nm.ReceiverID == senderID {
			return Message{}, core.NewValidationError(ErrSelfMessage,
				core.FieldError{Field: "receiver_id", Error: ErrSelfMessage.Error()})
		}
		if _, err := svc.users.GetUserByID(ctx, nm.ReceiverID); err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return Message{}, ErrReceiverNotFound
			}
			return Message{}, err
		}
		msg.ReceiverID = null.IntFrom(nm.ReceiverID)
	}
	return svc.repo.CreateMessage(ctx, msg)
}

func (svc *Service) QueryByClass(ctx context.Context, classID int) ([]Message, error) {
	return svc.repo.QueryMessagesByClass(ctx, classID)
}

func (svc *Service) QueryPrivate(ctx context.Context, userID int) ([]Message, error) {
	return svc.repo.QueryPrivateMessages(ctx, userID)
}
