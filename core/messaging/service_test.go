package messaging_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/messaging"
	"github.com/trezcool/shule/core/user"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

func newSvc(t *testing.T) (*messaging.Service, user.Repository) {
	t.Helper()
	db := inmemdb.Open()
	users := inmemdb.NewUserRepository(db)
	return messaging.NewService(inmemdb.NewMessageRepository(db), users), users
}

func mkUser(t *testing.T, users user.Repository, email string) user.User {
	t.Helper()
	usr, err := users.CreateUser(context.Background(), user.User{
		FirstName: "Test", LastName: "User", Email: email, Role: user.RoleStudent,
	})
	require.NoError(t, err)
	return usr
}

func TestService_Post(t *testing.T) {
	svc, users := newSvc(t)
	ctx := context.Background()

	sender := mkUser(t, users, "sender@test.test")
	receiver := mkUser(t, users, "receiver@test.test")

	t.Run("public message is scoped to its class", func(t *testing.T) {
		msg, err := svc.Post(ctx, sender.ID, messaging.NewMessage{
			Type: messaging.KindPublic, ClassID: 7, Content: "hello class",
		})
		require.NoError(t, err)
		assert.Equal(t, messaging.KindPublic, msg.Kind)
		assert.Equal(t, 7, msg.ClassID.Int)
		assert.False(t, msg.ReceiverID.Valid)
	})

	t.Run("private message requires an existing receiver", func(t *testing.T) {
		_, err := svc.Post(ctx, sender.ID, messaging.NewMessage{
			Type: messaging.KindPrivate, ReceiverID: 999, Content: "hi",
		})
		assert.Equal(t, messaging.ErrReceiverNotFound, err)
	})

	t.Run("private message to self rejected", func(t *testing.T) {
		_, err := svc.Post(ctx, sender.ID, messaging.NewMessage{
			Type: messaging.KindPrivate, ReceiverID: sender.ID, Content: "dear me",
		})
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok)
		require.Len(t, vErr.Fields, 1)
		assert.Equal(t, "receiver_id", vErr.Fields[0].Field)
	})

	t.Run("private message delivered", func(t *testing.T) {
		msg, err := svc.Post(ctx, sender.ID, messaging.NewMessage{
			Type: messaging.KindPrivate, ReceiverID: receiver.ID, Content: "hi",
		})
		require.NoError(t, err)
		assert.Equal(t, receiver.ID, msg.ReceiverID.Int)

		// visible to both parties, as sent or received
		for _, uid := range []int{sender.ID, receiver.ID} {
			msgs, err := svc.QueryPrivate(ctx, uid)
			require.NoError(t, err)
			assert.Len(t, msgs, 1)
		}

		// not visible to third parties nor in class listings
		third := mkUser(t, users, "third@test.test")
		msgs, err := svc.QueryPrivate(ctx, third.ID)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("class listing only returns public messages", func(t *testing.T) {
		msgs, err := svc.QueryByClass(ctx, 7)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, messaging.KindPublic, msgs[0].Kind)
	})
}
