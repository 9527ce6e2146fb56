package service

import (
	"testing"
	"time"

	"github.com/mingle/mingle-backend/internal/common"
	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) openDirect(t *testing.T, a, b uint64) uint64 {
	t.Helper()
	conv, _, err := e.conversations.FindOrCreateDirect(a, b)
	require.NoError(t, err)
	return conv.ID
}

func waitForEvents(t *testing.T, emitter *fakeEmitter, eventType string, n int) []ws.Event {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(emitter.eventsOfType(eventType)) >= n
	}, 2*time.Second, 10*time.Millisecond)
	return emitter.eventsOfType(eventType)
}

func TestSendTextMessage(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob")
	convID := env.openDirect(t, users[0].ID, users[1].ID)

	resp, err := svc.Send(users[0].ID, convID, &domain.SendMessageRequest{
		Type:    domain.TypeText,
		Content: strPtr("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeText, resp.Type)
	assert.Equal(t, "hello", *resp.Content)
	assert.Equal(t, "alice", resp.Sender.Nickname)
	assert.False(t, resp.IsRead)

	waitForEvents(t, env.emitter, ws.EventNewMessage, 1)
	waitForEvents(t, env.emitter, ws.EventNewNotification, 1)

	// The recipient got a notification row
	count, err := env.notifications.UnreadCount(users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The sender did not
	count, err = env.notifications.UnreadCount(users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSendValidation(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob")
	convID := env.openDirect(t, users[0].ID, users[1].ID)

	cases := []struct {
		name string
		req  *domain.SendMessageRequest
	}{
		{"text without content", &domain.SendMessageRequest{Type: domain.TypeText}},
		{"empty text", &domain.SendMessageRequest{Type: domain.TypeText, Content: strPtr("")}},
		{"image without url", &domain.SendMessageRequest{Type: domain.TypeImage}},
		{"gift without reference", &domain.SendMessageRequest{Type: domain.TypeGift}},
		{"unknown type", &domain.SendMessageRequest{Type: "sticker"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(users[0].ID, convID, tc.req)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}

	// Nothing was persisted
	_, total, err := env.messages.List(convID, 0, 50, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestSendRequiresMembership(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob", "mallory")
	convID := env.openDirect(t, users[0].ID, users[1].ID)

	req := &domain.SendMessageRequest{Type: domain.TypeText, Content: strPtr("hi")}

	_, err := svc.Send(users[2].ID, convID, req)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// A participant who left can no longer send
	require.NoError(t, env.conversations.Leave(convID, users[0].ID))
	_, err = svc.Send(users[0].ID, convID, req)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.Send(users[1].ID, 9999, req)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSendGiftFromStoreItem(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob")
	convID := env.openDirect(t, users[0].ID, users[1].ID)

	resp, err := svc.Send(users[0].ID, convID, &domain.SendMessageRequest{
		Type:       domain.TypeGift,
		GiftItemID: u64Ptr(42),
		GiftName:   "Rose",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Gift)
	assert.Equal(t, uint64(42), resp.Gift.ItemID)
	assert.Equal(t, "Rose", resp.Gift.Name)

	// The gift targets the direct peer
	gift, err := env.gifts.FindByID(resp.Gift.ID)
	require.NoError(t, err)
	assert.Equal(t, users[0].ID, gift.SenderID)
	assert.Equal(t, users[1].ID, gift.ReceiverID)
}

func TestSendBusinessCard(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob")
	convID := env.openDirect(t, users[0].ID, users[1].ID)

	resp, err := svc.Send(users[0].ID, convID, &domain.SendMessageRequest{
		Type: domain.TypeBusinessCard,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.BusinessCardSubject)
	assert.Equal(t, users[0].ID, resp.BusinessCardSubject.ID)
	assert.Equal(t, "alice", resp.BusinessCardSubject.Nickname)
}

func TestForwardMessages(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob", "carol", "dave")
	sourceID := env.openDirect(t, users[0].ID, users[1].ID)

	first, err := svc.Send(users[0].ID, sourceID, &domain.SendMessageRequest{
		Type: domain.TypeText, Content: strPtr("one"),
	})
	require.NoError(t, err)
	second, err := svc.Send(users[1].ID, sourceID, &domain.SendMessageRequest{
		Type: domain.TypeImage, MediaURL: strPtr("https://cdn.example.com/x.jpg"),
	})
	require.NoError(t, err)

	results, err := svc.Forward(users[0].ID, &domain.ForwardMessagesRequest{
		SourceConversationID: sourceID,
		MessageIDs:           []uint64{first.ID, second.ID},
		RecipientIDs:         []uint64{users[2].ID, users[3].ID},
	})
	require.NoError(t, err)
	assert.Len(t, results, 4)

	originals := map[uint64]bool{first.ID: true, second.ID: true}
	for _, r := range results {
		assert.True(t, r.IsForwarded)
		assert.False(t, r.IsRead)
		assert.Equal(t, users[0].ID, r.Sender.ID)
		require.NotNil(t, r.OriginalMessageID)
		assert.True(t, originals[*r.OriginalMessageID])
		assert.NotEqual(t, sourceID, r.ConversationID)
	}

	// Each recipient now shares a direct conversation holding two copies
	for _, recipient := range []uint64{users[2].ID, users[3].ID} {
		conv, created, err := env.conversations.FindOrCreateDirect(users[0].ID, recipient)
		require.NoError(t, err)
		assert.False(t, created)

		_, total, err := env.messages.List(conv.ID, 0, 50, "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	}
}

func TestForwardSkipsUnresolvedMessages(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob", "carol")
	sourceID := env.openDirect(t, users[0].ID, users[1].ID)

	kept, err := svc.Send(users[0].ID, sourceID, &domain.SendMessageRequest{
		Type: domain.TypeText, Content: strPtr("keep me"),
	})
	require.NoError(t, err)
	deleted, err := svc.Send(users[0].ID, sourceID, &domain.SendMessageRequest{
		Type: domain.TypeText, Content: strPtr("gone"),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(users[0].ID, deleted.ID))

	// Deleted and unknown ids are skipped; the resolvable one is forwarded
	results, err := svc.Forward(users[0].ID, &domain.ForwardMessagesRequest{
		SourceConversationID: sourceID,
		MessageIDs:           []uint64{kept.ID, deleted.ID, 9999},
		RecipientIDs:         []uint64{users[2].ID},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].OriginalMessageID)
	assert.Equal(t, kept.ID, *results[0].OriginalMessageID)
}

func TestForwardRejections(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob", "mallory")
	sourceID := env.openDirect(t, users[0].ID, users[1].ID)
	otherID := env.openDirect(t, users[1].ID, users[2].ID)

	msg, err := svc.Send(users[0].ID, sourceID, &domain.SendMessageRequest{
		Type: domain.TypeText, Content: strPtr("secret"),
	})
	require.NoError(t, err)

	// Not a member of the source conversation
	_, err = svc.Forward(users[2].ID, &domain.ForwardMessagesRequest{
		SourceConversationID: sourceID,
		MessageIDs:           []uint64{msg.ID},
		RecipientIDs:         []uint64{users[1].ID},
	})
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Message ids from a different conversation are rejected
	_, err = svc.Forward(users[1].ID, &domain.ForwardMessagesRequest{
		SourceConversationID: otherID,
		MessageIDs:           []uint64{msg.ID},
		RecipientIDs:         []uint64{users[2].ID},
	})
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Forwarding to yourself is rejected
	_, err = svc.Forward(users[0].ID, &domain.ForwardMessagesRequest{
		SourceConversationID: sourceID,
		MessageIDs:           []uint64{msg.ID},
		RecipientIDs:         []uint64{users[0].ID},
	})
	assert.ErrorIs(t, err, common.ErrSelfConversation)

	_, err = svc.Forward(users[0].ID, &domain.ForwardMessagesRequest{
		SourceConversationID: sourceID,
	})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestDeleteMessage(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob")
	convID := env.openDirect(t, users[0].ID, users[1].ID)

	msg, err := svc.Send(users[0].ID, convID, &domain.SendMessageRequest{
		Type: domain.TypeText, Content: strPtr("typo"),
	})
	require.NoError(t, err)

	// Only the sender may delete
	assert.ErrorIs(t, svc.Delete(users[1].ID, msg.ID), common.ErrForbidden)

	require.NoError(t, svc.Delete(users[0].ID, msg.ID))
	assert.ErrorIs(t, svc.Delete(users[0].ID, msg.ID), common.ErrNotFound)
}

func TestMarkRead(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob")
	convID := env.openDirect(t, users[0].ID, users[1].ID)

	for i := 0; i < 3; i++ {
		_, err := svc.Send(users[1].ID, convID, &domain.SendMessageRequest{
			Type: domain.TypeText, Content: strPtr("ping"),
		})
		require.NoError(t, err)
	}

	count, err := svc.MarkRead(users[0].ID, convID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	events := env.emitter.eventsOfType(ws.EventMessageRead)
	require.Len(t, events, 1)
	payload, ok := events[0].Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(3), payload["count"])
	assert.Equal(t, users[0].ID, payload["reader_id"])

	// Nothing left to read, no event fired
	count, err = svc.MarkRead(users[0].ID, convID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.Len(t, env.emitter.eventsOfType(ws.EventMessageRead), 1)

	_, err = svc.MarkRead(users[0].ID, 9999, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTyping(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob", "mallory")
	convID := env.openDirect(t, users[0].ID, users[1].ID)

	require.NoError(t, svc.Typing(users[0].ID, convID, true))

	events := env.emitter.eventsOfType(ws.EventUserTyping)
	require.Len(t, events, 1)
	payload, ok := events[0].Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", payload["nickname"])
	assert.Equal(t, true, payload["is_typing"])

	// No message rows were created
	_, total, err := env.messages.List(convID, 0, 50, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	assert.ErrorIs(t, svc.Typing(users[2].ID, convID, true), common.ErrNotFound)
}

func TestMutedParticipantSkipsNotification(t *testing.T) {
	env := setupEnv(t)
	svc := env.messageService()
	users := env.seedUsers(t, "alice", "bob")
	convID := env.openDirect(t, users[0].ID, users[1].ID)

	// Bob muted the conversation
	require.NoError(t, env.conversations.UpdateParticipant(convID, users[1].ID,
		map[string]interface{}{"is_muted": true}))

	_, err := svc.Send(users[0].ID, convID, &domain.SendMessageRequest{
		Type: domain.TypeText, Content: strPtr("hi"),
	})
	require.NoError(t, err)

	// The room push still happens, only the notification is suppressed
	waitForEvents(t, env.emitter, ws.EventNewMessage, 1)
	time.Sleep(100 * time.Millisecond)

	count, err := env.notifications.UnreadCount(users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
