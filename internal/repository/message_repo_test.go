package repository

import (
	"testing"
	"time"

	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedConversation(t *testing.T, db *gorm.DB) (ConversationRepository, *domain.Conversation, []*domain.User) {
	t.Helper()
	convRepo := NewConversationRepository(db)
	users := seedUsers(t, db, "alice", "bob")
	conv, _, err := convRepo.FindOrCreateDirect(users[0].ID, users[1].ID)
	require.NoError(t, err)
	return convRepo, conv, users
}

func sendText(t *testing.T, repo MessageRepository, conversationID, senderID uint64, content string) *domain.Message {
	t.Helper()
	msg, err := domain.NewTextMessage(conversationID, senderID, content)
	require.NoError(t, err)
	require.NoError(t, repo.Create(msg))
	return msg
}

func TestListOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	_, conv, users := seedConversation(t, db)

	first := sendText(t, repo, conv.ID, users[0].ID, "first")
	second := sendText(t, repo, conv.ID, users[1].ID, "second")
	third := sendText(t, repo, conv.ID, users[0].ID, "third")

	messages, total, err := repo.List(conv.ID, 0, 50, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, messages, 3)

	// Newest first, id as tiebreaker
	assert.Equal(t, third.ID, messages[0].ID)
	assert.Equal(t, second.ID, messages[1].ID)
	assert.Equal(t, first.ID, messages[2].ID)

	// Content search
	messages, total, err = repo.List(conv.ID, 0, 50, "SEC")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, messages, 1)
	assert.Equal(t, second.ID, messages[0].ID)
}

func TestListPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	_, conv, users := seedConversation(t, db)

	for i := 0; i < 5; i++ {
		sendText(t, repo, conv.ID, users[0].ID, "msg")
	}

	page1, total, err := repo.List(conv.ID, 0, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page1, 2)

	page2, _, err := repo.List(conv.ID, 2, 2, "")
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Less(t, page2[0].ID, page1[1].ID)
}

func TestListMedia(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	_, conv, users := seedConversation(t, db)

	sendText(t, repo, conv.ID, users[0].ID, "hello")

	photo, err := domain.NewMediaMessage(conv.ID, users[0].ID, domain.TypeImage,
		domain.MediaAttachment{URL: "https://cdn.example.com/p.jpg"}, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(photo))

	duration := 12
	voice, err := domain.NewMediaMessage(conv.ID, users[1].ID, domain.TypeAudio,
		domain.MediaAttachment{URL: "https://cdn.example.com/v.ogg", Duration: &duration}, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(voice))

	// A media-typed row without a URL (bypassing the constructors) stays
	// out of the gallery
	require.NoError(t, db.Create(&domain.Message{
		ConversationID: conv.ID, SenderID: users[0].ID, Type: domain.TypeImage,
	}).Error)

	media, total, err := repo.ListMedia(conv.ID, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, media, 2)
	for _, m := range media {
		assert.True(t, m.Type.IsMedia())
		assert.NotNil(t, m.MediaURL)
	}
}

func TestMarkRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	_, conv, users := seedConversation(t, db)

	fromBob1 := sendText(t, repo, conv.ID, users[1].ID, "hi")
	fromBob2 := sendText(t, repo, conv.ID, users[1].ID, "there")
	fromAlice := sendText(t, repo, conv.ID, users[0].ID, "hey")

	// Alice reads everything; her own message is not counted
	count, err := repo.MarkRead(conv.ID, users[0].ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Already read, nothing changes
	count, err = repo.MarkRead(conv.ID, users[0].ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	for _, id := range []uint64{fromBob1.ID, fromBob2.ID} {
		msg, err := repo.FindByID(id)
		require.NoError(t, err)
		assert.True(t, msg.IsRead)
	}
	msg, err := repo.FindByID(fromAlice.ID)
	require.NoError(t, err)
	assert.False(t, msg.IsRead)
}

func TestMarkReadSubset(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	_, conv, users := seedConversation(t, db)

	target := sendText(t, repo, conv.ID, users[1].ID, "one")
	sendText(t, repo, conv.ID, users[1].ID, "two")

	count, err := repo.MarkRead(conv.ID, users[0].ID, []uint64{target.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSoftDeleteMessage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	_, conv, users := seedConversation(t, db)

	msg := sendText(t, repo, conv.ID, users[0].ID, "oops")
	require.NoError(t, repo.SoftDelete(msg.ID))

	_, err := repo.FindByID(msg.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, total, err := repo.List(conv.ID, 0, 50, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// The row still exists physically
	var raw int64
	require.NoError(t, db.Unscoped().Model(&domain.Message{}).Where("id = ?", msg.ID).Count(&raw).Error)
	assert.Equal(t, int64(1), raw)
}

func TestLastInConversation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	_, conv, users := seedConversation(t, db)

	last, err := repo.LastInConversation(conv.ID)
	require.NoError(t, err)
	assert.Nil(t, last)

	sendText(t, repo, conv.ID, users[0].ID, "old")
	newest := sendText(t, repo, conv.ID, users[1].ID, "new")

	last, err = repo.LastInConversation(conv.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, newest.ID, last.ID)
	assert.WithinDuration(t, time.Now(), last.CreatedAt, time.Minute)
}
