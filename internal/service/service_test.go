package service

import (
	"sync"
	"testing"

	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/internal/repository"
	"github.com/mingle/mingle-backend/internal/ws"
	"github.com/mingle/mingle-backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeEmitter records emitted events for assertions
type fakeEmitter struct {
	mu     sync.Mutex
	events []ws.Event
	online map[uint64]bool
}

func newFakeEmitter() *fakeEmitter {
	return &fakeEmitter{online: make(map[uint64]bool)}
}

func (f *fakeEmitter) EmitToUser(userID uint64, event ws.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeEmitter) EmitToConversation(conversationID uint64, event ws.Event, excludeUserIDs ...uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeEmitter) IsUserOnline(userID uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[userID]
}

func (f *fakeEmitter) eventsOfType(eventType string) []ws.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ws.Event
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	db            *gorm.DB
	users         repository.UserRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	gifts         repository.GiftRepository
	blocks        repository.BlockRepository
	notifications repository.NotificationRepository
	emitter       *fakeEmitter
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.Init("test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Group{},
		&domain.Conversation{},
		&domain.Participant{},
		&domain.Message{},
		&domain.Gift{},
		&domain.UserBlock{},
		&domain.Notification{},
	))

	return &testEnv{
		db:            db,
		users:         repository.NewUserRepository(db),
		conversations: repository.NewConversationRepository(db),
		messages:      repository.NewMessageRepository(db),
		gifts:         repository.NewGiftRepository(db),
		blocks:        repository.NewBlockRepository(db),
		notifications: repository.NewNotificationRepository(db),
		emitter:       newFakeEmitter(),
	}
}

func (e *testEnv) seedUsers(t *testing.T, nicknames ...string) []*domain.User {
	t.Helper()
	users := make([]*domain.User, 0, len(nicknames))
	for _, nickname := range nicknames {
		u := &domain.User{Nickname: nickname}
		require.NoError(t, e.db.Create(u).Error)
		users = append(users, u)
	}
	return users
}

func (e *testEnv) messageService() MessageService {
	notifier := NewNotifier(e.notifications, e.emitter)
	return NewMessageService(e.messages, e.conversations, e.users, e.gifts, e.emitter, notifier)
}

func (e *testEnv) conversationService() ConversationService {
	return NewConversationService(e.conversations, e.messages, e.users, e.blocks)
}

func strPtr(s string) *string { return &s }
func u64Ptr(v uint64) *uint64 { return &v }
func boolPtr(v bool) *bool    { return &v }
