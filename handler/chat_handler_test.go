package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/openkms/docchat-be/middleware"
	"github.com/openkms/docchat-be/types"
	"github.com/openkms/docchat-be/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errChatNotFound = errors.New("chat not found")

type fakeChatStore struct {
	chats    map[string]*types.Chat
	messages map[string][]types.ChatMessage
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		chats:    make(map[string]*types.Chat),
		messages: make(map[string][]types.ChatMessage),
	}
}

func (s *fakeChatStore) CreateChat(ctx context.Context, chat *types.Chat) error {
	s.chats[chat.ID] = chat
	return nil
}

func (s *fakeChatStore) GetChat(ctx context.Context, id string) (*types.Chat, error) {
	chat, ok := s.chats[id]
	if !ok {
		return nil, errChatNotFound
	}
	return chat, nil
}

func (s *fakeChatStore) ListChats(ctx context.Context, userID string) ([]types.Chat, error) {
	var chats []types.Chat
	for _, chat := range s.chats {
		if chat.UserID == userID {
			chats = append(chats, *chat)
		}
	}
	return chats, nil
}

func (s *fakeChatStore) DeleteChat(ctx context.Context, id string) error {
	delete(s.chats, id)
	delete(s.messages, id)
	return nil
}

func (s *fakeChatStore) CreateMessage(ctx context.Context, message *types.ChatMessage) error {
	s.messages[message.ChatID] = append(s.messages[message.ChatID], *message)
	return nil
}

func (s *fakeChatStore) GetMessages(ctx context.Context, chatID string) ([]types.ChatMessage, error) {
	return s.messages[chatID], nil
}

func (s *fakeChatStore) DeleteMessages(ctx context.Context, chatID string) error {
	delete(s.messages, chatID)
	return nil
}

func chatTestContext(method, target, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Set(middleware.UserContextKey, &utils.UserClaims{ID: userID})
	return c, w
}

func seededChatStore() *fakeChatStore {
	store := newFakeChatStore()
	store.chats["chat-1"] = &types.Chat{ID: "chat-1", Title: "hello", UserID: "user-1"}
	store.messages["chat-1"] = []types.ChatMessage{
		{ID: "m1", ChatID: "chat-1", Role: "user", Content: "hello"},
	}
	return store
}

func TestHandleGetMessagesOwner(t *testing.T) {
	store := seededChatStore()
	h := NewChatHandler(nil, store)

	c, w := chatTestContext(http.MethodGet, "/api/v1/chats/messages?chat_id=chat-1", "user-1")
	h.HandleGetMessages(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello")
}

func TestHandleGetMessagesOtherUser(t *testing.T) {
	store := seededChatStore()
	h := NewChatHandler(nil, store)

	c, w := chatTestContext(http.MethodGet, "/api/v1/chats/messages?chat_id=chat-1", "user-2")
	h.HandleGetMessages(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "hello")
}

func TestHandleDeleteChatOtherUser(t *testing.T) {
	store := seededChatStore()
	h := NewChatHandler(nil, store)

	c, w := chatTestContext(http.MethodDelete, "/api/v1/chats?chat_id=chat-1", "user-2")
	h.HandleDeleteChat(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, store.chats, "chat-1")
}

func TestHandleDeleteChatOwner(t *testing.T) {
	store := seededChatStore()
	h := NewChatHandler(nil, store)

	c, w := chatTestContext(http.MethodDelete, "/api/v1/chats?chat_id=chat-1", "user-1")
	h.HandleDeleteChat(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, store.chats, "chat-1")
}
