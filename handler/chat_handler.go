package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openkms/docchat-be/database"
	"github.com/openkms/docchat-be/middleware"
	"github.com/openkms/docchat-be/service"
	"github.com/openkms/docchat-be/types"
	"github.com/openkms/docchat-be/utils"
)

type ChatHandler struct {
	rag       *service.RAGService
	chatStore database.ChatStore
}

func NewChatHandler(rag *service.RAGService, chatStore database.ChatStore) *ChatHandler {
	return &ChatHandler{
		rag:       rag,
		chatStore: chatStore,
	}
}

func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "No messages provided",
		})
		return
	}

	question := req.Messages[len(req.Messages)-1].Content
	result, err := h.rag.Query(c.Request.Context(), question, req.TopK)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	chatID := h.persistTurn(c, req.ChatId, question, result.Answer)

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.ChatResponse{
			ChatId: chatID,
			Message: &types.Message{
				Role:    "assistant",
				Content: result.Answer,
			},
			Sources: result.Sources,
		},
	})
}

// persistTurn stores the question and answer, creating the chat first if
// needed. Persistence failures are logged, not surfaced.
func (h *ChatHandler) persistTurn(c *gin.Context, chatID, question, answer string) string {
	if h.chatStore == nil {
		return chatID
	}
	ctx := c.Request.Context()

	// A chat id belonging to someone else starts a fresh chat instead.
	if chatID != "" && !h.ownsChat(c, chatID) {
		chatID = ""
	}
	if chatID == "" {
		chat := &types.Chat{
			Title:  question,
			UserID: currentUserID(c),
		}
		if err := h.chatStore.CreateChat(ctx, chat); err != nil {
			log.Println("Failed to create chat:", err)
			return ""
		}
		chatID = chat.ID
	}

	for _, msg := range []types.ChatMessage{
		{ChatID: chatID, Role: "user", Content: question},
		{ChatID: chatID, Role: "assistant", Content: answer},
	} {
		msg := msg
		if err := h.chatStore.CreateMessage(ctx, &msg); err != nil {
			log.Println("Failed to store message:", err)
		}
	}
	return chatID
}

// ownsChat reports whether the chat exists and belongs to the caller.
func (h *ChatHandler) ownsChat(c *gin.Context, chatID string) bool {
	chat, err := h.chatStore.GetChat(c.Request.Context(), chatID)
	if err != nil {
		return false
	}
	return chat.UserID == currentUserID(c)
}

func (h *ChatHandler) HandleListChats(c *gin.Context) {
	chats, err := h.chatStore.ListChats(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   chats,
	})
}

func (h *ChatHandler) HandleGetMessages(c *gin.Context) {
	chatID := c.Query("chat_id")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "chat_id is required",
		})
		return
	}
	if !h.ownsChat(c, chatID) {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Chat not found",
		})
		return
	}
	messages, err := h.chatStore.GetMessages(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   messages,
	})
}

func (h *ChatHandler) HandleDeleteChat(c *gin.Context) {
	chatID := c.Query("chat_id")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "chat_id is required",
		})
		return
	}
	if !h.ownsChat(c, chatID) {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Chat not found",
		})
		return
	}
	if err := h.chatStore.DeleteChat(c.Request.Context(), chatID); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{Status: true})
}

func currentUserID(c *gin.Context) string {
	if v, ok := c.Get(middleware.UserContextKey); ok {
		if claims, ok := v.(*utils.UserClaims); ok {
			return claims.ID
		}
	}
	return ""
}
