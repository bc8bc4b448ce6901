package service

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/openkms/docchat-be/types"
)

type WebSocketService struct {
	rag      *RAGService
	upgrader websocket.Upgrader
}

func NewWebSocketService(rag *RAGService) *WebSocketService {
	return &WebSocketService{
		rag: rag,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			conn.WriteMessage(messageType, []byte("Error processing message"))
			log.Println("Unmarshal error:", err)
			continue
		}
		payloadBytes, err := json.Marshal(req.Payload)
		if err != nil {
			conn.WriteMessage(messageType, []byte("Error processing message"))
			log.Println("Marshal error:", err)
			continue
		}

		switch req.Type {
		case types.TypeWebsocketChat:
			var payload types.WebSocketChatPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				log.Println("Unmarshal error:", err)
				conn.WriteMessage(messageType, []byte("Error processing message"))
				continue
			}
			if len(payload.Messages) == 0 {
				continue
			}

			// The answer is streamed as processing messages; the final
			// chat message carries the full text and the sources.
			question := payload.Messages[len(payload.Messages)-1].Content
			var answer strings.Builder
			sources, err := s.rag.QueryStream(r.Context(), question, payload.TopK, func(delta string) {
				if delta == "" {
					return
				}
				answer.WriteString(delta)
				deltaRes := types.WebSocketResponse{
					Type:    types.TypeWebsocketProcessing,
					Payload: types.WebSocketChatResponse{Message: delta},
				}
				if err := conn.WriteJSON(deltaRes); err != nil {
					log.Println("Write error:", err)
				}
			})
			if err != nil {
				log.Println("RAG error:", err)
				errRes := types.WebSocketResponse{
					Type:    types.TypeWebsocketError,
					Payload: types.WebSocketChatResponse{Message: "Error generating answer"},
				}
				conn.WriteJSON(errRes)
				continue
			}

			botMessage := types.WebSocketResponse{
				Type: types.TypeWebsocketChat,
				Payload: types.WebSocketChatResponse{
					Message: answer.String(),
					Sources: sources,
				},
			}
			if err := conn.WriteJSON(botMessage); err != nil {
				log.Println("Write error:", err)
				continue
			}
		case types.TypeWebsocketPing:
			pongRes := types.WebSocketResponse{
				Type:    types.TypeWebsocketPong,
				Payload: nil,
			}
			if err := conn.WriteJSON(pongRes); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type")
		}
	}
}
