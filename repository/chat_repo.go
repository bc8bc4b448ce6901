package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openkms/docchat-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ChatRepo persists conversations and their messages in MongoDB.
type ChatRepo struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

func NewChatRepo(chats, messages *mongo.Collection) *ChatRepo {
	return &ChatRepo{
		chats:    chats,
		messages: messages,
	}
}

func (r *ChatRepo) CreateChat(ctx context.Context, chat *types.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	_, err := r.chats.InsertOne(ctx, chat)
	return err
}

func (r *ChatRepo) GetChat(ctx context.Context, id string) (*types.Chat, error) {
	var chat types.Chat
	err := r.chats.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	return &chat, err
}

func (r *ChatRepo) ListChats(ctx context.Context, userID string) ([]types.Chat, error) {
	opts := options.Find().SetSort(bson.M{"updated_at": -1})
	cursor, err := r.chats.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chats []types.Chat
	for cursor.Next(ctx) {
		var chat types.Chat
		if err := cursor.Decode(&chat); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

func (r *ChatRepo) DeleteChat(ctx context.Context, id string) error {
	if err := r.DeleteMessages(ctx, id); err != nil {
		return err
	}
	_, err := r.chats.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *ChatRepo) CreateMessage(ctx context.Context, message *types.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	message.CreatedAt = time.Now().Unix()
	if _, err := r.messages.InsertOne(ctx, message); err != nil {
		return err
	}
	_, err := r.chats.UpdateOne(ctx,
		bson.M{"_id": message.ChatID},
		bson.M{"$set": bson.M{"updated_at": message.CreatedAt}},
	)
	return err
}

func (r *ChatRepo) GetMessages(ctx context.Context, chatID string) ([]types.ChatMessage, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.messages.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []types.ChatMessage
	for cursor.Next(ctx) {
		var message types.ChatMessage
		if err := cursor.Decode(&message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (r *ChatRepo) DeleteMessages(ctx context.Context, chatID string) error {
	_, err := r.messages.DeleteMany(ctx, bson.M{"chat_id": chatID})
	return err
}
