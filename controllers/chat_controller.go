package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"sportspal_server/models"
	"sportspal_server/services"
)

// ChatController struct
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService) *ChatController {
	return &ChatController{ChatService: service}
}

// HandleGetMessages - Fetch the latest message window for a chat
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chatId")
	limitStr := r.URL.Query().Get("limit")

	if chatID == "" {
		http.Error(w, `{"error": "chatId is required"}`, http.StatusBadRequest)
		return
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = services.DefaultMessageWindow
	}

	messages, err := c.ChatService.GetLatestMessages(r.Context(), chatID, limit)
	if err != nil {
		log.Printf("❌ Error fetching messages: %v", err)
		http.Error(w, `{"error": "Failed to fetch messages"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// HandleGetOlderMessages - Page backwards from a cursor
func (c *ChatController) HandleGetOlderMessages(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chatId")
	before := r.URL.Query().Get("before")
	limitStr := r.URL.Query().Get("limit")

	if chatID == "" || before == "" {
		http.Error(w, `{"error": "chatId and before are required"}`, http.StatusBadRequest)
		return
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = services.DefaultMessageWindow
	}

	messages, err := c.ChatService.GetMessagesBefore(r.Context(), chatID, before, limit)
	if err != nil {
		log.Printf("❌ Error fetching older messages: %v", err)
		http.Error(w, `{"error": "Failed to fetch older messages"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// HandleSendMessage - Store a message and fan out notifications
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var message models.Message
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if message.ChatID == "" || message.SenderID == "" {
		http.Error(w, `{"error": "Missing required fields: chatId, senderId"}`, http.StatusBadRequest)
		return
	}

	stored, err := c.ChatService.SendMessage(r.Context(), message)
	if err != nil {
		log.Printf("❌ Failed to send message: %v", err)
		http.Error(w, `{"error": "Failed to send message"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stored)
}

// HandleMarkRead - Record a (debounced) read receipt
func (c *ChatController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ChatID string `json:"chatId"`
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.ChatID == "" || request.UserID == "" {
		http.Error(w, `{"error": "Missing required fields: chatId, userId"}`, http.StatusBadRequest)
		return
	}

	c.ChatService.MarkChatRead(r.Context(), request.ChatID, request.UserID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleTyping - Record a (debounced) typing ping or an explicit stop
func (c *ChatController) HandleTyping(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ChatID string `json:"chatId"`
		UserID string `json:"userId"`
		Typing bool   `json:"typing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.ChatID == "" || request.UserID == "" {
		http.Error(w, `{"error": "Missing required fields: chatId, userId"}`, http.StatusBadRequest)
		return
	}

	if request.Typing {
		c.ChatService.PingTyping(r.Context(), request.ChatID, request.UserID)
	} else {
		c.ChatService.StopTyping(r.Context(), request.ChatID, request.UserID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleReaction - Set or clear the caller's reaction on a message
func (c *ChatController) HandleReaction(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ChatID    string `json:"chatId"`
		CreatedAt string `json:"createdAt"`
		UserID    string `json:"userId"`
		Emoji     string `json:"emoji"` // empty clears the reaction
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.ChatID == "" || request.CreatedAt == "" || request.UserID == "" {
		http.Error(w, `{"error": "Missing required fields: chatId, createdAt, userId"}`, http.StatusBadRequest)
		return
	}

	var err error
	if request.Emoji == "" {
		err = c.ChatService.RemoveReaction(r.Context(), request.ChatID, request.CreatedAt, request.UserID)
	} else {
		err = c.ChatService.AddReaction(r.Context(), request.ChatID, request.CreatedAt, request.UserID, request.Emoji)
	}
	if err != nil {
		log.Printf("❌ Failed to update reaction: %v", err)
		http.Error(w, `{"error": "Failed to update reaction"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleEnsureDM - Resolve (or create) the deterministic DM chat for a pair
func (c *ChatController) HandleEnsureDM(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID  string `json:"userId"`
		OtherID string `json:"otherId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.OtherID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, otherId"}`, http.StatusBadRequest)
		return
	}

	chat, err := c.ChatService.EnsureDMChat(r.Context(), request.UserID, request.OtherID)
	if err != nil {
		log.Printf("❌ Failed to ensure DM chat: %v", err)
		http.Error(w, `{"error": "Failed to open chat"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chat)
}

// HandleLeaveChat - Leave a chat, deleting it if the caller was last
func (c *ChatController) HandleLeaveChat(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ChatID string `json:"chatId"`
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.ChatID == "" || request.UserID == "" {
		http.Error(w, `{"error": "Missing required fields: chatId, userId"}`, http.StatusBadRequest)
		return
	}

	if err := c.ChatService.LeaveChat(r.Context(), request.ChatID, request.UserID); err != nil {
		log.Printf("❌ Failed to leave chat: %v", err)
		http.Error(w, `{"error": "Failed to leave chat"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}
