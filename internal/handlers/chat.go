package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"chatbot-backend/internal/models"
)

type chatService interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ConversationTurn, error)
	History(ctx context.Context) ([]models.ConversationTurn, error)
	Clear(ctx context.Context) error
}

type ChatHandler struct {
	chatService chatService
}

func NewChatHandler(chatService chatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Message: "Chatbot API is running",
	})
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	turn, err := h.chatService.Chat(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, turn)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	turns, err := h.chatService.History(r.Context())
	if err != nil {
		log.Printf("Failed to load history: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load history", r))
		return
	}

	writeJSON(w, http.StatusOK, models.HistoryResponse{History: turns})
}

func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.Clear(r.Context()); err != nil {
		log.Printf("Failed to clear history: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to clear history", r))
		return
	}

	writeJSON(w, http.StatusOK, models.StatusResponse{
		Message: "Conversation cleared",
		Status:  "success",
	})
}
