package handler

import (
	"log/slog"
	"net/http"

	"github.com/nexarq/taskmanager/internal/handler/dto"
	"github.com/nexarq/taskmanager/internal/service"
)

// ChatHandler serves the task assistant.
type ChatHandler struct {
	svc    *service.ChatService
	actors *ActorResolver
	logger *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc *service.ChatService, actors *ActorResolver, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, actors: actors, logger: logger}
}

// Ask handles POST /ai/chat. Once the request is authorized the response is
// always 200; failures surface only as the fallback answer.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ctx := detach(r)
	user, err := h.actors.Resolve(ctx, r, req.UserID)
	if err != nil {
		if writeActorError(w, err) {
			return
		}
		writeJSON(w, http.StatusOK, dto.ChatResponse{Answer: h.svc.Degrade(err)})
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, dto.ChatResponse{Answer: h.svc.Ask(ctx, user, req.Question)})
}
