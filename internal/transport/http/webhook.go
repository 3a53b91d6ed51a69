package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// WebhookHandler is the REST face of the chat: the platform posts each
// inbound message here and gets the reply in the response body.
type WebhookHandler struct {
	router *Router
}

func NewWebhookHandler(router *Router) *WebhookHandler {
	return &WebhookHandler{router: router}
}

type inboundText struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Text           string `json:"text"`
}

type outboundText struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

func (h *WebhookHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var inbound inboundText
	if err := json.NewDecoder(r.Body).Decode(&inbound); err != nil {
		http.Error(w, "invalid message payload", http.StatusBadRequest)
		return
	}
	if inbound.UserID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	if inbound.ConversationID == "" {
		inbound.ConversationID = uuid.NewString()
	}

	reply, err := h.router.Dispatch(r.Context(), inbound.UserID, inbound.Name, inbound.Email, inbound.Text)
	if err != nil {
		log.Printf("dispatch for user %s: %v", inbound.UserID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outboundText{
		ConversationID: inbound.ConversationID,
		Text:           reply,
	}); err != nil {
		log.Printf("write webhook response: %v", err)
	}
}
