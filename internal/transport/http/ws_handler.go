package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// ChatHandler serves the websocket chat endpoint. Inbound frames are plain
// text commands; everything outbound is a JSON chat message, whether it is a
// direct reply or an engine push relayed through the hub.
type ChatHandler struct {
	router   *Router
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewChatHandler(router *Router, hub *Hub) *ChatHandler {
	return &ChatHandler{
		router: router,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type chatMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (h *ChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	name := r.URL.Query().Get("name")
	email := r.URL.Query().Get("email")
	if userID == "" || name == "" {
		http.Error(w, "missing userId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	pushes, unregister := h.hub.register(userID)
	defer unregister()

	quit := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case text := <-pushes:
				if err := conn.WriteJSON(chatMessage{Type: "message", Text: text}); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-quit:
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		reply, err := h.router.Dispatch(r.Context(), userID, name, email, string(data))
		if err != nil {
			log.Printf("dispatch for user %s: %v", userID, err)
			reply = "Something went wrong, please try again."
		}
		select {
		case pushes <- reply:
		case <-writerDone:
		}
	}

	close(quit)
	<-writerDone
}
