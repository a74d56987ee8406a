package socket

import (
	"log"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer initializes the realtime server. Clients join one room per
// chat; message, typing, and read-receipt signals are broadcast to the room.
func NewSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, data map[string]string) {
		chatID := data["chatId"]
		if chatID == "" {
			log.Println("❌ Invalid chatId in join request")
			return
		}
		log.Printf("👥 Socket %s joined chat %s\n", c.ID(), chatID)
		c.Join(chatID)
	})

	server.OnEvent("/", "leave", func(c socketio.Conn, data map[string]string) {
		chatID := data["chatId"]
		if chatID == "" {
			return
		}
		c.Leave(chatID)
	})

	server.OnEvent("/", "sendMessage", func(c socketio.Conn, message map[string]interface{}) {
		chatID, _ := message["chatId"].(string)
		if chatID == "" {
			return
		}
		server.BroadcastToRoom("/", chatID, "newMessage", message)
	})

	server.OnEvent("/", "typing", func(c socketio.Conn, data map[string]interface{}) {
		chatID, _ := data["chatId"].(string)
		if chatID == "" {
			return
		}
		server.BroadcastToRoom("/", chatID, "typing", data)
	})

	server.OnEvent("/", "markRead", func(c socketio.Conn, data map[string]interface{}) {
		chatID, _ := data["chatId"].(string)
		if chatID == "" {
			return
		}
		server.BroadcastToRoom("/", chatID, "readReceipt", data)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
	})

	return server
}
