package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"reinvent/internal/auth"
	"reinvent/internal/config"
	"reinvent/internal/db"
	"reinvent/internal/llm"
	"reinvent/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket message formats
type WSInterviewMessage struct {
	Event  string `json:"event"`            // "answer" | "start" | "stop"
	Text   string `json:"text,omitempty"`   // candidate's answer
	Role   string `json:"role,omitempty"`   // target role override for "start"
	Rounds int    `json:"rounds,omitempty"` // question budget for "start"
}

type WSInterviewToken struct {
	Token string `json:"token"`
	Index int    `json:"index"`
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocket connection wrapper with mutex for thread-safe writes
type safeWSConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *safeWSConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *safeWSConn) Close() error {
	return s.conn.Close()
}

const maxInterviewTurns = 40

// InterviewHandler runs a mock interview over a WebSocket. Every
// interviewer turn is streamed token by token; the transcript lives
// only in the connection.
func InterviewHandler(cfg *config.Config, chat *llm.ChatClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "missing JWT"}})
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")
		claims, err := auth.ParseJWT(cfg.Server.JWTSecret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "invalid JWT"}})
			return
		}

		rawConn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("[Interview] WebSocket upgrade failed:", err)
			return
		}
		conn := &safeWSConn{conn: rawConn}
		defer conn.Close()

		var u user.User
		_ = db.DB.First(&u, claims.UserID).Error

		session := newInterviewSession(u)

		for turns := 0; turns < maxInterviewTurns; turns++ {
			_, raw, err := rawConn.ReadMessage()
			if err != nil {
				return
			}
			var msg WSInterviewMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				conn.WriteJSON(gin.H{"event": "error", "message": "invalid message"})
				continue
			}

			switch msg.Event {
			case "start":
				session.start(msg.Role, msg.Rounds)
			case "answer":
				if !session.started {
					conn.WriteJSON(gin.H{"event": "error", "message": "send start first"})
					continue
				}
				session.addAnswer(msg.Text)
			case "stop":
				conn.WriteJSON(gin.H{"event": "closed"})
				return
			default:
				conn.WriteJSON(gin.H{"event": "error", "message": "unknown event"})
				continue
			}

			reply, err := streamInterviewTurn(c.Request.Context(), conn, rawConn, chat, session.messages)
			if err != nil {
				log.Printf("[Interview] stream failed for user %d: %v", claims.UserID, err)
				conn.WriteJSON(gin.H{"event": "error", "message": "interviewer unavailable"})
				return
			}
			session.addInterviewer(reply)

			if session.done() {
				conn.WriteJSON(gin.H{"event": "complete", "questions_asked": session.asked})
				return
			}
		}
	}
}

type interviewSession struct {
	messages  []llm.ChatMessage
	started   bool
	asked     int
	rounds    int
	targetJob string
}

func newInterviewSession(u user.User) *interviewSession {
	return &interviewSession{rounds: 5, targetJob: u.TargetJob}
}

func (s *interviewSession) start(role string, rounds int) {
	if rounds > 0 && rounds <= 10 {
		s.rounds = rounds
	}
	if role == "" {
		role = s.targetJob
	}
	if role == "" {
		role = "the candidate's target role"
	}
	system := fmt.Sprintf(`You are an experienced interviewer running a mock interview for %s.
Ask one question at a time. After each answer, give one sentence of feedback, then ask the next question.
Keep questions realistic and progressively harder. Plan for about %d questions total.`, role, s.rounds)

	s.messages = []llm.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "I'm ready, please start the interview."},
	}
	s.started = true
	s.asked = 0
}

func (s *interviewSession) addAnswer(text string) {
	s.messages = append(s.messages, llm.ChatMessage{Role: "user", Content: text})
}

func (s *interviewSession) addInterviewer(text string) {
	s.messages = append(s.messages, llm.ChatMessage{Role: "assistant", Content: text})
	s.asked++
}

func (s *interviewSession) done() bool {
	return s.asked >= s.rounds
}

// streamInterviewTurn streams one interviewer turn to the client and
// returns the full text. A client "stop" message or closed socket
// cancels the upstream request.
func streamInterviewTurn(parent context.Context, conn *safeWSConn, rawConn *websocket.Conn, chat *llm.ChatClient, messages []llm.ChatMessage) (string, error) {
	ctx, cancelLocal := context.WithCancel(parent)
	defer cancelLocal()

	resp, cancelStream, err := chat.ChatStream(ctx, messages, llm.ChatOptions{})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if cancelStream != nil {
		defer cancelStream()
	}

	reader := bufio.NewReader(resp.Body)
	index := 0
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		delta, ok := llm.ParseStreamLine(line)
		if !ok {
			continue
		}
		if delta.Content != "" {
			builder.WriteString(delta.Content)
			conn.WriteJSON(WSInterviewToken{Token: delta.Content, Index: index})
			index++
		}
		if delta.Done {
			break
		}
	}

	conn.WriteJSON(gin.H{"event": "end", "tokens": index})
	return builder.String(), nil
}
