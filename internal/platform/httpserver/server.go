package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	permission "pollsbot/contexts/identity-access/permission-service"
	ratelimit "pollsbot/contexts/identity-access/rate-limit-service"
	conversation "pollsbot/contexts/polling/conversation-service"
	pollengine "pollsbot/contexts/polling/poll-engine"
	template "pollsbot/contexts/polling/template-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "pollsbot/internal/platform/httpserver/docs"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	polls       pollengine.Module
	dialogues   conversation.Module
	templates   template.Module
	permissions permission.Module
	limiter     ratelimit.Module
}

func New(
	polls pollengine.Module,
	dialogues conversation.Module,
	templates template.Module,
	permissions permission.Module,
	limiter ratelimit.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		polls:       polls,
		dialogues:   dialogues,
		templates:   templates,
		permissions: permissions,
		limiter:     limiter,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/polls/v1/polls", s.handleCreatePoll)
	s.mux.HandleFunc("POST /api/polls/v1/polls/{poll_id}/votes", s.handleRecordVote)
	s.mux.HandleFunc("POST /api/polls/v1/polls/{poll_id}/close", s.handleClosePoll)
	s.mux.HandleFunc("GET /api/polls/v1/polls/{poll_id}/results", s.handlePollResults)
	s.mux.HandleFunc("GET /api/polls/v1/chats/{chat_id}/polls", s.handleChatPolls)
	s.mux.HandleFunc("GET /api/polls/v1/status", s.handleEngineStatus)

	s.mux.HandleFunc("POST /api/dialogues/v1/dialogues", s.handleStartDialogue)
	s.mux.HandleFunc("POST /api/dialogues/v1/dialogues/steps", s.handleAdvanceDialogue)
	s.mux.HandleFunc("POST /api/dialogues/v1/dialogues/actions", s.handleDialogueAction)
	s.mux.HandleFunc("DELETE /api/dialogues/v1/dialogues", s.handleCancelDialogue)

	s.mux.HandleFunc("POST /api/templates/v1/templates", s.handleCreateTemplate)
	s.mux.HandleFunc("GET /api/templates/v1/templates", s.handleListTemplates)
	s.mux.HandleFunc("GET /api/templates/v1/templates/{name}", s.handleGetTemplate)
	s.mux.HandleFunc("DELETE /api/templates/v1/templates/{name}", s.handleDeleteTemplate)
	s.mux.HandleFunc("POST /api/templates/v1/templates/{name}/render", s.handleRenderTemplate)

	s.mux.HandleFunc("GET /api/permissions/v1/users/{user_id}/tier", s.handleResolveTier)
	s.mux.HandleFunc("POST /api/permissions/v1/grants", s.handleGrantTier)
	s.mux.HandleFunc("POST /api/permissions/v1/users/{user_id}/touch", s.handleTouchUser)

	s.mux.HandleFunc("POST /api/ratelimit/v1/checks", s.handleRateLimitCheck)
	s.mux.HandleFunc("GET /api/ratelimit/v1/users/{user_id}/flooding", s.handleFloodStatus)
}

// requireUserID pulls the authenticated caller from the X-User-Id header.
func requireUserID(r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	return userID, userID != ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
