package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ai-chat-client/internal/domain/model"
	"ai-chat-client/internal/infra/logging"
	"ai-chat-client/internal/store"
	"ai-chat-client/internal/validate"
)

const replyTimeout = 60 * time.Second

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst)
}

// ---- auth ----

type otpSendRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpSendRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := validate.Phone(req.Phone); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.DialCode(req.CountryCode); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.session.SetLoading(true)
	err := s.otp.SendOTP(r.Context(), req.Phone, req.CountryCode)
	s.session.SetLoading(false)
	if err != nil {
		s.log.Warn().Err(err).Msg("otp send failed")
		writeError(w, http.StatusBadGateway, "failed to send verification code")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

type otpVerifyRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
	OTP         string `json:"otp"`
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := validate.Phone(req.Phone); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.DialCode(req.CountryCode); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.OTP(req.OTP); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.session.SetLoading(true)
	ok, err := s.otp.VerifyOTP(r.Context(), req.OTP)
	if err != nil {
		s.session.SetLoading(false)
		s.log.Warn().Err(err).Msg("otp verify failed")
		writeError(w, http.StatusBadGateway, "verification failed, try again")
		return
	}
	if !ok {
		s.session.SetLoading(false)
		writeError(w, http.StatusUnauthorized, "invalid verification code")
		return
	}

	// The verification path is the only place a user record is minted.
	user := model.NewUser(req.Phone, req.CountryCode)
	s.session.Authenticate(user)

	token, err := s.auth.Mint(user.ID, user.Phone)
	if err != nil {
		s.log.Error().Err(err).Msg("token mint failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.log.Info().Str("phone", logging.Redact(req.CountryCode+req.Phone, false)).Msg("user authenticated")
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.session.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"user":      s.session.User(),
		"isLoading": s.session.IsLoading(),
	})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.countries.Options(r.Context()))
}

// ---- chatrooms ----

func (s *Server) handleListChatrooms(w http.ResponseWriter, _ *http.Request) {
	// Filtering is a derived computation over store state, done here in
	// the presentation layer, not in the store.
	query := s.conv.SearchQuery()
	rooms := make([]model.Chatroom, 0)
	for _, room := range s.conv.Chatrooms() {
		if room.Matches(query) {
			rooms = append(rooms, room)
		}
	}

	var current *string
	if id := s.conv.CurrentChatroom(); id != "" {
		current = &id
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chatrooms":       rooms,
		"currentChatroom": current,
		"isTyping":        s.conv.IsTyping(),
		"searchQuery":     query,
		"darkMode":        s.conv.DarkMode(),
	})
}

type createChatroomRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreateChatroom(w http.ResponseWriter, r *http.Request) {
	var req createChatroomRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	title, err := validate.ChatroomTitle(req.Title)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room := s.conv.CreateChatroom(title)
	writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleDeleteChatroom(w http.ResponseWriter, r *http.Request) {
	// Deleting an unknown room is a no-op in the store; 204 either way.
	s.conv.DeleteChatroom(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type selectChatroomRequest struct {
	ID *string `json:"id"` // null clears the selection
}

func (s *Server) handleSelectChatroom(w http.ResponseWriter, r *http.Request) {
	var req selectChatroomRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	id := ""
	if req.ID != nil {
		id = *req.ID
	}
	s.conv.SelectChatroom(id)
	w.WriteHeader(http.StatusNoContent)
}

// ---- messages ----

type sendMessageRequest struct {
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
}

// handleSendMessage appends the user message immediately and generates the
// assistant reply in the background: typing goes up, the backend call is
// awaited outside any store lock, and the store is only touched with the
// resolved result. If the room is deleted mid-flight the append is a
// silent no-op and the reply is discarded.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	var req sendMessageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := validate.MessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Image(req.Image); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := s.conv.Chatroom(roomID); !ok {
		writeError(w, http.StatusNotFound, "chatroom not found")
		return
	}

	s.conv.AppendMessage(roomID, req.Content, true, req.Image)
	s.conv.SetTyping(true)

	go func(content string) {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		ctx = logging.WithRoomID(ctx, roomID)

		reply, err := s.replies.GenerateReply(ctx, content)
		if err != nil {
			logging.With(ctx, s.log).Warn().Err(err).Msg("reply generation failed")
			s.conv.SetTyping(false)
			return
		}
		s.conv.AppendMessage(roomID, reply, false, "")
		s.conv.SetTyping(false)
	}(req.Content)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleLoadOlder(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	if _, ok := s.conv.Chatroom(roomID); !ok {
		writeError(w, http.StatusNotFound, "chatroom not found")
		return
	}
	batch := s.conv.LoadOlderMessages(roomID)
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": batch,
		// The stopping condition clients must use: a short page means no
		// more history.
		"hasMore": len(batch) == store.HistoryPageSize,
	})
}

// ---- ui flags ----

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	s.conv.SetSearchQuery(req.Query)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleDarkMode(w http.ResponseWriter, _ *http.Request) {
	s.conv.ToggleDarkMode()
	writeJSON(w, http.StatusOK, map[string]bool{"darkMode": s.conv.DarkMode()})
}
