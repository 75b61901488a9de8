package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"studychat/domain"
	"studychat/domain/event"
	apperrors "studychat/errors"
	"studychat/runtime"
)

// Handler exposes the chat operations over HTTP with JSON bodies.
type Handler struct {
	orchestrator *runtime.Orchestrator
	log          *slog.Logger
}

func NewHandler(orchestrator *runtime.Orchestrator, log *slog.Logger) http.Handler {
	handler := &Handler{
		orchestrator: orchestrator,
		log:          log,
	}
	return handler.routes()
}

func (h *Handler) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /messages", http.HandlerFunc(h.handlePostMessage))
	mux.Handle("GET /messages", http.HandlerFunc(h.handleGetMessages))
	mux.Handle("GET /events", http.HandlerFunc(h.handleGetEvents))
	mux.Handle("GET /healthz", http.HandlerFunc(h.handleHealth))
	return mux
}

type postMessageRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

type postMessageResponse struct {
	CmdUUID uuid.UUID `json:"cmdUuid"`
}

func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cmd := domain.PostMessageCommand{
		UUID:    uuid.New(),
		UserID:  req.UserID,
		Content: req.Content,
	}
	if err := h.orchestrator.PostMessage(r.Context(), cmd); err != nil {
		h.log.Error("post message failed", "cmdUuid", cmd.UUID, "error", err)
		h.writeError(w, apperrors.MapToHTTPStatus(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusAccepted, postMessageResponse{CmdUUID: cmd.UUID})
}

type messageView struct {
	EventUUID  uuid.UUID `json:"eventUuid"`
	UserID     string    `json:"userId"`
	Content    string    `json:"content"`
	CreatedAt  string    `json:"createdAt"`
	OccurCount int       `json:"occurCount"`
}

type getMessagesResponse struct {
	Messages   []messageView `json:"messages"`
	NextCursor *string       `json:"nextCursor,omitempty"`
}

func (h *Handler) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	var cmd domain.GetMessagesCommand
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		cmd.Cursor = &cursor
	}

	messages, next, err := h.orchestrator.GetMessages(cmd)
	if err != nil {
		h.log.Error("get messages failed", "error", err)
		h.writeError(w, apperrors.MapToHTTPStatus(err), err.Error())
		return
	}

	resp := getMessagesResponse{
		Messages: lo.Map(messages, func(m domain.Message, _ int) messageView {
			return messageView{
				EventUUID:  m.EventUUID,
				UserID:     m.SenderUserID,
				Content:    m.Content,
				CreatedAt:  m.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
				OccurCount: m.OccurCount,
			}
		}),
		NextCursor: next,
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type getEventsResponse struct {
	Events []json.RawMessage `json:"events"`
}

func (h *Handler) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "missing user parameter")
		return
	}

	cmd := domain.FetchEventsCommand{UserID: userID}
	if last := r.URL.Query().Get("last"); last != "" {
		lastUUID, err := uuid.Parse(last)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid last parameter")
			return
		}
		cmd.LastUUID = &lastUUID
	}

	events, err := h.orchestrator.EventsSince(r.Context(), cmd)
	if err != nil {
		h.log.Error("get events failed", "userId", userID, "error", err)
		h.writeError(w, apperrors.MapToHTTPStatus(err), err.Error())
		return
	}

	resp := getEventsResponse{Events: make([]json.RawMessage, 0, len(events))}
	for _, e := range events {
		raw, err := event.Encode(e)
		if err != nil {
			h.log.Error("encode event failed", "eventUuid", e.Head().UUID, "error", err)
			h.writeError(w, apperrors.MapToHTTPStatus(err), err.Error())
			return
		}
		resp.Events = append(resp.Events, raw)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("write response failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
