package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cryptolegal-backend/internal/models"
	"cryptolegal-backend/internal/ratelimit"
	"cryptolegal-backend/internal/services"
)

// AnonymousIdentity pools all requests without forwarded-address metadata
// into one shared budget.
const AnonymousIdentity = "anonymous"

type ChatHandler struct {
	limiter   ratelimit.Limiter
	completer services.Completer
	timeout   time.Duration
}

func NewChatHandler(limiter ratelimit.Limiter, completer services.Completer, timeout time.Duration) *ChatHandler {
	return &ChatHandler{
		limiter:   limiter,
		completer: completer,
		timeout:   timeout,
	}
}

// Chat handles one assistant request: method check, rate-limit admission,
// conversation assembly, completion, response shaping. At most one quota
// unit and one backend call per inbound request.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method not allowed"})
		return
	}

	identity := clientIdentity(r)

	decision, err := h.limiter.Allow(r.Context(), identity)
	if err != nil {
		// Counter store unreachable: fail closed rather than admit
		// unlimited traffic.
		log.Printf("Chat: rate limit check failed (request_id=%s): %v", r.Header.Get("X-Request-ID"), err)
		writeInternalError(w)
		return
	}

	if !decision.Allowed {
		setRateHeaders(w, decision)
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset, 10))
		writeJSON(w, http.StatusTooManyRequests, models.RateLimitResponse{
			Error:     "Too many requests",
			Limit:     decision.Limit,
			Reset:     decision.Reset,
			Remaining: decision.Remaining,
		})
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	turns, err := services.AssembleTurns(req.History, req.Message)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Message is required"})
		return
	}

	// Bound the provider call so a hung backend cannot hold the slot.
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reply, err := h.completer.Complete(ctx, turns)
	if err != nil {
		// Provider detail is logged, never echoed to the caller.
		log.Printf("Chat: completion failed (request_id=%s): %v", r.Header.Get("X-Request-ID"), err)
		writeInternalError(w)
		return
	}

	setRateHeaders(w, decision)
	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

// clientIdentity extracts the rate-limit partition key from the
// forwarded-address header, first hop. It carries no authentication
// semantics.
func clientIdentity(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return AnonymousIdentity
	}
	if i := strings.IndexByte(forwarded, ','); i >= 0 {
		forwarded = forwarded[:i]
	}
	identity := strings.TrimSpace(forwarded)
	if identity == "" {
		return AnonymousIdentity
	}
	return identity
}

func setRateHeaders(w http.ResponseWriter, decision ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, models.InternalErrorResponse{
		Error:   "Internal server error",
		Message: "The assistant is temporarily unavailable. Please try again later.",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
