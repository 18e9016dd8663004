package polls

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hilthontt/quorum/internal/gateway"
	"github.com/hilthontt/quorum/internal/infrastructure/json"
	"github.com/hilthontt/quorum/internal/infrastructure/metrics"
	"github.com/hilthontt/quorum/internal/infrastructure/token"
	"github.com/hilthontt/quorum/internal/presentation/utils"
	"github.com/hilthontt/quorum/internal/service"
)

var validate = validator.New()

type Handler struct {
	service *service.PollService
	issuer  *token.Issuer
	hub     *gateway.Hub
	router  gateway.Router
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

func NewHandler(
	svc *service.PollService,
	issuer *token.Issuer,
	hub *gateway.Hub,
	router gateway.Router,
	m *metrics.Metrics,
	log *zap.SugaredLogger,
) *Handler {
	return &Handler{
		service: svc,
		issuer:  issuer,
		hub:     hub,
		router:  router,
		metrics: m,
		log:     log,
	}
}

func (h *Handler) CreatePollHandler(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	access, err := h.service.CreatePoll(r.Context(), service.CreatePollFields{
		Topic:         req.Topic,
		VotesPerVoter: req.VotesPerVoter,
		Name:          req.Name,
	})
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	h.metrics.RoomsCreated.WithLabelValues("poll").Inc()

	json.Write(w, http.StatusCreated, access)
}

func (h *Handler) JoinPollHandler(w http.ResponseWriter, r *http.Request) {
	var req joinPollRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	access, err := h.service.JoinPoll(r.Context(), req.PollID, req.Name)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, access)
}

// RejoinPollHandler re-admits a participant from their existing credential;
// identity comes from the token, not the body.
func (h *Handler) RejoinPollHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := h.issuer.Verify(utils.ExtractToken(r))
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	poll, err := h.service.RejoinPoll(r.Context(), claims.RoomID, claims.Subject, claims.Name)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, poll)
}

// ConnectHandler upgrades to a websocket and attaches the caller to their
// poll room. The token is verified after the upgrade so the client gets a
// proper exception event instead of a bare HTTP error.
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := utils.ExtractToken(r)

	conn, err := gateway.Upgrade(w, r)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	claims, err := h.issuer.Verify(tokenString)
	if err != nil {
		_ = conn.WriteJSON(gateway.NewException(err))
		_ = conn.Close()
		return
	}

	client := gateway.NewClient(h.hub, conn, claims.RoomID, claims.Subject, claims.Name, h.log)
	h.metrics.ActiveConnections.WithLabelValues("poll").Inc()

	go client.WritePump()

	// Connected adds the client to the hub; on rejection it has already been
	// detached and the exception flushed, so only the pumps are skipped.
	if err := h.router.Connected(r.Context(), client); err != nil {
		h.metrics.ActiveConnections.WithLabelValues("poll").Dec()
		h.log.Infow("join rejected", "pollID", claims.RoomID, "userID", claims.Subject, "error", err)
		return
	}

	go func() {
		client.ReadPump(h.router)
		h.metrics.ActiveConnections.WithLabelValues("poll").Dec()
	}()

	h.log.Infow("participant connected", "pollID", claims.RoomID, "userID", claims.Subject)
}
