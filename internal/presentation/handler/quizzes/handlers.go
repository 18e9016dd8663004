package quizzes

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
	service *service.QuizService
	issuer  *token.Issuer
	hub     *gateway.Hub
	router  gateway.Router
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

func NewHandler(
	svc *service.QuizService,
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

func (h *Handler) CreateQuizHandler(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	access, err := h.service.CreateQuiz(r.Context(), service.CreateQuizFields{
		Topic:           req.Topic,
		Description:     req.Description,
		MaxParticipants: req.MaxParticipants,
		MaxQuestions:    req.MaxQuestions,
		Name:            req.Name,
	})
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	h.metrics.RoomsCreated.WithLabelValues("quiz").Inc()

	json.Write(w, http.StatusCreated, access)
}

func (h *Handler) JoinQuizHandler(w http.ResponseWriter, r *http.Request) {
	var req joinQuizRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	access, err := h.service.JoinQuiz(r.Context(), req.QuizID, req.Name)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, access)
}

func (h *Handler) RejoinQuizHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := h.issuer.Verify(utils.ExtractToken(r))
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	quiz, err := h.service.RejoinQuiz(r.Context(), claims.RoomID, claims.Subject, claims.Name)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, quiz)
}

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
	h.metrics.ActiveConnections.WithLabelValues("quiz").Inc()

	go client.WritePump()

	// Connected adds the client to the hub; on rejection it has already been
	// detached and the exception flushed, so only the pumps are skipped.
	if err := h.router.Connected(r.Context(), client); err != nil {
		h.metrics.ActiveConnections.WithLabelValues("quiz").Dec()
		h.log.Infow("join rejected", "quizID", claims.RoomID, "userID", claims.Subject, "error", err)
		return
	}

	go func() {
		client.ReadPump(h.router)
		h.metrics.ActiveConnections.WithLabelValues("quiz").Dec()
	}()

	h.log.Infow("participant connected", "quizID", claims.RoomID, "userID", claims.Subject)
}
