package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/dto"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/response"
	"github.com/ignatzorin/appeals-backend/internal/logger"
	"github.com/ignatzorin/appeals-backend/internal/usecase/appeal"
)

type AppealSubmitter interface {
	Execute(ctx context.Context, identity entity.Identity, input appeal.SubmitAppealInput) (*entity.Appeal, error)
}

type AppealLister interface {
	Execute(ctx context.Context, identity entity.Identity, scope valueobject.ListScope) ([]*entity.Appeal, error)
}

type AppealGetter interface {
	Execute(ctx context.Context, identity entity.Identity, appealID uuid.UUID) (*entity.Appeal, error)
}

type AppealDecider interface {
	Execute(ctx context.Context, identity entity.Identity, appealID uuid.UUID, verdict, note string) (*entity.Appeal, error)
}

type AppealAnalyzer interface {
	Execute(ctx context.Context, identity entity.Identity, appealID uuid.UUID) (appeal.Insight, error)
}

type AppealHandler struct {
	submitUC  AppealSubmitter
	listUC    AppealLister
	getUC     AppealGetter
	decideUC  AppealDecider
	analyzeUC AppealAnalyzer
}

func NewAppealHandler(
	submitUC AppealSubmitter,
	listUC AppealLister,
	getUC AppealGetter,
	decideUC AppealDecider,
	analyzeUC AppealAnalyzer,
) *AppealHandler {
	return &AppealHandler{
		submitUC:  submitUC,
		listUC:    listUC,
		getUC:     getUC,
		decideUC:  decideUC,
		analyzeUC: analyzeUC,
	}
}

// Submit обрабатывает POST /api/appeals.
func (h *AppealHandler) Submit(c *gin.Context) {
	var req dto.SubmitAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	created, err := h.submitUC.Execute(c.Request.Context(), identity(c), req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToAppealResponse(created))
}

// List обрабатывает GET /api/appeals?scope=mine|all.
func (h *AppealHandler) List(c *gin.Context) {
	scope, err := valueobject.NewListScope(c.Query("scope"))
	if err != nil {
		response.Error(c, err)
		return
	}

	appeals, err := h.listUC.Execute(c.Request.Context(), identity(c), scope)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAppealResponses(appeals))
}

// Get обрабатывает GET /api/appeals/:id.
func (h *AppealHandler) Get(c *gin.Context) {
	appealID, ok := appealIDParam(c)
	if !ok {
		return
	}

	found, err := h.getUC.Execute(c.Request.Context(), identity(c), appealID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAppealResponse(found))
}

// Decide обрабатывает POST /api/appeals/:id/decision.
func (h *AppealHandler) Decide(c *gin.Context) {
	appealID, ok := appealIDParam(c)
	if !ok {
		return
	}

	var req dto.DecideAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	decided, err := h.decideUC.Execute(c.Request.Context(), identity(c), appealID, req.Verdict, req.Note)
	if err != nil {
		logger.Get().WithFields(logrus.Fields{
			"appeal_id": appealID,
			"verdict":   req.Verdict,
			"error":     err.Error(),
		}).Info("appeal: решение не принято")
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAppealResponse(decided))
}

// Insight обрабатывает POST /api/appeals/:id/insight.
// Недоступность модели не считается ошибкой: клиент получает available=false и стандартный текст.
func (h *AppealHandler) Insight(c *gin.Context) {
	appealID, ok := appealIDParam(c)
	if !ok {
		return
	}

	insight, err := h.analyzeUC.Execute(c.Request.Context(), identity(c), appealID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToInsightResponse(appealID, insight))
}
