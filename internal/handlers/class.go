package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/questforge/questforge-backend/internal/logger"
	"github.com/questforge/questforge-backend/internal/requestdata"
	"github.com/questforge/questforge-backend/internal/services"
)

type ClassHandler struct {
	log          *logger.Logger
	classService services.ClassService
}

func NewClassHandler(log *logger.Logger, classService services.ClassService) *ClassHandler {
	return &ClassHandler{
		log:          log.With("handler", "ClassHandler"),
		classService: classService,
	}
}

type createClassRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *ClassHandler) CreateClass(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	class, err := h.classService.CreateClass(c.Request.Context(), nil, req.Name, req.Description)
	if err != nil {
		h.log.Error("CreateClass failed", "error", err, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"class": class})
}

func (h *ClassHandler) ListUserClasses(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	classes, err := h.classService.GetUserClasses(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("ListUserClasses failed", "error", err, "user_id", rd.UserID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"classes": classes})
}
