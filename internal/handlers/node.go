package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/questforge/questforge-backend/internal/logger"
	"github.com/questforge/questforge-backend/internal/services"
	"github.com/questforge/questforge-backend/internal/tree"
)

type NodeHandler struct {
	log             *logger.Logger
	classService    services.ClassService
	nodeTreeService services.NodeTreeService
}

func NewNodeHandler(log *logger.Logger, classService services.ClassService, nodeTreeService services.NodeTreeService) *NodeHandler {
	return &NodeHandler{
		log:             log.With("handler", "NodeHandler"),
		classService:    classService,
		nodeTreeService: nodeTreeService,
	}
}

// ownedClassID resolves the :classId path param and checks the caller owns
// the class. Replies on failure and reports ok=false.
func (h *NodeHandler) ownedClassID(c *gin.Context) (uuid.UUID, bool) {
	classID, err := uuid.Parse(c.Param("classId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_class_id", err)
		return uuid.Nil, false
	}
	if _, err := h.classService.GetOwnedClass(c.Request.Context(), nil, classID); err != nil {
		RespondServiceError(c, err)
		return uuid.Nil, false
	}
	return classID, true
}

type createNodeRequest struct {
	Title       string     `json:"title" binding:"required"`
	NodeType    string     `json:"node_type"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Sequence    *int       `json:"sequence"`
}

func (h *NodeHandler) CreateNode(c *gin.Context) {
	classID, ok := h.ownedClassID(c)
	if !ok {
		return
	}
	var req createNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	node, err := h.nodeTreeService.CreateNode(c.Request.Context(), nil, services.CreateNodeInput{
		ClassID:     classID,
		ParentID:    req.ParentID,
		Title:       req.Title,
		NodeType:    req.NodeType,
		Description: req.Description,
		Sequence:    req.Sequence,
	})
	if err != nil {
		h.log.Error("CreateNode failed", "error", err, "class_id", classID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"node": node})
}

type reorderNodesRequest struct {
	ParentID *uuid.UUID        `json:"parent_id"`
	Items    []reorderItemBody `json:"items" binding:"required"`
}

type reorderItemBody struct {
	NodeID   uuid.UUID `json:"node_id" binding:"required"`
	Sequence int       `json:"sequence"`
}

func (h *NodeHandler) ReorderNodes(c *gin.Context) {
	classID, ok := h.ownedClassID(c)
	if !ok {
		return
	}
	var req reorderNodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	items := make([]tree.SequenceUpdate, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, tree.SequenceUpdate{NodeID: item.NodeID, Sequence: item.Sequence})
	}
	if err := h.nodeTreeService.ReorderNodes(c.Request.Context(), nil, classID, req.ParentID, items); err != nil {
		h.log.Error("ReorderNodes failed", "error", err, "class_id", classID)
		RespondServiceError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *NodeHandler) SoftDeleteNode(c *gin.Context) {
	classID, ok := h.ownedClassID(c)
	if !ok {
		return
	}
	nodeID, err := uuid.Parse(c.Param("nodeId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_node_id", err)
		return
	}
	if err := h.nodeTreeService.SoftDeleteNode(c.Request.Context(), nil, classID, nodeID); err != nil {
		h.log.Error("SoftDeleteNode failed", "error", err, "class_id", classID, "node_id", nodeID)
		RespondServiceError(c, err)
		return
	}
	RespondNoContent(c)
}

type toggleLockRequest struct {
	IsLocked *bool  `json:"is_locked" binding:"required"`
	Reason   string `json:"reason"`
}

func (h *NodeHandler) ToggleLock(c *gin.Context) {
	classID, ok := h.ownedClassID(c)
	if !ok {
		return
	}
	nodeID, err := uuid.Parse(c.Param("nodeId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_node_id", err)
		return
	}
	var req toggleLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.nodeTreeService.ToggleLock(c.Request.Context(), nil, classID, nodeID, *req.IsLocked, req.Reason); err != nil {
		h.log.Error("ToggleLock failed", "error", err, "class_id", classID, "node_id", nodeID)
		RespondServiceError(c, err)
		return
	}
	RespondNoContent(c)
}

func (h *NodeHandler) GetTree(c *gin.Context) {
	classID, ok := h.ownedClassID(c)
	if !ok {
		return
	}
	onlyActive := c.DefaultQuery("only_active", "true") != "false"
	items, err := h.nodeTreeService.GetTree(c.Request.Context(), nil, classID, onlyActive)
	if err != nil {
		h.log.Error("GetTree failed", "error", err, "class_id", classID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"tree": items})
}
