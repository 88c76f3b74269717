package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ClassNode is one entry in a class's curriculum outline. Nodes form a tree
// via ParentID; active siblings under one parent carry a dense 1-based
// Sequence. Soft-deleted nodes keep their last Sequence for history.
type ClassNode struct {
	ID               uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClassID          uuid.UUID         `gorm:"type:uuid;not null;index:idx_class_node_class;index:idx_class_node_siblings,priority:1" json:"class_id"`
	Class            *Class            `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClassID;references:ID" json:"-"`
	ParentID         *uuid.UUID        `gorm:"type:uuid;index:idx_class_node_siblings,priority:2" json:"parent_id,omitempty"`
	Title            string            `gorm:"column:title;not null" json:"title"`
	NodeType         string            `gorm:"column:node_type" json:"node_type,omitempty"`
	Description      string            `gorm:"column:description" json:"description,omitempty"`
	Sequence         int               `gorm:"column:sequence;not null" json:"sequence"`
	IsActive         bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsLockedByImport bool              `gorm:"column:is_locked_by_import;not null;default:false" json:"is_locked_by_import"`
	Metadata         datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt        time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null;default:now()" json:"updated_at"`
}

func (ClassNode) TableName() string { return "class_node" }

// TreeItem is the nested view of a ClassNode returned by GetTree.
// Children is never nil.
type TreeItem struct {
	Node     *ClassNode  `json:"node"`
	Children []*TreeItem `json:"children"`
}
