package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document is one node of the hierarchical document store.
// Path is the full slash-joined key, Parent the collection it lives in.
type Document struct {
	Path      string         `gorm:"primaryKey;type:varchar(512)"`
	Parent    string         `gorm:"type:varchar(512);index:idx_documents_parent_doc,priority:1;not null"`
	DocID     string         `gorm:"type:varchar(255);index:idx_documents_parent_doc,priority:2;not null"`
	Data      datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Document) TableName() string { return "documents" }
