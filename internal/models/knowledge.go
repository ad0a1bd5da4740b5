package models

import (
	"time"

	"github.com/LingByte/LingReception/pkg/constants"
	"gorm.io/gorm"
)

// KnowledgeSnapshot one fetched copy of the company knowledge base
type KnowledgeSnapshot struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	Source    string    `json:"source" gorm:"size:512"`
	Payload   string    `json:"payload" gorm:"type:text"` // JSON document
	FetchedAt time.Time `json:"fetchedAt" gorm:"index"`
}

// TableName get tables
func (KnowledgeSnapshot) TableName() string {
	return constants.TABLE_KNOWLEDGE_SNAPSHOTS
}

// SaveKnowledgeSnapshot stores a new snapshot.
func SaveKnowledgeSnapshot(db *gorm.DB, source string, payload []byte, fetchedAt time.Time) error {
	return db.Create(&KnowledgeSnapshot{
		Source:    source,
		Payload:   string(payload),
		FetchedAt: fetchedAt,
	}).Error
}

// GetLatestKnowledgeSnapshot returns the most recently fetched snapshot.
func GetLatestKnowledgeSnapshot(db *gorm.DB) (*KnowledgeSnapshot, error) {
	var snapshot KnowledgeSnapshot
	err := db.Order("fetched_at DESC").Order("id DESC").First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// CountKnowledgeSnapshots total stored snapshots
func CountKnowledgeSnapshots(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&KnowledgeSnapshot{}).Count(&count).Error
	return count, err
}
