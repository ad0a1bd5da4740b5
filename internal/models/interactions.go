package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/LingByte/LingReception/pkg/constants"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InteractionMetadata free-form attributes attached to one exchange
type InteractionMetadata map[string]any

// Value implements driver.Valuer
func (m InteractionMetadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := sonic.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *InteractionMetadata) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*m = make(InteractionMetadata)
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", value)
	}
	if len(raw) == 0 {
		*m = make(InteractionMetadata)
		return nil
	}
	return sonic.Unmarshal(raw, m)
}

// Interaction one caller utterance and the receptionist's reply
type Interaction struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;index"`

	CallSid      string              `json:"callSid" gorm:"size:64;index"`
	Mood         string              `json:"mood" gorm:"size:64"`
	User         string              `json:"user" gorm:"type:text"`
	Receptionist string              `json:"receptionist" gorm:"type:text"`
	Funny        bool                `json:"funny" gorm:"default:false;index"`
	Metadata     InteractionMetadata `json:"metadata,omitempty" gorm:"type:text"`
}

// TableName get tables
func (Interaction) TableName() string {
	return constants.TABLE_INTERACTIONS
}

// BeforeCreate assigns a uuid primary key.
func (i *Interaction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// CreateInteraction create interaction
func CreateInteraction(db *gorm.DB, interaction *Interaction) error {
	return db.Create(interaction).Error
}

// GetInteractionsByCallSid oldest first
func GetInteractionsByCallSid(db *gorm.DB, callSid string) ([]Interaction, error) {
	var interactions []Interaction
	err := db.Where("call_sid = ?", callSid).Order("created_at ASC").Find(&interactions).Error
	return interactions, err
}

// GetFunnyInteractions newest first
func GetFunnyInteractions(db *gorm.DB, limit int) ([]Interaction, error) {
	var interactions []Interaction
	query := db.Where("funny = ?", true).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&interactions).Error
	return interactions, err
}
