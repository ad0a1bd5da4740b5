package models

import (
	"time"

	"github.com/LingByte/LingReception/pkg/constants"
	"gorm.io/gorm"
)

// CallDirection call direction
type CallDirection string

const (
	CallDirectionInbound  CallDirection = "inbound"  // caller dialled us
	CallDirectionOutbound CallDirection = "outbound" // placed through /web-call
)

// CallRecord persisted summary of one phone call
type CallRecord struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	CallSid   string        `json:"callSid" gorm:"size:64;uniqueIndex;not null"` // Twilio CallSid
	From      string        `json:"from,omitempty" gorm:"size:32;index"`
	To        string        `json:"to,omitempty" gorm:"size:32"`
	Direction CallDirection `json:"direction" gorm:"size:20;index"`
	Status    string        `json:"status" gorm:"size:20;index"`

	Voice string `json:"voice,omitempty" gorm:"size:64"`
	Style string `json:"style,omitempty" gorm:"size:32"`
	Mood  string `json:"mood,omitempty" gorm:"size:64"`
	Turns int    `json:"turns" gorm:"default:0"`

	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  int        `json:"duration" gorm:"default:0"` // seconds
}

// TableName get tables
func (CallRecord) TableName() string {
	return constants.TABLE_CALL_RECORDS
}

// CreateCallRecord create call record
func CreateCallRecord(db *gorm.DB, record *CallRecord) error {
	if record.StartTime.IsZero() {
		record.StartTime = time.Now()
	}
	return db.Create(record).Error
}

// GetCallRecordBySid find call record by CallSid
func GetCallRecordBySid(db *gorm.DB, callSid string) (*CallRecord, error) {
	var record CallRecord
	err := db.Where("call_sid = ?", callSid).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateCallRecord update call record
func UpdateCallRecord(db *gorm.DB, record *CallRecord) error {
	return db.Save(record).Error
}

// UpdateCallStatus sets the latest provider status for a call.
func UpdateCallStatus(db *gorm.DB, callSid, status string) error {
	return db.Model(&CallRecord{}).Where("call_sid = ?", callSid).Update("status", status).Error
}

// MarkEnded closes the record with the final status and turn count.
func (r *CallRecord) MarkEnded(status string, turns int, at time.Time) {
	r.Status = status
	if turns > r.Turns {
		r.Turns = turns
	}
	r.EndTime = &at
	if !r.StartTime.IsZero() && at.After(r.StartTime) {
		r.Duration = int(at.Sub(r.StartTime).Seconds())
	}
}

// EndCallRecord loads, marks ended and saves the record for callSid.
func EndCallRecord(db *gorm.DB, callSid, status string, turns int, at time.Time) error {
	record, err := GetCallRecordBySid(db, callSid)
	if err != nil {
		return err
	}
	record.MarkEnded(status, turns, at)
	return UpdateCallRecord(db, record)
}

// GetRecentCallRecords newest first
func GetRecentCallRecords(db *gorm.DB, limit int) ([]CallRecord, error) {
	var records []CallRecord
	query := db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}
