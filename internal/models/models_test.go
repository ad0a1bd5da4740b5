package models

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(AllModels()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestCallRecordLifecycle(t *testing.T) {
	db := setupTestDB(t)

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	record := &CallRecord{
		CallSid:   "CA123",
		From:      "+15550001",
		Direction: CallDirectionInbound,
		Status:    "in-progress",
		Voice:     "Polly.Brian-Neural",
		Style:     "sarcastic",
		Mood:      "Why-Am-I-Here Monday Blues",
		StartTime: start,
	}
	require.NoError(t, CreateCallRecord(db, record))
	assert.NotZero(t, record.ID)

	require.NoError(t, UpdateCallStatus(db, "CA123", "ringing"))
	got, err := GetCallRecordBySid(db, "CA123")
	require.NoError(t, err)
	assert.Equal(t, "ringing", got.Status)

	require.NoError(t, EndCallRecord(db, "CA123", "completed", 4, start.Add(95*time.Second)))
	got, err = GetCallRecordBySid(db, "CA123")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, 4, got.Turns)
	assert.Equal(t, 95, got.Duration)
	require.NotNil(t, got.EndTime)

	_, err = GetCallRecordBySid(db, "CA-missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	records, err := GetRecentCallRecords(db, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMarkEndedKeepsHigherTurnCount(t *testing.T) {
	r := &CallRecord{Turns: 6}
	r.MarkEnded("failed", 2, time.Now())
	assert.Equal(t, 6, r.Turns)
	assert.Equal(t, "failed", r.Status)
	assert.Zero(t, r.Duration)
}

func TestInteractionMetadataRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	in := &Interaction{
		CallSid:      "CA1",
		Mood:         "Passive Aggressive Tuesday",
		User:         "Can I book an appointment?",
		Receptionist: "*SIGH* Fine.",
		Funny:        true,
		Metadata:     InteractionMetadata{"interactionNumber": 3, "wasHilarious": true},
	}
	require.NoError(t, CreateInteraction(db, in))
	assert.Len(t, in.ID, 36)

	require.NoError(t, CreateInteraction(db, &Interaction{CallSid: "CA1", User: "bye"}))

	list, err := GetInteractionsByCallSid(db, "CA1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, float64(3), list[0].Metadata["interactionNumber"])
	assert.Equal(t, true, list[0].Metadata["wasHilarious"])
	assert.Empty(t, list[1].Metadata)

	funny, err := GetFunnyInteractions(db, 5)
	require.NoError(t, err)
	require.Len(t, funny, 1)
	assert.Equal(t, in.ID, funny[0].ID)
}

func TestInteractionMetadataScan(t *testing.T) {
	var m InteractionMetadata
	require.NoError(t, m.Scan([]byte(`{"a":1}`)))
	assert.Equal(t, float64(1), m["a"])
	require.NoError(t, m.Scan(nil))
	assert.NotNil(t, m)
	assert.Error(t, m.Scan(42))

	v, err := InteractionMetadata{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestKnowledgeSnapshots(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetLatestKnowledgeSnapshot(db)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	now := time.Now()
	require.NoError(t, SaveKnowledgeSnapshot(db, "https://kb", []byte(`{"faqs":[]}`), now.Add(-time.Hour)))
	require.NoError(t, SaveKnowledgeSnapshot(db, "https://kb", []byte(`{"faqs":[1]}`), now))

	latest, err := GetLatestKnowledgeSnapshot(db)
	require.NoError(t, err)
	assert.Equal(t, `{"faqs":[1]}`, latest.Payload)

	count, err := CountKnowledgeSnapshots(db)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
