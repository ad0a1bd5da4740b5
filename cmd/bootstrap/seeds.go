package bootstrap

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LingByte/LingReception/internal/models"
	"github.com/LingByte/LingReception/pkg/constants"
	"github.com/LingByte/LingReception/pkg/knowledge"
	"github.com/LingByte/LingReception/pkg/logger"
)

type SeedService struct {
	db *gorm.DB
}

func (s *SeedService) SeedAll() error {
	return s.seedKnowledge()
}

// DemoKnowledge is the company the receptionist pretends to work for until a
// real knowledge base URL is configured.
func DemoKnowledge() knowledge.Data {
	return knowledge.Data{
		Company: map[string]any{"name": "Acme Consolidated", "industry": "Vaguely defined services"},
		Services: []knowledge.Service{
			{Name: "Consulting", Description: "We tell you what you already know, for $200 an hour", Keywords: []string{"advice", "consulting"}},
			{Name: "Support", Description: "Turning it off and on again", Keywords: []string{"help", "broken", "support"}},
		},
		FAQs: []knowledge.FAQ{
			{
				Question: "Do you validate parking?",
				Answer:   "No. Nobody validates parking anymore.",
				Keywords: []string{"parking", "validate", "garage"},
				Category: "general",
			},
			{
				Question: "Do you offer free coffee?",
				Answer:   "There's a machine in the lobby. It has opinions.",
				Keywords: []string{"coffee", "drink", "latte"},
				Category: "general",
			},
		},
		Policies: []knowledge.Policy{
			{Title: "Refunds", Description: "Refunds are processed within 30 business days, give or take a fiscal quarter.", Keywords: []string{"refund", "money back"}},
		},
		Contacts: []knowledge.Contact{
			{Department: "general", Type: "general", Phone: "+1 555 0100", Email: "hello@example.com"},
			{Department: "billing", Phone: "+1 555 0101", Email: "billing@example.com"},
		},
		Hours: knowledge.Hours{Days: map[string]string{
			"monday":    "9am - 5pm",
			"tuesday":   "9am - 5pm",
			"wednesday": "9am - 5pm",
			"thursday":  "9am - 5pm",
			"friday":    "9am - 3pm",
		}},
		Locations: []knowledge.Location{
			{Name: "Headquarters", Address: "1 Infinite Hallway, Suite 404", City: "Springfield", State: "IL", Zip: "62701"},
		},
		CustomData: map[string]any{},
	}
}

func (s *SeedService) seedKnowledge() error {
	n, err := models.CountKnowledgeSnapshots(s.db)
	if err != nil {
		return fmt.Errorf("count knowledge snapshots: %w", err)
	}
	if n > 0 {
		logger.Info("knowledge snapshot already exists, skipping seed")
		return nil
	}
	payload, err := sonic.Marshal(DemoKnowledge())
	if err != nil {
		return err
	}
	if err := models.SaveKnowledgeSnapshot(s.db, constants.DEMO_KNOWLEDGE_SOURCE, payload, time.Now()); err != nil {
		return fmt.Errorf("seed knowledge snapshot: %w", err)
	}
	logger.Info("seeded demo knowledge", zap.String("source", constants.DEMO_KNOWLEDGE_SOURCE))
	return nil
}
