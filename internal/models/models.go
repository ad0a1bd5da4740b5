package models

// AllModels lists every table for AutoMigrate.
func AllModels() []any {
	return []any{
		&CallRecord{},
		&Interaction{},
		&KnowledgeSnapshot{},
	}
}
