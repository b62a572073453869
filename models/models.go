package models

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&SystemConfig{},
		&Requester{},
		&Case{},
		&Action{},
		&ActivityType{},
		&FolderType{},
		&OtherActivity{},
		&CaseFolder{},
		&FolderDocument{},
		&FolderLogEntry{},
		&QuickNote{},
		&RecoveryToken{},
	}
}
