package models

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&SiteSettings{},
		&ServiceCategory{},
		&Service{},
		&NewsCategory{},
		&News{},
		&TeamMember{},
		&ContactMessage{},
		&ServiceRequest{},
		&AuditLog{},
	}
}
