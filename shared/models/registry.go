package models

// All returns every model in migration order. Join and child tables come
// after the tables they reference.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Organization{},
		&Property{},
		&Tenant{},
		&Lease{},
		&LeaseTenant{},
		&Fee{},
		&Note{},
		&Event{},
	}
}
