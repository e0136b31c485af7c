package models

// All lists every model in dependency order, for sqlite-backed AutoMigrate.
func All() []any {
	return []any{
		&Account{},
		&UserProfile{},
		&Business{},
		&Voucher{},
		&AccountVoucher{},
		&Event{},
		&EventImage{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
