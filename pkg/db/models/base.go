package models

import "github.com/google/uuid"

// ensureID fills a nil primary key before insert. Postgres also defaults ids
// through gen_random_uuid(), but ids assigned in Go are known before commit
// and keep sqlite-backed tests working.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
