package billing

import "github.com/rs/zerolog/log"

// Activity actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Entry is one audit record describing a mutation.
type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	EntityName string
	UserName   string
	Details    map[string]any
}

// Recorder is the audit sink. Best-effort from the caller's perspective:
// errors (and panics) out of Record must never fail the mutation being
// described.
type Recorder interface {
	Record(e Entry) error
}

// record writes an entry and swallows whatever goes wrong, logging it so a
// dead sink is at least visible.
func record(rec Recorder, e Entry) {
	if rec == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Str("entity_type", e.EntityType).Msg("activity recorder panicked")
		}
	}()
	if err := rec.Record(e); err != nil {
		log.Warn().Err(err).
			Str("action", e.Action).
			Str("entity_type", e.EntityType).
			Str("entity_id", e.EntityID).
			Msg("activity record failed")
	}
}
