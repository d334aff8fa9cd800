package dto

// Persona change event types published on the queue and broadcast over
// WebSocket.
const (
	EventPersonaCreated = "persona.created"
	EventPersonaUpdated = "persona.updated"
	EventPersonaDeleted = "persona.deleted"
)

type PersonaEvent struct {
	Type      string         `json:"type"`
	PersonaID int64          `json:"persona_id"`
	Persona   map[string]any `json:"persona,omitempty"`
}
