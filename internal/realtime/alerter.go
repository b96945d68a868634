package realtime

import (
	"log"

	"github.com/google/uuid"
)

// Alerter delivers user-facing alerts. Toast is the transient in-app
// channel and always works; Push is the platform-level notification and
// is skipped for users who have not granted permission.
type Alerter interface {
	Toast(userID uuid.UUID, message string)
	Push(userID uuid.UUID, title, body string)
}

type logAlerter struct{}

// NewLogAlerter returns an Alerter that logs the alerts that would be
// delivered. A deployment integrates a real push provider here.
func NewLogAlerter() Alerter {
	return &logAlerter{}
}

func (a *logAlerter) Toast(userID uuid.UUID, message string) {
	log.Printf("[TOAST] user=%s %s", userID.String(), message)
}

func (a *logAlerter) Push(userID uuid.UUID, title, body string) {
	log.Printf("[PUSH] user=%s %s: %s", userID.String(), title, body)
}
