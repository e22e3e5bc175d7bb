package sandbox

import (
	"fmt"

	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
)

// ErrCommandRejected is returned when the simulated game refuses a command.
// Commands on units that do not exist fail with *shared.UnitNotFoundError instead.
type ErrCommandRejected struct {
	*shared.DomainError
	Command string
	Unit    shared.UnitID
	Reason  string
}

func reject(command string, unit shared.UnitID, format string, args ...interface{}) error {
	reason := fmt.Sprintf(format, args...)
	return &ErrCommandRejected{
		DomainError: shared.NewDomainError(fmt.Sprintf("%s rejected for unit %s: %s", command, unit, reason)),
		Command:     command,
		Unit:        unit,
		Reason:      reason,
	}
}
