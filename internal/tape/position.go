package tape

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spool-ml/spool/internal/chunkvec"
)

// Position is an immutable bookmark into a tape, delimiting sweep ranges and
// truncation points. It embeds one position per underlying data stream plus
// the generation tag of the tape that produced it; a position from another
// tape, or taken before a full reset, is rejected.
type Position struct {
	gen    uuid.UUID
	stmt   chunkvec.Position
	jac    chunkvec.Position
	consts chunkvec.Position
	ext    chunkvec.Position
	bytes  chunkvec.Position
}

// Compare orders positions of the same tape generation by statement stream
// position.
func (p Position) Compare(q Position) int { return p.stmt.Compare(q.stmt) }

// Before reports whether p is strictly before q.
func (p Position) Before(q Position) bool { return p.Compare(q) < 0 }

// String implements fmt.Stringer.
func (p Position) String() string {
	return fmt.Sprintf("stmt%v jac%v const%v ext%v", p.stmt, p.jac, p.consts, p.ext)
}
