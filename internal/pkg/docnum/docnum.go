// Package docnum formats registry numbers for routed documents.
package docnum

import (
	"fmt"
	"strings"
)

// Format builds a registry number from the issuing year, the creator
// department code and the allocated per-department sequence value,
// e.g. 2025-EDU-00123. Sequence values beyond five digits widen the
// final segment instead of wrapping.
func Format(year int, departmentCode string, sequence int64) string {
	return fmt.Sprintf("%04d-%s-%05d", year, strings.ToUpper(departmentCode), sequence)
}
