// content.go implements document/link/attachment body validation.
//
// Separated because body validation is intentionally minimal: the engine
// only checks that content is well-formed JSON and within a configured
// size limit. Schema validation is an explicit Non-goal.
package validate

import (
	"encoding/json"
	"fmt"
)

// JSONBody validates that body is a syntactically valid JSON value and
// within maxLen bytes (0 means no limit).
func JSONBody(body []byte, maxLen int64) error {
	if maxLen > 0 && int64(len(body)) > maxLen {
		return ErrContentTooLarge
	}
	if !json.Valid(body) {
		return fmt.Errorf("%w: not valid json", ErrInvalidJSON)
	}
	return nil
}
