package request

import (
	"fmt"

	"github.com/xraph/quotewatch"
)

// ValidateBatch checks that every item may be enqueued on tag.
func ValidateBatch(tag string, infos []Info) error {
	if tag == "" {
		return quotewatch.ErrMissingAPITag
	}
	for idx, info := range infos {
		if err := info.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", idx, err)
		}
		if info.APITag != tag {
			return fmt.Errorf("item %d: %w: %q != %q", idx, quotewatch.ErrTagMismatch, info.APITag, tag)
		}
	}
	return nil
}
