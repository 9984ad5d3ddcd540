package marketdata

import (
	"fmt"

	"github.com/xraph/quotewatch"
	"github.com/xraph/quotewatch/request"
)

// Factory builds the request for a work item.
type Factory struct {
	deps Deps
}

var _ request.Factory = (*Factory)(nil)

// NewFactory creates a Factory over deps.
func NewFactory(deps Deps) *Factory {
	return &Factory{deps: deps}
}

// Create maps info's payload to its request. A payload on the wrong tag or
// without a configured client is an error.
func (f *Factory) Create(info request.Info) (request.Request, error) {
	switch p := info.Payload.(type) {
	case nil, request.Nop:
		return request.NopRequest{}, nil

	case request.TrackerSync:
		if err := f.require(info, quotewatch.TagPolygon, f.deps.Polygon != nil); err != nil {
			return nil, err
		}
		return &TrackerRequest{info: p, deps: f.deps}, nil

	case request.QuoteHistorySync:
		if err := f.require(info, quotewatch.TagPolygon, f.deps.Polygon != nil); err != nil {
			return nil, err
		}
		return &QuoteHistoryRequest{info: p, deps: f.deps}, nil

	case request.QuoteSnapshotSync:
		if err := f.require(info, quotewatch.TagMessari, f.deps.Messari != nil); err != nil {
			return nil, err
		}
		return &QuoteSnapshotRequest{info: p, deps: f.deps}, nil

	default:
		return nil, fmt.Errorf("%w: %T", quotewatch.ErrUnknownRequest, p)
	}
}

func (f *Factory) require(info request.Info, tag string, configured bool) error {
	if info.APITag != tag {
		return fmt.Errorf("%w: %s belongs on %q, got %q", quotewatch.ErrTagMismatch, info.Kind(), tag, info.APITag)
	}
	if !configured {
		return fmt.Errorf("%w: no %s client for %s", quotewatch.ErrUnknownRequest, tag, info.Kind())
	}
	return nil
}
