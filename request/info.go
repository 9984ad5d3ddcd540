package request

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/quotewatch"
	"github.com/xraph/quotewatch/id"
)

// Kind names a payload variant.
type Kind string

const (
	KindNop               Kind = "nop"
	KindTrackerSync       Kind = "tracker_sync"
	KindQuoteHistorySync  Kind = "quote_history_sync"
	KindQuoteSnapshotSync Kind = "quote_snapshot_sync"
)

// Payload is one work item variant. Only types in this package implement it.
type Payload interface {
	Kind() Kind
	sealed()
}

// TrackerSync discovers the symbols traded on Date and schedules a history
// sync for each over the preceding QuoteHistoryDays days.
type TrackerSync struct {
	Date             time.Time `json:"date"`
	QuoteHistoryDays int       `json:"quote_history_days"`
}

// QuoteHistorySync downloads daily quotes for Symbol over [From, To].
type QuoteHistorySync struct {
	Symbol string    `json:"symbol"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// QuoteSnapshotSync downloads one page of hourly quotes.
type QuoteSnapshotSync struct {
	Page int `json:"page"`
}

// Nop does nothing. Dispatching one points at a construction mistake.
type Nop struct{}

func (TrackerSync) Kind() Kind       { return KindTrackerSync }
func (QuoteHistorySync) Kind() Kind  { return KindQuoteHistorySync }
func (QuoteSnapshotSync) Kind() Kind { return KindQuoteSnapshotSync }
func (Nop) Kind() Kind               { return KindNop }

func (TrackerSync) sealed()       {}
func (QuoteHistorySync) sealed()  {}
func (QuoteSnapshotSync) sealed() {}
func (Nop) sealed()               {}

// Info is an immutable, serializable work item bound to an API tag.
type Info struct {
	ID      id.ID
	APITag  string
	Payload Payload
}

// New creates a work item with a fresh ID. A nil payload is stored as Nop
// and a pointer variant is stored by value.
func New(tag string, p Payload) Info {
	return Info{ID: id.NewRequestID(), APITag: tag, Payload: normalize(p)}
}

func normalize(p Payload) Payload {
	switch v := p.(type) {
	case *TrackerSync:
		if v != nil {
			return *v
		}
	case *QuoteHistorySync:
		if v != nil {
			return *v
		}
	case *QuoteSnapshotSync:
		if v != nil {
			return *v
		}
	case *Nop:
	case nil:
	default:
		return p
	}
	return Nop{}
}

// Kind returns the payload variant. A zero Info is a Nop.
func (i Info) Kind() Kind {
	if i.Payload == nil {
		return KindNop
	}
	return i.Payload.Kind()
}

// Validate reports whether the item may be enqueued.
func (i Info) Validate() error {
	if i.APITag == "" {
		return quotewatch.ErrMissingAPITag
	}
	switch i.Payload.(type) {
	case TrackerSync, QuoteHistorySync, QuoteSnapshotSync, Nop, nil:
		return nil
	default:
		return fmt.Errorf("%w: %T", quotewatch.ErrUnknownRequest, i.Payload)
	}
}

// String returns a short description for logs.
func (i Info) String() string {
	return fmt.Sprintf("%s[%s] %s", i.Kind(), i.APITag, i.ID)
}

// LogValue implements slog.LogValuer.
func (i Info) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", i.ID.String()),
		slog.String("api_tag", i.APITag),
		slog.String("kind", string(i.Kind())),
	)
}

// ──────────────────────────────────────────────────
// Wire format
// ──────────────────────────────────────────────────

// infoJSON is the wire shape: at most one variant field is populated.
type infoJSON struct {
	ID                id.ID              `json:"id"`
	APITag            string             `json:"api_tag"`
	TrackerSync       *TrackerSync       `json:"tracker_sync,omitempty"`
	QuoteHistorySync  *QuoteHistorySync  `json:"quote_history_sync,omitempty"`
	QuoteSnapshotSync *QuoteSnapshotSync `json:"quote_snapshot_sync,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (i Info) MarshalJSON() ([]byte, error) {
	w := infoJSON{ID: i.ID, APITag: i.APITag}
	switch p := i.Payload.(type) {
	case TrackerSync:
		w.TrackerSync = &p
	case QuoteHistorySync:
		w.QuoteHistorySync = &p
	case QuoteSnapshotSync:
		w.QuoteSnapshotSync = &p
	case Nop, nil:
	default:
		return nil, fmt.Errorf("%w: %T", quotewatch.ErrUnknownRequest, p)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. Unknown fields are ignored and
// an item with no populated variant decodes as Nop.
func (i *Info) UnmarshalJSON(data []byte) error {
	var w infoJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var payloads []Payload
	if w.TrackerSync != nil {
		payloads = append(payloads, *w.TrackerSync)
	}
	if w.QuoteHistorySync != nil {
		payloads = append(payloads, *w.QuoteHistorySync)
	}
	if w.QuoteSnapshotSync != nil {
		payloads = append(payloads, *w.QuoteSnapshotSync)
	}

	var p Payload = Nop{}
	switch len(payloads) {
	case 0:
	case 1:
		p = payloads[0]
	default:
		return quotewatch.ErrAmbiguousRequest
	}

	*i = Info{ID: w.ID, APITag: w.APITag, Payload: p}
	return nil
}

// Encode serializes an item for a durable store.
func Encode(i Info) ([]byte, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(i)
}

// Decode parses an item written by Encode.
func Decode(data []byte) (Info, error) {
	var i Info
	if err := json.Unmarshal(data, &i); err != nil {
		return Info{}, fmt.Errorf("request: decode: %w", err)
	}
	return i, nil
}
