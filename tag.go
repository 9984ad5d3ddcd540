package quotewatch

// Known API tags. A tag names an independent rate domain: its own durable
// queue, dispatcher, and backoff state.
const (
	TagPolygon = "polygon"
	TagMessari = "messari"
)
