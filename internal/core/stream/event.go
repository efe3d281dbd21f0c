package stream

// Event is one tagged frame on a turn's output stream. Content is
// JSON-encodable; for delta events it is the incremental payload string.
type Event struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}

// Event discriminants. Artifact handlers emit the delta type matching their
// kind; the primary model stream emits text and reasoning deltas. The stream
// has no explicit finish frame: transport close is the terminal signal.
const (
	EventTextDelta      = "text-delta"
	EventReasoningDelta = "reasoning-delta"
	EventCodeDelta      = "code-delta"
	EventSheetDelta     = "sheet-delta"
	EventImageDelta     = "image-delta"
	EventPPTDelta       = "ppt-delta"
	EventStatus         = "status"
	EventError          = "error"
)

// DeltaKindEvent maps a document kind to the delta discriminant its handler
// emits.
func DeltaKindEvent(kind string) string {
	switch kind {
	case "code":
		return EventCodeDelta
	case "sheet":
		return EventSheetDelta
	case "image":
		return EventImageDelta
	case "slides":
		return EventPPTDelta
	default:
		return EventTextDelta
	}
}

// Sink receives events from the orchestrator and from artifact handlers.
// Implementations must tolerate emission after the consumer has gone away
// (turn cancelled) by dropping events rather than blocking forever.
type Sink interface {
	Emit(event Event)
}

// ChannelSink bridges a Sink onto a channel, dropping events once the
// supplied done channel closes so producers never block on a cancelled turn.
type ChannelSink struct {
	Ch   chan<- Event
	Done <-chan struct{}
}

func (s *ChannelSink) Emit(event Event) {
	select {
	case s.Ch <- event:
	case <-s.Done:
	}
}
