package telemetry

// Span names for traced operations.
const (
	SpanCreateSession = "session.create"
	SpanMoveCamera    = "session.move_camera"
	SpanSetProjection = "session.set_projection"
	SpanGridLines     = "grid.lines"
	SpanRelayCommand  = "relay.command"
)
