// Package audio declares the host audio sink contract the APU's output
// drains into. The core never imports a platform audio library directly;
// cmd/gbemu supplies the implementation.
package audio

// Sink accepts interleaved 16-bit stereo samples (L, R, L, R, ...).
type Sink interface {
	// Queue appends samples to the sink's playback buffer.
	Queue(samples []int16)
	// QueuedSize reports how many int16 values are currently buffered. The
	// core does not consult it: emulation speed is not paced by this queue.
	QueuedSize() int
	// SetPaused mutes/unmutes without discarding buffered audio.
	SetPaused(paused bool)
}
