package main

import (
	"encoding/binary"
	"sync"
)

// ringAudioSink implements audio.Sink by buffering queued stereo int16
// samples into a byte ring that Read drains for the ebiten audio player;
// on underrun it pads with silence rather than blocking, same tradeoff as
// the teacher's apuStream.
type ringAudioSink struct {
	mu     sync.Mutex
	buf    []byte
	paused bool
}

const maxBufferedBytes = 1 << 20 // ~5.5s of 48kHz stereo int16, generous backstop

func newRingAudioSink() *ringAudioSink { return &ringAudioSink{} }

func (s *ringAudioSink) Queue(samples []int16) {
	if len(samples) == 0 {
		return
	}
	b := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, b...)
	if len(s.buf) > maxBufferedBytes {
		// Drop the oldest overflow rather than growing unbounded; a host
		// this far behind has already lost sync with real time.
		s.buf = s.buf[len(s.buf)-maxBufferedBytes:]
	}
}

func (s *ringAudioSink) QueuedSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf) / 2
}

func (s *ringAudioSink) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

// Read implements io.Reader for ebiten/audio.Context.NewPlayer.
func (s *ringAudioSink) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused || len(s.buf) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
