package machine

// Config selects the hardware tier and host-facing defaults; it is built
// once from CLI flags and passed by value into New (spec §9's redesign of
// the original's global config struct into an explicit value).
type Config struct {
	CGB        bool // color tier vs. classic tier
	SampleRate int  // APU downsample target, typically 48000
	BootROM    []byte
}

// RuntimeFlags holds everything spec §9 calls out as having been a
// process-global in the original: exit request, fixed-fps pacing, volume
// amplification, and the current CGB double-speed state. It lives inside
// Machine, whose methods read and update it, never in a package global;
// the components themselves never see it.
type RuntimeFlags struct {
	ExitRequested bool
	FixedFPS      bool
	Volume        int // 0..10, host-side amplification only
	DoubleSpeed   bool
}
