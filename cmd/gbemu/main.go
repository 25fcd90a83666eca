package main

import (
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"golang.org/x/sync/errgroup"

	"github.com/pcineverdies/gameboy-emulator/internal/cart"
	"github.com/pcineverdies/gameboy-emulator/internal/machine"
	"github.com/pcineverdies/gameboy-emulator/internal/ppu"
)

// errExitRequested is returned by game.Update once RuntimeFlags.ExitRequested
// is set; ebiten.RunGame surfaces it as its own return value, letting main
// tell a clean shutdown apart from a real error.
var errExitRequested = errors.New("exit requested")

type cliFlags struct {
	rom      string
	bootROM  string
	scale    int
	title    string
	fixedFPS bool
	save     bool
	trace    bool

	headless bool
	frames   int
	outPNG   string
	expect   string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.rom, "rom", "", "path to ROM (.gb/.gbc)")
	flag.StringVar(&f.bootROM, "bootrom", "", "optional boot ROM image")
	flag.IntVar(&f.scale, "scale", 3, "window scale")
	flag.StringVar(&f.title, "title", "gbemu", "window title")
	flag.BoolVar(&f.fixedFPS, "fixed_fps", true, "pace at the native refresh rate instead of running uncapped")
	flag.BoolVar(&f.save, "save", true, "load/persist battery RAM next to the ROM as <rom>.save")
	flag.BoolVar(&f.trace, "trace", false, "echo serial output to stdout")

	flag.BoolVar(&f.headless, "headless", false, "run without opening a window")
	flag.IntVar(&f.frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.outPNG, "outpng", "", "write the final frame to a PNG at this path")
	flag.StringVar(&f.expect, "expect", "", "assert the final frame's CRC32 (hex) and exit nonzero on mismatch")
	flag.Parse()
	return f
}

func savePathFor(romPath string) string {
	ext := strings.ToLower(romPath)
	for _, suf := range []string{".gbc", ".gb"} {
		if strings.HasSuffix(ext, suf) {
			return romPath[:len(romPath)-len(suf)] + ".save"
		}
	}
	return romPath + ".save"
}

func main() {
	f := parseFlags()
	if f.rom == "" {
		fmt.Fprintln(os.Stderr, "usage: gbemu -rom <path> [flags]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	rom, err := os.ReadFile(f.rom)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}
	var bootROM []byte
	if f.bootROM != "" {
		bootROM, err = os.ReadFile(f.bootROM)
		if err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
	}

	cgb := false
	if h, err := cart.ParseHeader(rom); err == nil {
		cgb = h.IsCGB()
		log.Printf("rom: %q type=%s banks=%d ram=%dB cgb=%v", h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes, cgb)
	}

	cfg := machine.Config{CGB: cgb, SampleRate: 48000, BootROM: bootROM}
	m, err := machine.New(cfg, rom)
	if err != nil {
		log.Fatalf("machine.New: %v", err)
	}
	m.Flags.FixedFPS = f.fixedFPS

	if f.trace {
		m.SetSerialWriter(os.Stdout)
	}

	savePath := ""
	if f.save {
		savePath = savePathFor(f.rom)
		if data, err := os.ReadFile(savePath); err == nil {
			if m.LoadSave(data) {
				log.Printf("loaded save: %s (%d bytes)", savePath, len(data))
			} else {
				log.Printf("warning: %s is not a valid save file for this cartridge, ignoring (%d bytes)", savePath, len(data))
			}
		}
	}

	if f.headless {
		runHeadless(m, f)
		shutdown(m, nil, savePath, f.save)
		return
	}

	runWindowed(m, f, savePath)
}

func runHeadless(m *machine.Machine, f cliFlags) {
	if f.frames <= 0 {
		f.frames = 1
	}
	start := time.Now()
	var lastFrame [ppu.ScreenH][ppu.ScreenW]ppu.Pixel
	for i := 0; i < f.frames; i++ {
		frame, ready := m.StepFrame()
		if !ready {
			break
		}
		lastFrame = frame
	}
	elapsed := time.Since(start)

	pix := make([]byte, ppu.ScreenW*ppu.ScreenH*4)
	for y := 0; y < ppu.ScreenH; y++ {
		for x := 0; x < ppu.ScreenW; x++ {
			p := lastFrame[y][x]
			i := (y*ppu.ScreenW + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = p.R, p.G, p.B, 0xFF
		}
	}
	crc := crc32.ChecksumIEEE(pix)
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x", f.frames, elapsed.Truncate(time.Millisecond), float64(f.frames)/elapsed.Seconds(), crc)

	if f.outPNG != "" {
		if err := writePNG(pix, ppu.ScreenW, ppu.ScreenH, f.outPNG); err != nil {
			log.Fatalf("write png: %v", err)
		}
		log.Printf("wrote %s", f.outPNG)
	}
	if f.expect != "" {
		want := strings.TrimPrefix(strings.ToLower(f.expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			log.Fatalf("checksum mismatch: got %s want %s", got, want)
		}
	}
}

func writePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, img)
}

func runWindowed(m *machine.Machine, f cliFlags, savePath string) {
	ebiten.SetWindowSize(ppu.ScreenW*f.scale, ppu.ScreenH*f.scale)
	ebiten.SetWindowTitle(f.title)
	if !f.fixedFPS {
		ebiten.SetTPS(ebiten.UncappedTPS)
	}

	sink := newRingAudioSink()
	ctx := audio.NewContext(48000)
	player, err := ctx.NewPlayer(sink)
	if err == nil {
		player.Play()
	}

	g := newGame(m, sink, f.scale)
	runErr := ebiten.RunGame(g)
	if runErr != nil && !errors.Is(runErr, errExitRequested) {
		log.Printf("ebiten exited: %v", runErr)
	}

	shutdown(m, player, savePath, f.save)
}

// shutdown stops the audio player and flushes battery RAM to disk
// concurrently: neither depends on the other, and a slow save-file write
// shouldn't hold up releasing the audio device or vice versa.
func shutdown(m *machine.Machine, player *audio.Player, savePath string, saveEnabled bool) {
	var g errgroup.Group
	g.Go(func() error {
		if player != nil {
			player.Pause()
		}
		return nil
	})
	g.Go(func() error {
		if !saveEnabled || savePath == "" {
			return nil
		}
		data, ok := m.SaveData()
		if !ok {
			return nil
		}
		if err := os.WriteFile(savePath, data, 0o644); err != nil {
			return fmt.Errorf("write save: %w", err)
		}
		m.Flush()
		log.Printf("wrote %s", savePath)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Printf("%v", err)
	}
}
