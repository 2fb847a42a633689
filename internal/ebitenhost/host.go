// Package ebitenhost presents the engine in a desktop window and feeds
// mouse, touch and keyboard input back into it.
//
// Keys: 1-9 select a single pattern, L toggles layering every pattern, C
// clears the trails, Escape quits.
package ebitenhost

import (
	"errors"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/cwbudde/algo-glow/engine"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/scene"
	"github.com/cwbudde/algo-glow/surface"
)

var patternKeys = [...]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Host implements ebiten.Game around an engine.
type Host struct {
	engine  *engine.Engine
	tracker *input.Tracker
	logger  *slog.Logger

	start   time.Time
	width   int
	height  int
	frame   *surface.Surface
	pix     []byte
	layered bool
	touches []ebiten.TouchID
}

// New creates a host for a width x height canvas. logger may be nil.
func New(e *engine.Engine, tracker *input.Tracker, width, height int, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		engine:  e,
		tracker: tracker,
		logger:  logger,
		start:   time.Now(),
		width:   width,
		height:  height,
	}
}

// Run opens the window and blocks until it is closed.
func (h *Host) Run(title string) error {
	ebiten.SetWindowSize(h.width, h.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(h); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// Update feeds input into the tracker and steps the engine.
func (h *Host) Update() error {
	now := time.Since(h.start)

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	h.handleKeys()
	h.handlePointer(now)

	frame, err := h.engine.Step(now)
	if err != nil {
		if errors.Is(err, scene.ErrClosed) {
			return ebiten.Termination
		}
		h.logger.Warn("frame failed", slog.Any("error", err))
		return nil
	}
	h.frame = frame
	return nil
}

func (h *Host) handleKeys() {
	mgr := h.engine.Manager()
	for i, key := range patternKeys {
		if !inpututil.IsKeyJustPressed(key) || i >= mgr.Len() {
			continue
		}
		if err := mgr.SetActivePattern(i); err != nil {
			h.logger.Warn("cannot select pattern", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		h.layered = false
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		h.layered = !h.layered
		var set []int
		if h.layered {
			for _, info := range mgr.Patterns() {
				if info.State != scene.Destroyed {
					set = append(set, info.Index)
				}
			}
		} else if active := mgr.Active(); len(active) > 0 {
			set = active[:1]
		}
		if err := mgr.SetLayers(set); err != nil {
			h.logger.Warn("cannot set layers", slog.Any("error", err))
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		h.engine.Compositor().Reset()
	}
}

func (h *Host) handlePointer(now time.Duration) {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	h.tracker.Move(x, y, now)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		h.tracker.Press(x, y, now)
		h.tracker.Click(x, y, now)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		h.tracker.Release(x, y, now)
	}

	h.touches = inpututil.AppendJustPressedTouchIDs(h.touches[:0])
	for _, id := range h.touches {
		tx, ty := ebiten.TouchPosition(id)
		h.tracker.Press(float64(tx), float64(ty), now)
		h.tracker.Click(float64(tx), float64(ty), now)
	}
	h.touches = inpututil.AppendJustReleasedTouchIDs(h.touches[:0])
	for _, id := range h.touches {
		tx, ty := inpututil.TouchPositionInPreviousTick(id)
		h.tracker.Release(float64(tx), float64(ty), now)
	}
}

// Draw copies the latest composite to the screen.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.frame == nil {
		return
	}
	b := screen.Bounds()
	if b.Dx() != h.frame.Width || b.Dy() != h.frame.Height {
		return
	}
	n := 4 * h.frame.Width * h.frame.Height
	if cap(h.pix) < n {
		h.pix = make([]byte, n)
	}
	h.pix = h.pix[:n]
	if err := h.frame.WriteRGBA(h.pix); err != nil {
		h.logger.Warn("export failed", slog.Any("error", err))
		return
	}
	screen.WritePixels(h.pix)
}

// Layout resizes the engine to the window size.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return h.width, h.height
	}
	if outsideWidth != h.width || outsideHeight != h.height {
		if err := h.engine.Resize(outsideWidth, outsideHeight); err != nil {
			h.logger.Warn("resize failed", slog.Any("error", err))
			return h.width, h.height
		}
		h.width, h.height = outsideWidth, outsideHeight
		h.frame = nil
	}
	return h.width, h.height
}
