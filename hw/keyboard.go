package hw

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"

	"micro65/emu/log"
)

// ErrInterrupted reports a Ctrl-C keystroke, which terminates the host.
var ErrInterrupted = errors.New("interrupted")

// Keyboard captures raw keystrokes from the host terminal and publishes
// each byte as an interrupt. It is the only external event source; its
// injections are serialized with the tick loop by the controller's queue.
type Keyboard struct {
	in   *os.File
	ctrl *InterruptController

	canAttr unix.Termios // terminal attributes to restore on Close
	rawAttr unix.Termios

	silenced atomic.Bool
}

func NewKeyboard(in *os.File, ctrl *InterruptController) *Keyboard {
	return &Keyboard{in: in, ctrl: ctrl}
}

// Open switches the terminal to raw mode, one byte per keystroke, no echo.
func (k *Keyboard) Open() error {
	if err := termios.Tcgetattr(k.in.Fd(), &k.canAttr); err != nil {
		return err
	}
	k.rawAttr = k.canAttr
	termios.Cfmakeraw(&k.rawAttr)
	return termios.Tcsetattr(k.in.Fd(), termios.TCIFLUSH, &k.rawAttr)
}

// Close restores the terminal attributes saved by Open.
func (k *Keyboard) Close() error {
	return termios.Tcsetattr(k.in.Fd(), termios.TCIFLUSH, &k.canAttr)
}

// Silence stops publishing keystrokes without releasing the terminal.
func (k *Keyboard) Silence() {
	k.silenced.Store(true)
}

// Run reads keystrokes until ctx is cancelled or Ctrl-C arrives. Each byte
// becomes Interrupt{IRQ:1, Priority:1} with the byte as data.
func (k *Keyboard) Run(ctx context.Context) error {
	keys := make(chan uint8)
	errc := make(chan error, 1)

	// The blocking read lives in its own goroutine so cancellation stays
	// responsive. A reader stuck in Read when ctx ends is abandoned; the
	// process is on its way out by then.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := k.in.Read(buf)
			if err != nil {
				errc <- err
				return
			}
			if n == 0 {
				continue
			}
			select {
			case keys <- buf[0]:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case b := <-keys:
			if b == 0x03 { // Ctrl-C
				log.ModInput.InfoZ("ctrl-c, terminating").End()
				return ErrInterrupted
			}
			if k.silenced.Load() {
				continue
			}
			log.ModInput.DebugZ("keystroke").Hex8("key", b).End()
			k.ctrl.Accept(Interrupt{
				IRQ:      1,
				Priority: 1,
				Device:   KeyboardDevice,
				Data:     b,
			})
		}
	}
}
