// Package console holds the terminal side of the simulation: the raw-mode
// keyboard listener, the polling/editing coordinator, the readline prompt
// helpers, and the lipgloss table rendering.
package console

import (
	"errors"
	"os"
	"sync"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

const (
	KeyEsc   = 0x1b
	KeyCtrlC = 0x03
)

// Keyboard owns stdin while the process is in its polling state. Attach
// switches the terminal to raw mode and streams single key presses;
// Detach restores cooked mode and cancels the pending read so readline
// prompts get stdin back untouched.
type Keyboard struct {
	mu       sync.Mutex
	attached bool

	fd       int
	oldState *term.State
	reader   cancelreader.CancelReader
	keys     chan byte
}

func NewKeyboard() *Keyboard {
	return &Keyboard{fd: int(os.Stdin.Fd())}
}

func (k *Keyboard) Attach() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.attached {
		return errors.New("keyboard already attached")
	}

	oldState, err := term.MakeRaw(k.fd)
	if err != nil {
		return err
	}
	reader, err := cancelreader.NewReader(os.Stdin)
	if err != nil {
		_ = term.Restore(k.fd, oldState)
		return err
	}

	k.oldState = oldState
	k.reader = reader
	k.keys = make(chan byte, 8)
	k.attached = true

	go func(reader cancelreader.CancelReader, keys chan<- byte) {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			n, err := reader.Read(buf)
			if err != nil {
				return
			}
			if n > 0 {
				keys <- buf[0]
			}
		}
	}(reader, k.keys)

	return nil
}

// Keys returns the channel of key presses for the current attachment. The
// channel closes on Detach.
func (k *Keyboard) Keys() <-chan byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys
}

func (k *Keyboard) Detach() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.attached {
		return nil
	}
	k.attached = false

	k.reader.Cancel()
	err := term.Restore(k.fd, k.oldState)
	k.reader = nil
	k.oldState = nil
	return err
}
