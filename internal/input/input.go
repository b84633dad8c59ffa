// Package input decodes a raw terminal byte stream into viewer commands and
// pointer positions.
package input

import (
	"bufio"
	"bytes"
	"strconv"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// Mouse is one SGR mouse report. Col and Row are 1-based terminal cells.
type Mouse struct {
	Col, Row int
	Button   int  // Button code with modifier bits
	Motion   bool // Pointer moved (any-motion tracking)
	Release  bool
}

// Input represents the current frame's input state.
type Input struct {
	Quit          bool
	Meteor        bool // Held keys keep firing
	ToggleTwinkle int  // Number of toggle presses this frame
	ToggleLines   int
	NextProfile   int
	ToggleHUD     int
	Mouse         *Mouse // Latest mouse report this frame
	PointerLeft   bool   // Terminal lost focus
	Pressed       []byte
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	quit   time.Time
	meteor time.Time
}

// Stream delivers input bytes via a channel and tracks key state across frames.
type Stream struct {
	ch      chan byte
	state   keyState
	partial []byte // Incomplete escape sequence carried to the next frame
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := newStream()
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

func newStream() *Stream {
	return &Stream{ch: make(chan byte, 256)}
}

// ReadInput drains all available bytes from the stream (non-blocking).
// A closed stream reports Quit.
func ReadInput(s *Stream) Input {
	buf := s.partial
	s.partial = nil
	closed := false

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := s.decode(buf, time.Now())
	if closed {
		in.Quit = true
	}
	return in
}

// ResetKeyInput forgets held keys so a held press does not carry over.
func ResetKeyInput(s *Stream) {
	s.state = keyState{}
}

// decode parses buf and updates the held key state.
func (s *Stream) decode(buf []byte, now time.Time) Input {
	var in Input

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+1 == len(buf) {
			// A read may end between ESC and '['.
			s.partial = []byte{b}
			buf = buf[:i]
			break
		}
		if b == '\x1b' && buf[i+1] == '[' {
			n, ok := s.decodeCSI(buf[i:], &in)
			if ok {
				i += n - 1
				continue
			}
			if n == 0 {
				// Sequence continues in a later read.
				s.partial = append([]byte(nil), buf[i:]...)
				buf = buf[:i]
				break
			}
		}

		switch b {
		case 'q', 'Q', '\x03':
			s.state.quit = now
		case 'm', 'M':
			s.state.meteor = now
		case 't', 'T':
			in.ToggleTwinkle++
		case 'l', 'L':
			in.ToggleLines++
		case 'p', 'P':
			in.NextProfile++
		case 'h', 'H', '?':
			in.ToggleHUD++
		}
	}

	in.Quit = now.Sub(s.state.quit) < keyHoldDuration
	in.Meteor = now.Sub(s.state.meteor) < keyHoldDuration
	in.Pressed = buf
	return in
}

// decodeCSI decodes a CSI sequence at the start of seq. It returns the
// sequence length and whether it was recognised; a length of 0 means the
// sequence is incomplete.
func (s *Stream) decodeCSI(seq []byte, in *Input) (int, bool) {
	if len(seq) < 3 {
		return 0, false
	}
	switch seq[2] {
	case 'O': // Focus out
		in.PointerLeft = true
		return 3, true
	case 'I': // Focus in
		return 3, true
	case '<':
		end := bytes.IndexAny(seq[3:], "Mm")
		if end < 0 {
			if len(seq) > 32 {
				return 1, false
			}
			return 0, false
		}
		m, ok := parseSGRMouse(seq[3:3+end], seq[3+end] == 'm')
		if !ok {
			return 3 + end + 1, true
		}
		in.Mouse = &m
		return 3 + end + 1, true
	}
	return 1, false
}

// parseSGRMouse parses the "b;x;y" body of an SGR mouse report.
func parseSGRMouse(body []byte, release bool) (Mouse, bool) {
	parts := bytes.Split(body, []byte{';'})
	if len(parts) != 3 {
		return Mouse{}, false
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(string(p))
		if err != nil {
			return Mouse{}, false
		}
		v[i] = n
	}
	return Mouse{
		Button:  v[0],
		Col:     v[1],
		Row:     v[2],
		Motion:  v[0]&32 != 0,
		Release: release,
	}, true
}
