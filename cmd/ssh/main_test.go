package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/muesli/termenv"
)

func TestColorProfile(t *testing.T) {
	tests := []struct {
		term    string
		environ []string
		want    termenv.Profile
	}{
		{"xterm-256color", nil, termenv.ANSI256},
		{"xterm-256color", []string{"COLORTERM=truecolor"}, termenv.TrueColor},
		{"xterm-256color", []string{"NO_COLOR=1"}, termenv.Ascii},
		{"xterm-kitty", nil, termenv.TrueColor},
		{"xterm", nil, termenv.ANSI},
		{"dumb", nil, termenv.Ascii},
		{"", []string{"TERM=screen-256color"}, termenv.ANSI256},
		{"", []string{"LANG=C"}, termenv.Ascii},
	}
	for _, tt := range tests {
		if got := colorProfile(io.Discard, tt.term, tt.environ); got != tt.want {
			t.Errorf("colorProfile(%q, %v) = %v, expected %v", tt.term, tt.environ, got.Name(), tt.want.Name())
		}
	}
}

func TestSSHEnvironPrefersPtyTerm(t *testing.T) {
	e := sshEnviron{term: "xterm-kitty", environ: []string{"TERM=vt100", "COLORTERM=24bit"}}
	if got := e.Getenv("TERM"); got != "xterm-kitty" {
		t.Errorf("TERM = %q", got)
	}
	if got := e.Getenv("COLORTERM"); got != "24bit" {
		t.Errorf("COLORTERM = %q", got)
	}
	if got := e.Getenv("HOME"); got != "" {
		t.Errorf("HOME = %q", got)
	}
}

func TestSessionSetCloseAll(t *testing.T) {
	set := newSessionSet()
	ctx, done := set.add(context.Background())

	go func() {
		<-ctx.Done()
		done()
	}()

	wait, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if n := set.closeAll(wait); n != 0 {
		t.Errorf("closeAll left %d sessions", n)
	}
	done() // Safe to call again
	if set.len() != 0 {
		t.Errorf("len = %d", set.len())
	}
}

func TestSessionSetTimeout(t *testing.T) {
	set := newSessionSet()
	_, done := set.add(context.Background())
	defer done()

	wait, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if n := set.closeAll(wait); n != 1 {
		t.Errorf("closeAll = %d, expected 1 stuck session", n)
	}
}
