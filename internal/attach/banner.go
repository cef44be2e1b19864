// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package attach

import (
	"fmt"

	"github.com/muesli/termenv"
)

// banners writes the attacher's short status lines through a
// termenv.Output bound to the given stream, so color only appears when
// the output profile actually supports it (a real terminal) and plain
// text otherwise (redirected to a file, piped to another program).
type banners struct {
	out *termenv.Output
}

func newBanners(out *termenv.Output) banners { return banners{out: out} }

func (b banners) detached() {
	b.line(termenv.ANSIYellow, "[detached]")
}

func (b banners) eof() {
	b.line(termenv.ANSIBlue, "[EOF]")
}

func (b banners) serverFull() {
	b.line(termenv.ANSIRed, "error: server is full")
}

func (b banners) gotSignal(n int) {
	b.line(termenv.ANSIRed, fmt.Sprintf("[got signal %d - dying]", n))
}

func (b banners) line(color termenv.ANSIColor, text string) {
	styled := b.out.String(text).Foreground(color)
	fmt.Fprintf(b.out, "\r\n%s\r\n", styled)
}
