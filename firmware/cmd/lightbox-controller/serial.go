package main

import (
	"io"
	"machine"
	"runtime"
	"time"
)

// port adapts a machine.Serialer to an io.ReadWriter for the packet codec.
type port struct {
	s machine.Serialer
}

var _ io.ReadWriter = port{}

// Read reads whatever is buffered, up to len(b). With nothing buffered it
// sleeps for a millisecond and returns 0, which io.ReadFull retries.
func (p port) Read(b []byte) (int, error) {
	n := min(p.s.Buffered(), len(b))
	if n == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}

	for i := range b[:n] {
		c, err := p.s.ReadByte()
		if err != nil {
			return i, err
		}
		b[i] = c
	}

	runtime.Gosched()
	return n, nil
}

func (p port) Write(b []byte) (int, error) {
	n, err := p.s.Write(b)
	runtime.Gosched()
	return n, err
}
