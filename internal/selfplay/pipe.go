package selfplay

import (
	"context"
	"errors"
	"sync"

	"wordcircuit/internal/ports"
)

// ErrPipeClosed is returned once either end of a pipe has been closed.
var ErrPipeClosed = errors.New("pipe closed")

type pipeEnd struct {
	in     <-chan []byte
	out    chan<- []byte
	closed chan struct{}
	once   *sync.Once
}

// NewPipe returns the two connected ends of an in-memory snapshot link.
func NewPipe() (ports.SnapshotLink, ports.SnapshotLink) {
	ab := make(chan []byte, 1)
	ba := make(chan []byte, 1)
	closed := make(chan struct{})
	once := &sync.Once{}
	return &pipeEnd{in: ba, out: ab, closed: closed, once: once},
		&pipeEnd{in: ab, out: ba, closed: closed, once: once}
}

func (p *pipeEnd) Send(ctx context.Context, payload []byte) error {
	select {
	case p.out <- append([]byte(nil), payload...):
		return nil
	case <-p.closed:
		return ErrPipeClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeEnd) Receive(ctx context.Context) ([]byte, error) {
	select {
	case data := <-p.in:
		return data, nil
	case <-p.closed:
		return nil, ErrPipeClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipeEnd) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}
