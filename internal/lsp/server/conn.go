package server

import (
	"context"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"
)

// RWC joins a reader and a writer into the stream the JSON-RPC connection
// runs on.
type RWC struct {
	r io.ReadCloser
	w io.WriteCloser
}

// NewStdRWC creates a new RWC using standard input/output
func NewStdRWC() *RWC {
	return &RWC{
		r: os.Stdin,
		w: os.Stdout,
	}
}

// NewRWC creates a new RWC with custom reader and writer
func NewRWC(r io.ReadCloser, w io.WriteCloser) *RWC {
	return &RWC{
		r: r,
		w: w,
	}
}

func (rw *RWC) Read(p []byte) (int, error)  { return rw.r.Read(p) }
func (rw *RWC) Write(p []byte) (int, error) { return rw.w.Write(p) }
func (rw *RWC) Close() error {
	rerr := rw.r.Close()
	werr := rw.w.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

// Serve answers LSP requests on rw until the client disconnects or sends exit.
func (s *Server) Serve(ctx context.Context, rw io.ReadWriteCloser) {
	conn := jsonrpc2.NewConn(
		ctx,
		jsonrpc2.NewBufferedStream(rw, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(s.Handle),
	)

	select {
	case <-ctx.Done():
		conn.Close()
	case <-conn.DisconnectNotify():
	}
}
