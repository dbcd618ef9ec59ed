package playground

// ByteSource yields raw chunks of a long-running response body on demand.
//
// Next returns the next chunk of bytes, or io.EOF once the source has ended
// naturally. Any other error is a transport failure. The source is owned by
// the caller and borrowed by a decoder for the duration of one decode; it must
// be abortable from outside (typically by cancelling the context its request
// was created with), in which case the pending Next returns an error.
type ByteSource interface {
	Next() ([]byte, error)
}

// ByteSourceFunc adapts a function to [ByteSource].
type ByteSourceFunc func() ([]byte, error)

// Next calls f.
func (f ByteSourceFunc) Next() ([]byte, error) {
	return f()
}
