//go:build !cgo

package patternstore

// NewKuzuFileStore is unavailable without cgo.
func NewKuzuFileStore(string) (Store, error) {
	return nil, ErrKuzuUnavailable
}
