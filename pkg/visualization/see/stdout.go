package see

import (
	"fmt"
)

// StdoutPublisher prints each frame as one JSON line, for piping into a
// local frontend.
type StdoutPublisher struct {
}

// Publish implements Publisher.
func (p *StdoutPublisher) Publish(frame []byte) error {
	fmt.Println(string(frame))
	return nil
}
