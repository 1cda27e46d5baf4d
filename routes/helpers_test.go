package routes

import (
	"io"
	"strconv"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

type countingReader struct {
	r io.Reader
	n *int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	*c.n += int64(n)
	return n, err
}
