package http

import "io"

// progressReader counts bytes as the transport drains the request body
// and reports integer percent steps to the callback.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	callback func(percent int)
}

func newProgressReader(r io.Reader, total int64, callback func(int)) *progressReader {
	return &progressReader{r: r, total: total, last: -1, callback: callback}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)

	percent := 100
	if p.total > 0 {
		percent = int(p.read * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
	}

	if percent != p.last {
		p.last = percent
		p.callback(percent)
	}

	return n, err
}
