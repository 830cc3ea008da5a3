package bplus

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	// PageSize is the unit of allocation and I/O.
	PageSize = 4096

	// MaxPages bounds the flat page cache. There is no eviction: a working
	// set beyond this is a hard error.
	MaxPages = 4096
)

// Pager owns the database file and a flat array of page slots, one per page
// number. Pages load lazily on first touch and are written back only by
// Close (or an explicit Flush).
type Pager struct {
	file       *os.File
	fileLength int64
	numPages   uint32
	pages      [MaxPages][]byte
}

// OpenPager opens the file read/write, creating it if missing. The file
// length must be a whole number of pages.
func OpenPager(path string) (*Pager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %s", path)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "stat db file")
	}
	if stat.Size()%PageSize != 0 {
		file.Close()
		return nil, errors.Errorf("db file is not a whole number of pages: corrupt file")
	}
	return &Pager{
		file:       file,
		fileLength: stat.Size(),
		numPages:   uint32(stat.Size() / PageSize),
	}, nil
}

// GetPage returns the in-memory buffer for page n, loading it from disk on
// first access. Touching a page at or past the current page count reserves
// it: numPages becomes n+1.
func (p *Pager) GetPage(n uint32) ([]byte, error) {
	if n >= MaxPages {
		return nil, errors.Errorf("tried to fetch page number out of bounds: %d >= %d", n, MaxPages)
	}
	if p.pages[n] == nil {
		page := make([]byte, PageSize)
		filePages := uint32(p.fileLength / PageSize)
		if p.fileLength%PageSize != 0 {
			filePages++
		}
		if n <= filePages {
			// Short reads are fine: bytes past EOF stay zero.
			if _, err := p.file.ReadAt(page, int64(n)*PageSize); err != nil && err != io.EOF {
				return nil, errors.Wrapf(err, "error reading page %d", n)
			}
		}
		p.pages[n] = page
		if n >= p.numPages {
			p.numPages = n + 1
		}
	}
	return p.pages[n], nil
}

// Flush writes page n back to disk. Flushing an unallocated slot is an
// invariant violation.
func (p *Pager) Flush(n uint32) error {
	if n >= MaxPages || p.pages[n] == nil {
		return errors.Errorf("tried to flush null page %d", n)
	}
	if _, err := p.file.WriteAt(p.pages[n], int64(n)*PageSize); err != nil {
		return errors.Wrapf(err, "error writing page %d", n)
	}
	return nil
}

// Close flushes every populated slot in [0, numPages) and closes the file.
func (p *Pager) Close() error {
	for i := uint32(0); i < p.numPages; i++ {
		if p.pages[i] == nil {
			continue
		}
		if err := p.Flush(i); err != nil {
			p.file.Close()
			return err
		}
		p.pages[i] = nil
	}
	if err := p.file.Close(); err != nil {
		return errors.Wrap(err, "error closing db file")
	}
	return nil
}

// UnusedPageNum returns the next never-used page number. Because GetPage
// allocates on touch, GetPage(UnusedPageNum()) reserves a new page. Merged-
// away pages are never recycled; there is no free list.
func (p *Pager) UnusedPageNum() uint32 {
	return p.numPages
}

// NumPages returns the current page count, including unflushed pages.
func (p *Pager) NumPages() uint32 {
	return p.numPages
}
