package services

const (
	// DefaultPageSize is the number of objects shown when no size is requested.
	DefaultPageSize = 10
	// MaxPageSize bounds the size a visitor may request.
	MaxPageSize = 1000
)

// Page is one slice of a full listing.
type Page[T any] struct {
	Number     int
	Size       int
	TotalItems int
	TotalPages int
	Items      []T
}

// Paginate slices items into the 1-based page of the given size. A page past
// the end is empty, never an error. Callers guarantee page >= 1 and size >= 1.
func Paginate[T any](items []T, page, size int) Page[T] {
	count := len(items)
	p := Page[T]{
		Number:     page,
		Size:       size,
		TotalItems: count,
		TotalPages: (count + size - 1) / size,
		Items:      []T{},
	}

	if page > p.TotalPages {
		return p
	}
	start := (page - 1) * size
	end := min(start+size, count)
	p.Items = items[start:end]
	return p
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// PrevPage is the number of the page before this one.
func (p Page[T]) PrevPage() int { return p.Number - 1 }

// NextPage is the number of the page after this one.
func (p Page[T]) NextPage() int { return p.Number + 1 }
