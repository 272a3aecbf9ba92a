package domain

// Page is the pagination envelope the backend wraps collections in.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalPages    int  `json:"totalPages"`
	TotalElements int  `json:"totalElements"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

// EmptyPage returns the envelope for a collection nothing has been
// fetched into yet.
func EmptyPage[T any](number, size int) Page[T] {
	return Page[T]{
		Content: []T{},
		Number:  number,
		Size:    size,
		First:   number == 0,
		Last:    true,
	}
}

func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

func (p Page[T]) HasPrev() bool {
	return p.Number > 0
}
