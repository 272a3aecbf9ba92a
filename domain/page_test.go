package domain

import "testing"

func TestPageNavigationClamping(t *testing.T) {
	tests := []struct {
		name       string
		number     int
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{"single page", 0, 1, false, false},
		{"first of three", 0, 3, true, false},
		{"middle of three", 1, 3, true, true},
		{"last of three", 2, 3, false, true},
		{"empty collection", 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Page[Post]{Number: tt.number, TotalPages: tt.totalPages}
			if got := p.HasNext(); got != tt.hasNext {
				t.Errorf("HasNext() = %v, want %v", got, tt.hasNext)
			}
			if got := p.HasPrev(); got != tt.hasPrev {
				t.Errorf("HasPrev() = %v, want %v", got, tt.hasPrev)
			}
		})
	}
}

func TestEmptyPage(t *testing.T) {
	p := EmptyPage[Post](0, 10)

	if len(p.Content) != 0 {
		t.Errorf("Expected empty content, got %v", p.Content)
	}
	if !p.First || !p.Last {
		t.Error("Expected an empty first page to be both first and last")
	}
	if p.HasNext() || p.HasPrev() {
		t.Error("Expected no navigation on an empty page")
	}
}
