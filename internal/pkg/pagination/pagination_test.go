package pagination

import "testing"

func TestNewResponseMeta(t *testing.T) {
	params := &Params{Page: 2, Limit: 20, Offset: 20}
	resp := NewResponse(nil, params, 45)

	if resp.Meta.TotalPages != 3 {
		t.Fatalf("Expected 3 total pages, got %d", resp.Meta.TotalPages)
	}
	if !resp.Meta.HasNext {
		t.Fatal("Expected has_next on page 2 of 3")
	}
	if !resp.Meta.HasPrev {
		t.Fatal("Expected has_prev on page 2")
	}
}

func TestNewResponseLastPage(t *testing.T) {
	params := &Params{Page: 3, Limit: 20, Offset: 40}
	resp := NewResponse(nil, params, 45)

	if resp.Meta.HasNext {
		t.Fatal("Expected no next page on the last page")
	}
	if resp.Meta.Total != 45 {
		t.Fatalf("Expected total 45, got %d", resp.Meta.Total)
	}
}
