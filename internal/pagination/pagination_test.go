package pagination

import "testing"

func TestDefaultsAndOffset(t *testing.T) {
	p := PageRequest{}
	p.Defaults()
	if p.Page != 1 || p.PageSize != DefaultPageSize {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset())
	}

	p = PageRequest{Page: 3, PageSize: 25}
	if p.Offset() != 50 {
		t.Errorf("expected offset 50, got %d", p.Offset())
	}

	p = PageRequest{Page: -2, PageSize: 500}
	p.Defaults()
	if p.Page != 1 || p.PageSize != MaxPageSize {
		t.Errorf("expected clamped request, got %+v", p)
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[string](nil, 1, 20, 41)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
	if resp.Data == nil {
		t.Error("expected empty slice, got nil")
	}
	if !resp.HasNext {
		t.Error("expected a next page")
	}

	last := NewPageResponse([]string{"a"}, 3, 20, 41)
	if last.HasNext {
		t.Error("expected no page after the last")
	}

	empty := NewPageResponse[string](nil, 1, 20, 0)
	if empty.TotalPages != 0 || empty.HasNext {
		t.Errorf("unexpected empty response %+v", empty)
	}
}
