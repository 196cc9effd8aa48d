package model

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, count int
		total              int64
		wantPages          int
	}{
		{"second page of 25", 2, 10, 10, 25, 3},
		{"exact multiple", 1, 10, 10, 20, 2},
		{"empty", 1, 10, 0, 0, 0},
		{"single partial page", 1, 10, 3, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.count, tt.total)
			if p.Total != tt.wantPages {
				t.Errorf("expected total=%d, got %d", tt.wantPages, p.Total)
			}
			if p.Current != tt.page {
				t.Errorf("expected current=%d, got %d", tt.page, p.Current)
			}
			if p.Count != tt.count {
				t.Errorf("expected count=%d, got %d", tt.count, p.Count)
			}
			if p.TotalMessages != tt.total {
				t.Errorf("expected totalMessages=%d, got %d", tt.total, p.TotalMessages)
			}
		})
	}
}
