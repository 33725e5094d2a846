package repository

import (
	"errors"
	"testing"
)

func TestPageOffset(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		want     int
		wantErr  bool
	}{
		{name: "first page", page: 1, pageSize: 10, want: 0},
		{name: "third page", page: 3, pageSize: 10, want: 20},
		{name: "page zero", page: 0, pageSize: 10, wantErr: true},
		{name: "zero page size", page: 1, pageSize: 0, wantErr: true},
		{name: "negative page size", page: 2, pageSize: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageOffset(tt.page, tt.pageSize)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPage) {
					t.Fatalf("expected ErrInvalidPage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected offset %d, got %d", tt.want, got)
			}
		})
	}
}
