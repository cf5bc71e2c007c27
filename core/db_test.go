package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name string
		ords []DBOrdering
		want string
	}{
		{name: "no terms", want: ""},
		{
			name: "single ascending",
			ords: []DBOrdering{{Field: "sent_at", Ascending: true}},
			want: " ORDER BY sent_at ASC",
		},
		{
			name: "descending default",
			ords: []DBOrdering{{Field: "created_at"}},
			want: " ORDER BY created_at DESC",
		},
		{
			name: "multiple terms",
			ords: []DBOrdering{
				{Field: "last_name", Ascending: true},
				{Field: "first_name", Ascending: true},
			},
			want: " ORDER BY last_name ASC, first_name ASC",
		},
		{
			name: "raw expression field",
			ords: []DBOrdering{{Field: "CASE role WHEN 'coordinator' THEN 0 ELSE 1 END", Ascending: true}},
			want: " ORDER BY CASE role WHEN 'coordinator' THEN 0 ELSE 1 END ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderBy(tt.ords...))
		})
	}
}
