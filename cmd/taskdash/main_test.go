package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectProjectLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"taskdash"},
			want: []string{"taskdash"},
		},
		{
			name: "direct project id first token",
			in:   []string{"taskdash", "42"},
			want: []string{"taskdash", "projects", "show", "42"},
		},
		{
			name: "direct project id after value flag",
			in:   []string{"taskdash", "--base-url", "http://127.0.0.1:4000", "42"},
			want: []string{"taskdash", "--base-url", "http://127.0.0.1:4000", "projects", "show", "42"},
		},
		{
			name: "direct project id after equals flag",
			in:   []string{"taskdash", "--format=table", "42"},
			want: []string{"taskdash", "--format=table", "projects", "show", "42"},
		},
		{
			name: "direct project id after bool flags",
			in:   []string{"taskdash", "--pretty", "-v", "42"},
			want: []string{"taskdash", "--pretty", "-v", "projects", "show", "42"},
		},
		{
			name: "direct project id after double dash",
			in:   []string{"taskdash", "--config", "./c.yaml", "--", "42"},
			want: []string{"taskdash", "--config", "./c.yaml", "--", "projects", "show", "42"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"taskdash", "projects", "show", "42"},
			want: []string{"taskdash", "projects", "show", "42"},
		},
		{
			name: "non-positive id not rewritten",
			in:   []string{"taskdash", "0"},
			want: []string{"taskdash", "0"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"taskdash", "wat"},
			want: []string{"taskdash", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectProjectLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectProjectLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
