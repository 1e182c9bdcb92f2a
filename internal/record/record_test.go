// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package record

import (
	"testing"
)

func TestSetPreservesInsertionOrder(t *testing.T) {
	r := New()
	r.Set("zeta", 1).Set("alpha", 2).Set("mid", 3)

	keys := r.Keys()
	want := []string{"zeta", "alpha", "mid"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() returned %d keys, want %d", len(keys), len(want))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], k)
		}
	}
}

func TestSetOverwriteKeepsPosition(t *testing.T) {
	r := New()
	r.Set("a", 1).Set("b", 2).Set("a", 99)

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if keys := r.Keys(); keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v, want [a b]", keys)
	}
	v, ok := r.Get("a")
	if !ok || v != 99 {
		t.Errorf("Get(a) = %v, %v, want 99, true", v, ok)
	}
}

func TestGetMissingField(t *testing.T) {
	r := New()
	r.Set("present", "yes")

	if _, ok := r.Get("absent"); ok {
		t.Error("Get(absent) reported presence for a missing field")
	}
}

func TestMarshalJSONOrder(t *testing.T) {
	tests := []struct {
		name string
		set  func(r *Record)
		want string
	}{
		{
			name: "fields in insertion order",
			set: func(r *Record) {
				r.Set("name", "ada").Set("age", 36).Set("active", true)
			},
			want: `{"name":"ada","age":36,"active":true}`,
		},
		{
			name: "reverse alphabetical stays put",
			set: func(r *Record) {
				r.Set("z", 1).Set("a", 2)
			},
			want: `{"z":1,"a":2}`,
		},
		{
			name: "null and nested values",
			set: func(r *Record) {
				r.Set("note", nil).Set("tags", []string{"x", "y"})
			},
			want: `{"note":null,"tags":["x","y"]}`,
		},
		{
			name: "empty record",
			set:  func(r *Record) {},
			want: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			tt.set(r)
			b, err := r.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", b, tt.want)
			}
		})
	}
}

func TestMarshalJSONUnsupportedValue(t *testing.T) {
	r := New()
	r.Set("ch", make(chan int))

	if _, err := r.MarshalJSON(); err == nil {
		t.Error("expected error for unsupported value type, got none")
	}
}
