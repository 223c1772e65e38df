package rules

import "testing"

func TestAbsolutePhotoRef(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want bool
	}{
		{name: "storage key", ref: "users/7/photos/a.jpg", want: false},
		{name: "bare filename", ref: "a.jpg", want: false},
		{name: "https url", ref: "https://img.example.com/a.jpg", want: true},
		{name: "http url", ref: "http://img.example.com/a.jpg", want: true},
		{name: "empty", ref: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := AbsolutePhotoRef(tc.ref); got != tc.want {
				t.Fatalf("AbsolutePhotoRef(%q) = %v, want %v", tc.ref, got, tc.want)
			}
		})
	}
}
