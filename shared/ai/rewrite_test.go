package ai

import "testing"

func TestRewriteBucketName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"first viewpoint", "意見1を支持", "意見 A"},
		{"second viewpoint", "意見2を支持", "意見 B"},
		{"fourth viewpoint", "意見4を支持", "意見 D"},
		{"spaced digits", "意見 3 を支持", "意見 C"},
		{"neutral bucket untouched", "中立/その他", "中立/その他"},
		{"already lettered", "意見 A", "意見 A"},
		{"past the alphabet", "意見27を支持", "意見27を支持"},
		{"zero has no letter", "意見0を支持", "意見0を支持"},
		{"free-form name untouched", "この動画が好き", "この動画が好き"},
		{"empty name untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewriteBucketName(tt.in); got != tt.want {
				t.Errorf("rewriteBucketName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewriteBucketNameIdempotent(t *testing.T) {
	inputs := []string{"意見1を支持", "意見2を支持", "中立/その他", "意見 Z"}
	for _, in := range inputs {
		once := rewriteBucketName(in)
		twice := rewriteBucketName(once)
		if once != twice {
			t.Errorf("rewriteBucketName(%q): second pass changed %q to %q", in, once, twice)
		}
	}
}
