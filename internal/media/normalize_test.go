package media

import "testing"

func TestNormalizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"clip.mp4", "clip.mp4"},
		{"café latte.mp4", "cafe_latte.mp4"},
		{"背景 動画.MOV", "_.MOV"},
		{"ガ.mp4", "_.mp4"},
		{"a  b\tc.png", "a_b_c.png"},
		{"dir/sub\\file.png", "dir_sub_file.png"},
		{"__x__.webm", "_x_.webm"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeFileName(tc.in); got != tc.want {
			t.Fatalf("NormalizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeFileNameIsStable(t *testing.T) {
	for _, in := range []string{"café latte.mp4", "背景 動画.MOV", "x y z"} {
		once := NormalizeFileName(in)
		if twice := NormalizeFileName(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
		for i := 0; i < len(once); i++ {
			if once[i] < 0x20 || once[i] > 0x7e || once[i] == ' ' || once[i] == '/' {
				t.Fatalf("unexpected byte %q in %q", once[i], once)
			}
		}
	}
}

func TestFFmpegArgs(t *testing.T) {
	args := FFmpeg{MaxWidth: 720, BitRate: 2_000_000}.Args("in.mov", "out.mp4")
	want := map[string]string{"-vf": "scale='min(720,iw)':-2", "-b:v": "2000000", "-i": "in.mov"}
	for i := 0; i < len(args)-1; i++ {
		if v, ok := want[args[i]]; ok {
			if args[i+1] != v {
				t.Fatalf("%s = %q, want %q", args[i], args[i+1], v)
			}
			delete(want, args[i])
		}
	}
	if len(want) != 0 {
		t.Fatalf("missing args %v in %v", want, args)
	}
	if args[len(args)-1] != "out.mp4" {
		t.Fatalf("output must be last, got %v", args)
	}
}
