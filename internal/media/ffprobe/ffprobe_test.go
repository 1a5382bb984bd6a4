package ffprobe

import "testing"

const sample = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1080, "height": 1920, "bit_rate": "8000000"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio"}
  ],
  "format": {"duration": "12.5", "bit_rate": "8200000", "format_name": "mov,mp4"}
}`

func TestParseAndFits(t *testing.T) {
	result, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, ok := result.Video()
	if !ok || v.Width != 1080 {
		t.Fatalf("unexpected video stream %+v", v)
	}
	if result.VideoBitRate() != 8000000 {
		t.Fatalf("unexpected bitrate %d", result.VideoBitRate())
	}
	if result.Fits(720, 2000000) {
		t.Fatal("1080 wide clip should not fit 720")
	}
	if !result.Fits(1080, 9000000) {
		t.Fatal("expected clip to fit larger bounds")
	}
}

func TestFitsFallsBackToContainerBitrate(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", Width: 640}},
		Format:  Format{BitRate: "1500000"},
	}
	if !result.Fits(720, 2000000) {
		t.Fatal("expected fit using container bitrate")
	}
	result.Format.BitRate = "bad"
	if result.Fits(720, 2000000) {
		t.Fatal("unknown bitrate must not count as fitting")
	}
}

func TestFitsWithoutVideo(t *testing.T) {
	if (Result{}).Fits(720, 0) {
		t.Fatal("audio-only input cannot fit")
	}
}
