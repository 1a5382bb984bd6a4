// Package ffprobe reads the video geometry and bitrate of an upload
// candidate so the transcoder can skip clips that already fit.
package ffprobe
