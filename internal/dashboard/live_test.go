package dashboard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiveAppendMode(t *testing.T) {
	var buf bytes.Buffer
	live := NewLive(&buf, false)

	live.Update("frame one")
	_, err := live.Write([]byte("log line\n"))
	assert.NoError(t, err)
	live.Update("frame two\n")
	live.Stop()

	assert.Equal(t, "frame one\nlog line\nframe two\n", buf.String())
}

func TestLiveInPlaceRedraw(t *testing.T) {
	var buf bytes.Buffer
	live := NewLive(&buf, true)

	live.Update("a\nb")
	first := buf.Len()
	live.Update("c")

	second := buf.String()[first:]
	assert.Contains(t, second, "\x1b[2K", "previous frame is erased")
	assert.Contains(t, second, "\x1b[1A", "cursor moves back up over the frame")
	assert.True(t, strings.HasSuffix(second, "c\n"))
}

func TestLiveWriteKeepsFrameBelow(t *testing.T) {
	var buf bytes.Buffer
	live := NewLive(&buf, true)

	live.Update("frame")
	_, _ = live.Write([]byte("warning\n"))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "warning\nframe\n"))

	live.Stop()
	stopped := buf.Len()
	_, _ = live.Write([]byte("after\n"))

	tail := buf.String()[stopped:]
	assert.Equal(t, "after\n", tail, "a stopped region is neither cleared nor redrawn")
}
