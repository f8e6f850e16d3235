package buffer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	t.Parallel()
	b := New(4, 4, 0)

	require.Equal(t, 6, b.Write([]byte("abcdef")))
	assert.Equal(t, 6, b.InUse())
	assert.GreaterOrEqual(t, b.Len(), 6)

	out := make([]byte, 3)
	require.Equal(t, 3, b.Read(out))
	assert.Equal(t, "abc", string(out))
	assert.Equal(t, 3, b.InUse())

	assert.Equal(t, 1, b.Toss(2))
	assert.Equal(t, 1, b.InUse())

	b.Zero()
	assert.Equal(t, 0, b.InUse())
	assert.Equal(t, 0, b.Read(out))
}

func TestReadIsPrefixOfWrites(t *testing.T) {
	t.Parallel()
	b := New(16, 16, 0)

	var wrote bytes.Buffer
	chunks := [][]byte{
		[]byte("one"), []byte("twotwo"), []byte("three-three"),
		bytes.Repeat([]byte("x"), 300),
	}
	for _, chunk := range chunks {
		require.NotZero(t, b.Write(chunk))
		wrote.Write(chunk)
	}

	var read bytes.Buffer
	tmp := make([]byte, 7)
	for read.Len() < wrote.Len()-5 {
		n := b.Read(tmp)
		require.NotZero(t, n)
		read.Write(tmp[:n])
	}
	assert.Equal(t, wrote.Bytes()[:read.Len()], read.Bytes())
	assert.Equal(t, wrote.Len()-read.Len(), b.InUse())
}

func TestMaxLenEnforced(t *testing.T) {
	t.Parallel()
	b := New(4, 4, 5)

	assert.Equal(t, 0, b.Write([]byte("123456")))
	assert.Equal(t, 0, b.InUse(), "a rejected write must not mutate the buffer")

	require.Equal(t, 5, b.Write([]byte("12345")))
	assert.Equal(t, 0, b.FreeSpace())
	assert.Equal(t, 0, b.Write([]byte("6")))
	assert.Equal(t, 5, b.InUse())
}

func TestZWriteRetriesAfterZero(t *testing.T) {
	t.Parallel()
	b := New(4, 4, 6)
	require.Equal(t, 5, b.Write([]byte("aaaaa")))
	// A plain write of 4 more would blow the cap; ZWrite clears and
	// retries.
	assert.Equal(t, 0, b.Write([]byte("bbbb")))
	assert.Equal(t, 4, b.ZWrite([]byte("bbbb")))
	out := make([]byte, 4)
	require.Equal(t, 4, b.Read(out))
	assert.Equal(t, "bbbb", string(out))
}

func TestSeekRebases(t *testing.T) {
	t.Parallel()
	b := New(0, 0, 0)
	require.NotZero(t, b.Write([]byte("abcdef")))

	out := make([]byte, 2)
	require.Equal(t, 2, b.Read(out))
	require.Equal(t, "ab", string(out))

	assert.Equal(t, 1, b.Seek(1))
	assert.Equal(t, 5, b.InUse())
	require.Equal(t, 2, b.Read(out))
	assert.Equal(t, "bc", string(out))
}

func TestReadLoop(t *testing.T) {
	t.Parallel()
	b := New(0, 0, 0)
	require.NotZero(t, b.Write([]byte("abcd")))
	b.SetLoops(1)

	out := make([]byte, 6)
	n := b.ReadLoop(out)
	assert.Equal(t, 6, n)
	// The wrap rewound to the region start, so the tail of the read
	// came from the front again.
	assert.Equal(t, "abcdab", string(out))

	assert.Equal(t, 0, b.ReadLoop(nil))
}

func TestGrowKeepsContents(t *testing.T) {
	t.Parallel()
	b := New(8, 8, 0)
	first := bytes.Repeat([]byte("a"), 6)
	second := bytes.Repeat([]byte("b"), 100)
	require.NotZero(t, b.Write(first))
	require.NotZero(t, b.Write(second))

	out := make([]byte, 106)
	require.Equal(t, 106, b.Read(out))
	assert.Equal(t, append(append([]byte{}, first...), second...), out)
}

func TestPacketCount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"incomplete", "Content-Type: auth/request\n", 0},
		{"lf", "Content-Type: auth/request\n\n", 1},
		{"crlf", "Content-Type: auth/request\n\r\n", 1},
		{"two", "a: b\n\nc: d\n\n", 2},
		{"trailing partial", "a: b\n\nc: d\n", 1},
		{"cr only", "a: b\n\r", 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := New(0, 0, 0)
			if tt.in != "" {
				require.NotZero(t, b.Write([]byte(tt.in)))
			}
			assert.Equal(t, tt.want, b.PacketCount())
			assert.Equal(t, len(tt.in), b.InUse(), "PacketCount must not consume")
		})
	}
}

func TestReadPacket(t *testing.T) {
	t.Parallel()
	b := New(0, 0, 0)
	require.NotZero(t, b.Write([]byte("Reply-Text: +OK\n\nEvent-Name: HEARTBEAT\n\r\n")))

	out := make([]byte, 256)
	n := b.ReadPacket(out)
	assert.Equal(t, "Reply-Text: +OK\n\n", string(out[:n]))

	n = b.ReadPacket(out)
	assert.Equal(t, "Event-Name: HEARTBEAT\n\r\n", string(out[:n]))

	assert.Equal(t, 0, b.ReadPacket(out), "no complete packet left")
	assert.Equal(t, 0, b.PacketCount())
}

func TestReadPacketTruncates(t *testing.T) {
	t.Parallel()
	b := New(0, 0, 0)
	require.NotZero(t, b.Write([]byte("abcdef\n\n")))
	out := make([]byte, 4)
	assert.Equal(t, 4, b.ReadPacket(out))
	assert.Equal(t, "abcd", string(out))
}
