// Package audio 解码 Sun/NeXT .au 音效
//
// ebiten 的音频上下文只接受 16 位小端立体声 PCM，本包把 .au 文件（μ-law 或 16 位 PCM，
// 单声道或立体声）统一转换为这种格式。采样率保持原样，由调用方按需重采样。
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrNotAU 文件头不是 ".snd"
var ErrNotAU = errors.New("not a Sun .au file")

// header .au 文件头（大端，至少 24 字节）
type header struct {
	Magic      uint32
	DataOffset uint32
	DataSize   uint32 // 0xFFFFFFFF 表示未知
	Encoding   uint32
	SampleRate uint32
	Channels   uint32
}

const (
	headerSize      = 24
	magic           = 0x2e736e64 // ".snd"
	encodingULaw    = 1          // 8 位 μ-law
	encodingPCM16   = 3          // 16 位线性 PCM（大端）
	unknownDataSize = 0xFFFFFFFF
)

// μ-law → 16 位 PCM 查找表
var mulawTable = [256]int16{
	-32124, -31100, -30076, -29052, -28028, -27004, -25980, -24956,
	-23932, -22908, -21884, -20860, -19836, -18812, -17788, -16764,
	-15996, -15484, -14972, -14460, -13948, -13436, -12924, -12412,
	-11900, -11388, -10876, -10364, -9852, -9340, -8828, -8316,
	-7932, -7676, -7420, -7164, -6908, -6652, -6396, -6140,
	-5884, -5628, -5372, -5116, -4860, -4604, -4348, -4092,
	-3900, -3772, -3644, -3516, -3388, -3260, -3132, -3004,
	-2876, -2748, -2620, -2492, -2364, -2236, -2108, -1980,
	-1884, -1820, -1756, -1692, -1628, -1564, -1500, -1436,
	-1372, -1308, -1244, -1180, -1116, -1052, -988, -924,
	-876, -844, -812, -780, -748, -716, -684, -652,
	-620, -588, -556, -524, -492, -460, -428, -396,
	-372, -356, -340, -324, -308, -292, -276, -260,
	-244, -228, -212, -196, -180, -164, -148, -132,
	-120, -112, -104, -96, -88, -80, -72, -64,
	-56, -48, -40, -32, -24, -16, -8, 0,
	32124, 31100, 30076, 29052, 28028, 27004, 25980, 24956,
	23932, 22908, 21884, 20860, 19836, 18812, 17788, 16764,
	15996, 15484, 14972, 14460, 13948, 13436, 12924, 12412,
	11900, 11388, 10876, 10364, 9852, 9340, 8828, 8316,
	7932, 7676, 7420, 7164, 6908, 6652, 6396, 6140,
	5884, 5628, 5372, 5116, 4860, 4604, 4348, 4092,
	3900, 3772, 3644, 3516, 3388, 3260, 3132, 3004,
	2876, 2748, 2620, 2492, 2364, 2236, 2108, 1980,
	1884, 1820, 1756, 1692, 1628, 1564, 1500, 1436,
	1372, 1308, 1244, 1180, 1116, 1052, 988, 924,
	876, 844, 812, 780, 748, 716, 684, 652,
	620, 588, 556, 524, 492, 460, 428, 396,
	372, 356, 340, 324, 308, 292, 276, 260,
	244, 228, 212, 196, 180, 164, 148, 132,
	120, 112, 104, 96, 88, 80, 72, 64,
	56, 48, 40, 32, 24, 16, 8, 0,
}

// Stream 解码后的立体声 PCM 流，实现 io.ReadSeeker
type Stream struct {
	*bytes.Reader
	sampleRate int
	length     int64
}

// SampleRate 原始采样率（Hz）
func (s *Stream) SampleRate() int {
	return s.sampleRate
}

// Length PCM 总字节数
func (s *Stream) Length() int64 {
	return s.length
}

// DecodeAU 解码 .au 文件为 16 位小端立体声 PCM
func DecodeAU(r io.Reader) (*Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read AU data: %w", err)
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrNotAU, len(data))
	}

	var h header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("failed to read AU header: %w", err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: magic 0x%08x", ErrNotAU, h.Magic)
	}
	if h.Channels < 1 || h.Channels > 2 {
		return nil, fmt.Errorf("unsupported AU channel count: %d", h.Channels)
	}
	if h.SampleRate == 0 {
		return nil, fmt.Errorf("invalid AU sample rate: 0")
	}
	if h.DataOffset < headerSize || int(h.DataOffset) > len(data) {
		return nil, fmt.Errorf("invalid AU data offset: %d (file size %d)", h.DataOffset, len(data))
	}

	payload := data[h.DataOffset:]
	if h.DataSize != unknownDataSize && int(h.DataSize) < len(payload) {
		payload = payload[:h.DataSize]
	}

	var samples []int16
	switch h.Encoding {
	case encodingULaw:
		samples = make([]int16, len(payload))
		for i, b := range payload {
			samples[i] = mulawTable[b]
		}
	case encodingPCM16:
		samples = make([]int16, len(payload)/2)
		for i := range samples {
			samples[i] = int16(binary.BigEndian.Uint16(payload[i*2:]))
		}
	default:
		return nil, fmt.Errorf("unsupported AU encoding: %d (supported: 1 μ-law, 3 PCM16)", h.Encoding)
	}

	pcm := toStereo(samples, int(h.Channels))
	return &Stream{
		Reader:     bytes.NewReader(pcm),
		sampleRate: int(h.SampleRate),
		length:     int64(len(pcm)),
	}, nil
}

// toStereo 交错样本转为 16 位小端立体声；单声道复制到左右声道
func toStereo(samples []int16, channels int) []byte {
	frames := len(samples) / channels
	out := make([]byte, frames*4)
	for i := 0; i < frames; i++ {
		left := samples[i*channels]
		right := left
		if channels == 2 {
			right = samples[i*channels+1]
		}
		binary.LittleEndian.PutUint16(out[i*4:], uint16(left))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(right))
	}
	return out
}
