package service

import "encoding/binary"

const (
	wavSampleRate    = 24000
	wavChannels      = 1
	wavBitsPerSample = 16
)

// WrapPCM 给裸 PCM 采样流（24kHz 单声道 16bit）套上 44 字节 WAV 头。
// 字节级约定：总长 = N+44，偏移 4 处写 N+36，偏移 40 处写 N。
func WrapPCM(samples []byte) []byte {
	n := uint32(len(samples))
	byteRate := uint32(wavSampleRate * wavChannels * wavBitsPerSample / 8)
	blockAlign := uint16(wavChannels * wavBitsPerSample / 8)

	out := make([]byte, 44+len(samples))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], n+36)
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], wavChannels)
	binary.LittleEndian.PutUint32(out[24:28], wavSampleRate)
	binary.LittleEndian.PutUint32(out[28:32], byteRate)
	binary.LittleEndian.PutUint16(out[32:34], blockAlign)
	binary.LittleEndian.PutUint16(out[34:36], wavBitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], n)
	copy(out[44:], samples)
	return out
}
