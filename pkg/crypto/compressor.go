package crypto

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

// ZstdCompressor implements envelope.Compressor over zstd (SPEC_FULL.md
// §11, §13): chosen over stdlib compress/flate for its self-describing
// frame format and better ratio/speed, and because it is the compression
// library the wider retrieval pack's backup/storage tooling already
// depends on.
//
// The encoder and decoder are expensive to construct and safe for
// concurrent use, so one of each is built lazily and reused across calls
// rather than per-call, mirroring the teacher's one-shot-initializer
// idiom used elsewhere for process-wide read-mostly state.
type ZstdCompressor struct {
	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error

	decOnce sync.Once
	dec     *zstd.Decoder
	decErr  error
}

// NewZstdCompressor returns a ready-to-use ZstdCompressor.
func NewZstdCompressor() *ZstdCompressor {
	return &ZstdCompressor{}
}

func (z *ZstdCompressor) encoder() (*zstd.Encoder, error) {
	z.encOnce.Do(func() {
		z.enc, z.encErr = zstd.NewWriter(nil)
	})
	return z.enc, z.encErr
}

func (z *ZstdCompressor) decoder() (*zstd.Decoder, error) {
	z.decOnce.Do(func() {
		z.dec, z.decErr = zstd.NewReader(nil)
	})
	return z.dec, z.decErr
}

// Compress implements envelope.Compressor.
func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	enc, err := z.encoder()
	if err != nil {
		return nil, fmt.Errorf("crypto: building zstd encoder: %w", err)
	}
	return enc.EncodeAll(data, nil), nil
}

// Decompress implements envelope.Compressor.
func (z *ZstdCompressor) Decompress(blob []byte) ([]byte, error) {
	dec, err := z.decoder()
	if err != nil {
		return nil, fmt.Errorf("crypto: building zstd decoder: %w", err)
	}
	out, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("crypto: zstd decode: %w", err)
	}
	return out, nil
}

var _ envelope.Compressor = (*ZstdCompressor)(nil)
