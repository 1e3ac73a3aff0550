package export

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/mwantia/modexport/data"
	"github.com/ulikunitz/xz/lzma"
)

// Zip method ids that archive/zip style packages do not define.
const (
	methodBzip2 uint16 = 12
	methodLZMA  uint16 = 14
)

// Zip general purpose flag telling readers an LZMA stream ends with an EOS marker.
const flagLZMAEOS uint16 = 0x2

const defaultBzip2Level = 6

// normalizeLevel returns the level used for codec, with ok=false when level
// was out of range and the codec default was substituted.
// Codecs without levels ignore level entirely.
func normalizeLevel(codec data.Codec, level int) (int, bool) {
	lo, hi, ranged := codec.LevelRange()
	if !ranged {
		return DefaultLevel, true
	}

	if level == DefaultLevel {
		if codec == data.CodecBzip2 {
			return defaultBzip2Level, true
		}
		return DefaultLevel, true
	}

	if level < lo || level > hi {
		if codec == data.CodecBzip2 {
			return defaultBzip2Level, false
		}
		return DefaultLevel, false
	}

	return level, true
}

// compressorFunc wraps out with the compressor of one codec.
type compressorFunc func(out io.Writer) (io.WriteCloser, error)

// newCompressor returns the compressor for codec at level.
func newCompressor(codec data.Codec, level int) compressorFunc {
	switch codec {
	case data.CodecDeflate:
		return func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		}
	case data.CodecBzip2:
		return func(out io.Writer) (io.WriteCloser, error) {
			return bzip2.NewWriter(out, &bzip2.WriterConfig{Level: level})
		}
	case data.CodecLZMA:
		return newLZMAWriter
	default:
		return func(out io.Writer) (io.WriteCloser, error) {
			return nopWriteCloser{out}, nil
		}
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// readerVersion returns the zip version needed to extract members of codec.
func readerVersion(codec data.Codec) uint16 {
	switch codec {
	case data.CodecBzip2:
		return 46
	case data.CodecLZMA:
		return 63
	default:
		return 20
	}
}

// registerDecompressors installs readers for every supported codec on r.
func registerDecompressors(r *zip.Reader) {
	r.RegisterDecompressor(zip.Deflate, func(in io.Reader) io.ReadCloser {
		return flate.NewReader(in)
	})
	r.RegisterDecompressor(methodBzip2, func(in io.Reader) io.ReadCloser {
		br, err := bzip2.NewReader(in, nil)
		if err != nil {
			return errorReader{err}
		}
		return br
	})
	r.RegisterDecompressor(methodLZMA, newLZMAReader)
}

// newLZMAWriter writes the zip flavour of an LZMA stream: a four byte
// version and properties size header, the five properties bytes and the raw
// stream. The classic header written by lzma carries an additional eight
// byte size field, which is dropped on the way out.
func newLZMAWriter(out io.Writer) (io.WriteCloser, error) {
	config := lzma.WriterConfig{
		EOSMarker: true,
	}

	return config.NewWriter(&sizeFieldStripper{w: out})
}

// Version 9.4 of the LZMA SDK and the little endian properties size
var lzmaZipPrefix = []byte{9, 4, 5, 0}

// sizeFieldStripper prepends the zip LZMA prefix on the first write and
// forwards everything except bytes 5 to 12 of the stream.
type sizeFieldStripper struct {
	w   io.Writer
	pos int64
}

const (
	lzmaPropsLen  = 5
	lzmaHeaderLen = 13
)

func (s *sizeFieldStripper) Write(p []byte) (int, error) {
	n := len(p)
	if s.pos == 0 && n > 0 {
		if _, err := s.w.Write(lzmaZipPrefix); err != nil {
			return 0, err
		}
	}

	for len(p) > 0 {
		switch {
		case s.pos < lzmaPropsLen:
			k := min(int64(len(p)), lzmaPropsLen-s.pos)
			if _, err := s.w.Write(p[:k]); err != nil {
				return 0, err
			}
			s.pos += k
			p = p[k:]
		case s.pos < lzmaHeaderLen:
			k := min(int64(len(p)), lzmaHeaderLen-s.pos)
			s.pos += k
			p = p[k:]
		default:
			if _, err := s.w.Write(p); err != nil {
				return 0, err
			}
			s.pos += int64(len(p))
			p = nil
		}
	}

	return n, nil
}

// newLZMAReader restores the classic header with an unknown size so the
// stream can be decoded up to its EOS marker.
func newLZMAReader(in io.Reader) io.ReadCloser {
	var prefix [4]byte
	if _, err := io.ReadFull(in, prefix[:]); err != nil {
		return errorReader{fmt.Errorf("lzma header: %w", err)}
	}

	propsLen := binary.LittleEndian.Uint16(prefix[2:])
	if propsLen != lzmaPropsLen {
		return errorReader{fmt.Errorf("lzma header: unexpected properties size %d", propsLen)}
	}

	header := make([]byte, lzmaHeaderLen)
	if _, err := io.ReadFull(in, header[:lzmaPropsLen]); err != nil {
		return errorReader{fmt.Errorf("lzma header: %w", err)}
	}
	for i := lzmaPropsLen; i < lzmaHeaderLen; i++ {
		header[i] = 0xff
	}

	lr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(header), in))
	if err != nil {
		return errorReader{err}
	}

	return io.NopCloser(lr)
}

type errorReader struct {
	err error
}

func (e errorReader) Read([]byte) (int, error) {
	return 0, e.err
}

func (e errorReader) Close() error {
	return nil
}
