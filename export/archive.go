package export

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/log"
)

// Archive writes the files of a plan into a single zip archive.
type Archive struct {
	codec    data.Codec
	level    int
	compress compressorFunc
	progress ProgressFunc
	logger   *log.Logger
}

func NewArchive(opts ...EngineOption) (*Archive, error) {
	options, err := applyEngineOptions(opts)
	if err != nil {
		return nil, err
	}

	logger := options.Logger.Named("archive")

	level, ok := normalizeLevel(options.Codec, options.Level)
	if !ok {
		lo, hi, _ := options.Codec.LevelRange()
		logger.Warn("Compression level %d is outside %d..%d for %s, using the default",
			options.Level, lo, hi, options.Codec)
	}

	return &Archive{
		codec:    options.Codec,
		level:    level,
		compress: newCompressor(options.Codec, level),
		progress: options.Progress,
		logger:   logger,
	}, nil
}

func (a *Archive) Codec() data.Codec {
	return a.codec
}

// Level returns the effective compression level, DefaultLevel for codec defaults.
func (a *Archive) Level() int {
	return a.level
}

// Execute writes every file entry of plan into targetFile, replacing any
// existing file. Directory entries only count as done, since member paths
// already imply their directories.
//
// The archive is finalized on every exit path, so a cancelled or failed run
// still leaves a readable archive holding the entries written so far.
// Members are compressed into a spool next to targetFile first and only
// added once complete, a failing source never leaves a partial member.
// An empty plan does not create targetFile.
func (a *Archive) Execute(ctx context.Context, plan *data.Plan, targetFile string) (outcome *data.Outcome, err error) {
	outcome = data.NewOutcome(plan)
	if plan.Empty() {
		a.logger.Debug("Nothing to export into '%s'", targetFile)
		return outcome, nil
	}

	if err := os.MkdirAll(filepath.Dir(targetFile), 0o755); err != nil {
		outcome.Status = data.StatusFailed
		return outcome, a.exportError("mkdir", targetFile, outcome, filesystemError(err))
	}

	spool, err := newSpool(filepath.Dir(targetFile))
	if err != nil {
		outcome.Status = data.StatusFailed
		return outcome, a.exportError("spool", targetFile, outcome, filesystemError(err))
	}

	file, err := os.Create(targetFile)
	if err != nil {
		if removeErr := spool.remove(); removeErr != nil {
			a.logger.Warn("Failed to remove spool: %v", removeErr)
		}
		outcome.Status = data.StatusFailed
		return outcome, a.exportError("create", targetFile, outcome, filesystemError(err))
	}

	writer := zip.NewWriter(file)

	defer func() {
		errs := &data.Errors{}
		errs.Add(writer.Close())
		errs.Add(file.Close())
		errs.Add(spool.remove())

		if closeErr := errs.Errors(); closeErr != nil {
			if err == nil {
				outcome.Status = data.StatusFailed
				err = a.exportError("finalize", targetFile, outcome, fmt.Errorf("%w: %w", data.ErrArchiveWrite, closeErr))
				return
			}
			a.logger.Error("Failed to finalize '%s': %v", targetFile, closeErr)
		}
	}()

	for _, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			outcome.Status = data.StatusAborted
			a.logger.Info("Export into '%s' cancelled after %d of %d entries", targetFile, outcome.Done, outcome.Total)
			return outcome, nil
		}

		if entry.Action == data.ActionWriteFile {
			n, err := a.writeEntry(writer, spool, entry)
			if err != nil {
				outcome.Status = data.StatusFailed
				return outcome, a.exportError("write", entry.Path, outcome, err)
			}

			outcome.Written++
			outcome.Bytes += uint64(n)
			a.logger.Debug("Added '%s' from '%s'", entry.Path, entry.Source)
		}

		outcome.Done++
		if a.progress != nil {
			a.progress(outcome.Done, outcome.Total, entry)
		}
	}

	return outcome, nil
}

func (a *Archive) writeEntry(writer *zip.Writer, spool *spool, entry data.PlanEntry) (int64, error) {
	src, err := os.Open(entry.Source)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", data.ErrArchiveWrite, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", data.ErrArchiveWrite, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: '%s' is not a regular file", data.ErrArchiveWrite, entry.Source)
	}

	return a.addMember(writer, spool, a.newHeader(entry.Path, info), src)
}

// addMember compresses src into spool and copies the finished member into
// writer. Nothing reaches writer unless src was read to its end.
func (a *Archive) addMember(writer *zip.Writer, spool *spool, header *zip.FileHeader, src io.Reader) (int64, error) {
	if err := spool.reset(); err != nil {
		return 0, fmt.Errorf("%w: %w", data.ErrArchiveWrite, err)
	}

	compressor, err := a.compress(spool.file)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", data.ErrArchiveWrite, err)
	}

	checksum := crc32.NewIEEE()
	n, err := io.Copy(compressor, io.TeeReader(src, checksum))
	if err != nil {
		compressor.Close()
		return n, fmt.Errorf("%w: %w", data.ErrArchiveWrite, err)
	}
	if err := compressor.Close(); err != nil {
		return n, fmt.Errorf("%w: %w", data.ErrArchiveWrite, err)
	}

	size, err := spool.rewind()
	if err != nil {
		return n, fmt.Errorf("%w: %w", data.ErrArchiveWrite, err)
	}

	header.CRC32 = checksum.Sum32()
	header.CompressedSize64 = uint64(size)
	header.UncompressedSize64 = uint64(n)

	member, err := writer.CreateRaw(header)
	if err != nil {
		return n, fmt.Errorf("%w: %w", data.ErrArchiveWrite, err)
	}
	if _, err := io.Copy(member, io.LimitReader(spool.file, size)); err != nil {
		return n, fmt.Errorf("%w: %w", data.ErrArchiveWrite, err)
	}

	return n, nil
}

// newHeader fills in everything zip.Writer.CreateHeader would derive, since
// raw members are written as given.
func (a *Archive) newHeader(name string, info fs.FileInfo) *zip.FileHeader {
	header := &zip.FileHeader{
		Name:          name,
		Method:        a.codec.Method(),
		ReaderVersion: readerVersion(a.codec),
		Modified:      info.ModTime(),
	}

	header.SetMode(info.Mode())
	header.CreatorVersion = header.CreatorVersion&0xff00 | header.ReaderVersion

	if a.codec == data.CodecLZMA {
		header.Flags |= flagLZMAEOS
	}
	if requiresUTF8(name) {
		header.Flags |= flagUTF8
	}

	header.ModifiedDate, header.ModifiedTime = msDosTime(header.Modified)
	header.Extra = appendExtendedTime(header.Extra, header.Modified)

	return header
}

// Zip general purpose flag marking member names as UTF-8
const flagUTF8 uint16 = 0x800

// Zip extra field id of the extended timestamp block
const extendedTimeID uint16 = 0x5455

func requiresUTF8(name string) bool {
	for _, r := range name {
		if r >= utf8.RuneSelf {
			return utf8.ValidString(name)
		}
	}
	return false
}

func msDosTime(t time.Time) (date, clock uint16) {
	if t.Year() < 1980 {
		t = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	date = uint16(t.Day() + int(t.Month())<<5 + (t.Year()-1980)<<9)
	clock = uint16(t.Second()/2 + t.Minute()<<5 + t.Hour()<<11)
	return date, clock
}

func appendExtendedTime(extra []byte, t time.Time) []byte {
	var block [9]byte
	binary.LittleEndian.PutUint16(block[0:], extendedTimeID)
	binary.LittleEndian.PutUint16(block[2:], 5)
	block[4] = 1 // modification time only
	binary.LittleEndian.PutUint32(block[5:], uint32(t.Unix()))

	return append(extra, block[:]...)
}

// spool is a temporary file holding the compressed form of one member.
type spool struct {
	file *os.File
}

func newSpool(dir string) (*spool, error) {
	file, err := os.CreateTemp(dir, ".modexport-*.spool")
	if err != nil {
		return nil, err
	}
	return &spool{file: file}, nil
}

func (s *spool) reset() error {
	if err := s.file.Truncate(0); err != nil {
		return err
	}
	_, err := s.file.Seek(0, io.SeekStart)
	return err
}

// rewind returns the number of bytes written since reset and moves back to the start.
func (s *spool) rewind() (int64, error) {
	size, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

func (s *spool) remove() error {
	errs := &data.Errors{}
	errs.Add(s.file.Close())
	errs.Add(os.Remove(s.file.Name()))
	return errs.Errors()
}

func (a *Archive) exportError(op, path string, outcome *data.Outcome, err error) error {
	return &data.ExportError{
		Op:        op,
		Path:      path,
		Completed: outcome.Done,
		Remaining: outcome.Remaining(),
		Err:       err,
	}
}

// ArchiveReader gives read access to an exported archive with every
// supported codec registered.
type ArchiveReader struct {
	*zip.Reader
	file *os.File
}

// OpenArchive opens the archive at path for reading.
func OpenArchive(path string) (*ArchiveReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	reader, err := zip.NewReader(file, info.Size())
	if err != nil {
		file.Close()
		return nil, err
	}

	registerDecompressors(reader)

	return &ArchiveReader{
		Reader: reader,
		file:   file,
	}, nil
}

func (r *ArchiveReader) Close() error {
	return r.file.Close()
}
