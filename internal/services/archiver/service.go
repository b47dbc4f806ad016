// Package archiver writes the top-level files of each source directory into
// a single ZIP archive.
package archiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fgeck/gozip-backup/internal/models"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// Extension is the file extension of produced archives.
const Extension = "zip"

// Service defines the interface for the backup archiver.
type Service interface {
	Run(ctx context.Context, timestamp string) (*models.RunResult, error)
}

// Impl implements the archiver Service interface.
type Impl struct {
	fs     afero.Fs
	paths  models.PathSettings
	logger Logger
}

// New creates an archiver over the OS filesystem.
func New(paths models.PathSettings, logger zerolog.Logger) *Impl {
	return &Impl{
		fs:     afero.NewOsFs(),
		paths:  paths,
		logger: NewZerologLogger(logger),
	}
}

// NewWithFs creates an archiver with a custom filesystem and logger (for testing).
func NewWithFs(paths models.PathSettings, fs afero.Fs, logger Logger) *Impl {
	return &Impl{
		fs:     fs,
		paths:  paths,
		logger: logger,
	}
}

// ArchiveName returns the archive file name for timestamp.
func ArchiveName(timestamp string) string {
	return fmt.Sprintf("Backup_%s.%s", timestamp, Extension)
}

// Run creates <target>/Backup_<timestamp>.zip and fills it from every source
// directory. Only failing to create or finalize the archive is returned as an
// error; directory and file problems are logged and skipped.
func (s *Impl) Run(ctx context.Context, timestamp string) (*models.RunResult, error) {
	start := time.Now()
	archivePath := filepath.Join(s.paths.Target, ArchiveName(timestamp))
	result := &models.RunResult{ArchivePath: archivePath}

	s.logger.Info("backup started")
	s.logger.Info(fmt.Sprintf("creating archive %s", archivePath))

	out, err := s.fs.Create(archivePath)
	if err != nil {
		s.logger.Error(fmt.Sprintf("failed to create archive %s: %v", archivePath, err))
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})

	var runErr error
	for _, source := range s.paths.Sources {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		s.logger.Info(fmt.Sprintf("started directory %s", source))
		if err := s.fill(ctx, zw, source, result); err != nil {
			runErr = err
			break
		}
		s.logger.Info(fmt.Sprintf("finished directory %s", source))
	}

	if err := finalize(zw, out); err != nil {
		_ = s.fs.Remove(archivePath)
		s.logger.Error(fmt.Sprintf("failed to finalize archive %s: %v", archivePath, err))
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}

	result.Duration = time.Since(start)

	if runErr != nil {
		s.logger.Error(fmt.Sprintf("backup interrupted, archive %s holds %d entries: %v",
			archivePath, result.EntriesWritten, runErr))
		return result, runErr
	}

	s.logger.Info(fmt.Sprintf("backup completed: %d entries written, %d files failed, %d directories failed",
		result.EntriesWritten, result.FilesFailed, result.DirectoriesFailed))

	return result, nil
}

func finalize(zw *zip.Writer, out afero.File) error {
	zipErr := zw.Close()
	fileErr := out.Close()
	return errors.Join(zipErr, fileErr)
}

// fill appends every file found directly in dir. It only returns an error
// when ctx is cancelled.
func (s *Impl) fill(ctx context.Context, zw *zip.Writer, dir string, result *models.RunResult) error {
	files, err := s.listFiles(dir)
	if err != nil {
		result.DirectoriesFailed++
		s.logger.Error(err.Error())
		return nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		status, err := s.addFile(zw, path)
		if err != nil {
			result.FilesFailed++
			msg := newFileError(path, err).Error()
			if status == entryPartial {
				result.PartialEntries++
				msg += fmt.Sprintf(" (entry %s left incomplete in archive)", filepath.Base(path))
			}
			s.logger.Error(msg)
			continue
		}
		if status == entryWritten {
			result.EntriesWritten++
			s.logger.Debug(fmt.Sprintf("file %s added to archive", path))
		}
	}

	return nil
}

// listFiles returns the non-directory children of dir in the order the
// filesystem reports them.
func (s *Impl) listFiles(dir string) ([]string, error) {
	info, err := s.fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source directory %s not found", dir)
		}
		return nil, fmt.Errorf("source directory %s is not accessible: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", dir)
	}

	d, err := s.fs.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", dir, err)
	}
	defer func() { _ = d.Close() }()

	children, err := d.Readdir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	files := lo.Filter(children, func(fi os.FileInfo, _ int) bool {
		if fi.IsDir() {
			return false
		}
		if fi.Mode()&specialModes != 0 {
			s.logger.Debug(fmt.Sprintf("skipping %s: not a regular file", filepath.Join(dir, fi.Name())))
			return false
		}
		return true
	})

	return lo.Map(files, func(fi os.FileInfo, _ int) string {
		return filepath.Join(dir, fi.Name())
	}), nil
}

// entryStatus reports what addFile left in the archive.
type entryStatus int

const (
	entrySkipped entryStatus = iota // nothing written
	entryWritten                    // complete entry
	entryPartial                    // entry created, content incomplete
)

// specialModes are never opened: a FIFO blocks on open and devices can be
// endless.
const specialModes = fs.ModeNamedPipe | fs.ModeSocket | fs.ModeDevice | fs.ModeCharDevice | fs.ModeIrregular

// addFile streams path into a new deflate entry named by its base name. The
// source is opened before the entry is created so an unreadable file leaves
// no entry behind. Anything that does not resolve to a regular file is
// skipped. Symlinks are opened without blocking so a link to a FIFO is
// caught by the Stat check.
func (s *Impl) addFile(zw *zip.Writer, path string) (entryStatus, error) {
	f, err := s.open(path)
	if err != nil {
		return entrySkipped, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return entrySkipped, err
	}
	if info.IsDir() {
		s.logger.Debug(fmt.Sprintf("skipping %s: resolves to a directory", path))
		return entrySkipped, nil
	}
	if !info.Mode().IsRegular() {
		s.logger.Debug(fmt.Sprintf("skipping %s: not a regular file", path))
		return entrySkipped, nil
	}

	header := &zip.FileHeader{
		Name:     filepath.Base(path),
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	header.SetMode(info.Mode())

	w, err := zw.CreateHeader(header)
	if err != nil {
		return entrySkipped, err
	}

	n, err := io.Copy(w, f)
	if err != nil {
		return entryPartial, err
	}
	if n < info.Size() {
		return entryPartial, fmt.Errorf("read %d of %d bytes: %w", n, info.Size(), io.ErrUnexpectedEOF)
	}

	return entryWritten, nil
}

// open opens path read-only. On the OS filesystem O_NONBLOCK keeps a
// symlinked FIFO from blocking; regular file reads ignore the flag.
func (s *Impl) open(path string) (afero.File, error) {
	if _, ok := s.fs.(*afero.OsFs); ok {
		return s.fs.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	}
	return s.fs.Open(path)
}
