package collector

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kcz17/timingsummary/stats"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// maxLineBytes bounds the length of a single line in a scanned file.
const maxLineBytes = 1024 * 1024

// FileAccessError reports a file or directory which could not be opened or
// read while collecting.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("unable to read %s: %s", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// Collector gathers timing results from files under a directory tree. Files
// are scanned one at a time and each is closed before the next is opened.
type Collector struct {
	fs        afero.Fs
	extension string
}

func New(fs afero.Fs, extension string) *Collector {
	return &Collector{
		fs:        fs,
		extension: extension,
	}
}

// Collect walks root recursively and returns a duration for every timing
// line found in files ending with the collector's extension. The first file
// which cannot be read aborts the walk.
func (c *Collector) Collect(root string) ([]stats.Duration, error) {
	var durations []stats.Duration
	files := 0

	err := afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return &FileAccessError{Path: path, Err: err}
		}
		if !info.Mode().IsRegular() || !strings.HasSuffix(info.Name(), c.extension) {
			return nil
		}

		found, err := c.scanFile(path)
		if err != nil {
			return err
		}
		files++

		log.WithFields(log.Fields{
			"path":    path,
			"matches": len(found),
		}).Debug("scanned file")

		durations = append(durations, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"root":      root,
		"files":     files,
		"durations": len(durations),
	}).Info("collection finished")

	return durations, nil
}

func (c *Collector) scanFile(path string) ([]stats.Duration, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	var durations []stats.Duration
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum += 1
		d, matched, err := parseTimingLine(scanner.Text())
		if !matched {
			continue
		}
		if err != nil {
			log.WithFields(log.Fields{
				"path": path,
				"line": lineNum,
			}).Warn("skipping timing line: duration out of range")
			continue
		}
		durations = append(durations, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}

	return durations, nil
}
