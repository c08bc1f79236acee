package sample

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Target is where a Sampler's records go. BeginCompartment is called once
// per compartment per sample, before any WriteHeaderField/WriteFloat64/
// WriteInt64 calls for that compartment; it reports whether this is the
// first sample ever taken of that compartment (instantiation index),
// which is when WriteHeaderField calls, if any, should happen.
// EndSample is called once every compartment in a sample has been
// written.
type Target interface {
	BeginCompartment(path string, instantiationIndex int) (firstSample bool, err error)
	WriteHeaderField(title string) error
	WriteFloat64(v float64) error
	WriteInt64(v int64) error
	EndSample() error
}

// CSVTarget writes one delimited text file per distinct compartment path,
// one row per sample, opening files lazily on first use.
type CSVTarget struct {
	dir       string
	delimiter string

	files map[string]*csvFile
	cur   *csvFile
}

type csvFile struct {
	w          *bufio.Writer
	f          *os.File
	fieldCount int
	wroteField bool
	inHeader   bool
}

// NewCSVTarget creates a target writing one file per compartment path
// under dir, named "<path>.csv" with fields joined by delimiter (typically
// "," or "\t").
func NewCSVTarget(dir, delimiter string) *CSVTarget {
	return &CSVTarget{dir: dir, delimiter: delimiter, files: make(map[string]*csvFile)}
}

func (t *CSVTarget) BeginCompartment(path string, instantiationIndex int) (bool, error) {
	key := fmt.Sprintf("%s#%d", path, instantiationIndex)
	cf, exists := t.files[key]
	if !exists {
		fname := filepath.Join(t.dir, sanitizeFileName(path)+".csv")
		f, err := os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return false, fmt.Errorf("sample: opening %s: %w", fname, err)
		}
		cf = &csvFile{w: bufio.NewWriter(f), f: f}
		t.files[key] = cf
	}
	t.cur = cf
	return !exists, nil
}

func (t *CSVTarget) writeField(s string) error {
	if t.cur.wroteField {
		if _, err := t.cur.w.WriteString(t.delimiter); err != nil {
			return err
		}
	}
	t.cur.wroteField = true
	_, err := t.cur.w.WriteString(s)
	return err
}

// writeValue ends a pending header line before writing a data field, so
// the header and the first data row land on separate lines.
func (t *CSVTarget) writeValue(s string) error {
	if t.cur.inHeader {
		if _, err := t.cur.w.WriteString("\n"); err != nil {
			return err
		}
		t.cur.inHeader = false
		t.cur.wroteField = false
	}
	return t.writeField(s)
}

func (t *CSVTarget) WriteHeaderField(title string) error {
	t.cur.inHeader = true
	return t.writeField(title)
}
func (t *CSVTarget) WriteFloat64(v float64) error        { return t.writeValue(strconv.FormatFloat(v, 'g', -1, 64)) }
func (t *CSVTarget) WriteInt64(v int64) error             { return t.writeValue(strconv.FormatInt(v, 10)) }

func (t *CSVTarget) EndSample() error {
	for _, cf := range t.files {
		if cf.wroteField {
			if _, err := cf.w.WriteString("\n"); err != nil {
				return err
			}
			cf.wroteField = false
		}
		cf.inHeader = false
	}
	return nil
}

// Close flushes and closes every file this target has opened.
func (t *CSVTarget) Close() error {
	var firstErr error
	for _, cf := range t.files {
		if err := cf.w.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := cf.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func sanitizeFileName(path string) string {
	out := make([]byte, 0, len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' || c == '\\' {
			c = '_'
		}
		out = append(out, c)
	}
	return string(out)
}

// BinaryTarget writes fixed-width binary records (little-endian float64s
// and int64s, no field separators) to a single writer, in the same field
// order a CSVTarget would use — one compartment's sample immediately
// follows the previous one's, with no delimiting at all since the reader
// is expected to already know the record layout per compartment path.
type BinaryTarget struct {
	w io.Writer
}

// NewBinaryTarget creates a target writing binary records to w.
func NewBinaryTarget(w io.Writer) *BinaryTarget {
	return &BinaryTarget{w: w}
}

func (t *BinaryTarget) BeginCompartment(path string, instantiationIndex int) (bool, error) {
	return false, nil
}

func (t *BinaryTarget) WriteHeaderField(title string) error { return nil }

func (t *BinaryTarget) WriteFloat64(v float64) error {
	return binary.Write(t.w, binary.LittleEndian, v)
}

func (t *BinaryTarget) WriteInt64(v int64) error {
	return binary.Write(t.w, binary.LittleEndian, v)
}

func (t *BinaryTarget) EndSample() error { return nil }

// StdoutTarget writes Env's samples to stdout as plain text and silently
// drops every other compartment's, matching the original's
// StdoutSamplerTarget squelching behavior for a quick look at a run
// without wiring up file output.
type StdoutTarget struct {
	firstSample bool
	squelch     bool
	w           *bufio.Writer
}

// NewStdoutTarget creates a target writing to stdout.
func NewStdoutTarget() *StdoutTarget {
	return &StdoutTarget{firstSample: true, w: bufio.NewWriter(os.Stdout)}
}

func (t *StdoutTarget) BeginCompartment(path string, instantiationIndex int) (bool, error) {
	t.squelch = path != "env"
	if t.squelch {
		return false, nil
	}
	first := t.firstSample
	t.firstSample = false
	return first, nil
}

func (t *StdoutTarget) writeField(s string) error {
	if t.squelch {
		return nil
	}
	_, err := t.w.WriteString(s + " ")
	return err
}

func (t *StdoutTarget) WriteHeaderField(title string) error { return t.writeField(title) }
func (t *StdoutTarget) WriteFloat64(v float64) error        { return t.writeField(strconv.FormatFloat(v, 'g', -1, 64)) }
func (t *StdoutTarget) WriteInt64(v int64) error             { return t.writeField(strconv.FormatInt(v, 10)) }

func (t *StdoutTarget) EndSample() error {
	if !t.squelch {
		if _, err := t.w.WriteString("\n"); err != nil {
			return err
		}
	}
	return t.w.Flush()
}
