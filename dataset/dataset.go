//Package dataset reads and writes reference datasets for goBoltzgen: sets
//of flattened molecular configurations, stored as zstd-compressed text.
//A file starts with optional key=value header lines, then a "** N" line
//declaring the number of columns (3 times the atom count), then one line of
//space-separated coordinates per sample.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
)

//Write!

// Writer writes samples to a compressed dataset file. It is not safe for
// concurrent use.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	cols      int
	filename  string
	writeable bool
}

// NewWriter creates a dataset file with cols columns per sample. The header
// map, if not nil, is stored verbatim before the column declaration.
func NewWriter(name string, cols int, header map[string]string) (*Writer, error) {
	if cols <= 0 {
		return nil, Error{fmt.Sprintf("%d columns requested", cols), name, []string{"NewWriter"}}
	}
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, err
	}
	W.h, err = zstd.NewWriter(W.f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, Error{"Can't set up the compressor " + err.Error(), name, []string{"NewWriter"}}
	}
	W.cols = cols
	W.filename = name
	W.writeable = true
	for k, v := range header {
		W.h.Write([]byte(fmt.Sprintf("%s=%v\n", k, v)))
	}
	W.h.Write([]byte(fmt.Sprintf("** %d\n", W.cols)))
	return W, nil
}

// WNext appends one sample to the file.
func (W *Writer) WNext(frame []float64) error {
	if !W.writeable {
		return Error{"Writer is closed", W.filename, []string{"WNext"}}
	}
	if len(frame) != W.cols {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", len(frame), W.cols), W.filename, []string{"WNext"}}
	}
	var b strings.Builder
	for i, v := range frame {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte('\n')
	_, err := W.h.Write([]byte(b.String()))
	return err
}

// Close flushes and closes the file. The Writer can not be used afterwards.
func (W *Writer) Close() {
	if W == nil {
		return
	}
	if W.writeable {
		W.h.Close()
		W.f.Close()
	}
	W.writeable = false
}

//Read!

// Reader reads samples back from a compressed dataset file.
type Reader struct {
	f        *os.File
	z        io.ReadCloser
	h        *bufio.Reader
	cols     int
	filename string
	readable bool
}

//zstd.Decoder doesn't implement io.ReadCloser (Close returns nothing), so
//we wrap it.
type zdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zdql) Close() error {
	z.closeql()
	return nil
}

// New opens a dataset file and reads its header, returning the reader and
// the header map (nil when the file has no header lines).
func New(name string) (*Reader, map[string]string, error) {
	R := new(Reader)
	R.cols = -1
	R.filename = name
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	d, err := zstd.NewReader(bufio.NewReader(R.f))
	if err != nil {
		return nil, nil, Error{"Can't set up the decompressor " + err.Error(), name, []string{"New"}}
	}
	R.z = zdql{d.Close, d}
	R.h = bufio.NewReader(R.z)
	var m map[string]string
	for {
		str, err := R.h.ReadString('\n')
		if err != nil {
			return nil, nil, Error{"Can't read header " + err.Error(), name, []string{"New"}}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			fields := strings.Fields(str)
			if len(fields) < 2 {
				return nil, nil, Error{fmt.Sprintf("Can't read column count from '%s'", str), name, []string{"New"}}
			}
			R.cols, err = strconv.Atoi(fields[1])
			if err != nil {
				return nil, nil, Error{fmt.Sprintf("Can't read column count from '%s': %s", fields[1], err.Error()), name, []string{"New"}}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, nil, Error{fmt.Sprintf("Malformed header line '%s'", str), name, []string{"New"}}
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[kv[0]] = kv[1]
	}
	R.readable = true
	return R, m, nil
}

// Cols returns the number of columns per sample declared in the file.
func (R *Reader) Cols() int {
	return R.cols
}

// Readable returns true if it is possible to call Next on the reader.
func (R *Reader) Readable() bool {
	return R.readable
}

// Next reads the next sample into frame, which must have Cols() elements.
// It returns io.EOF, and nothing else, after the last sample.
func (R *Reader) Next(frame []float64) error {
	if !R.readable {
		return Error{"Reader is closed", R.filename, []string{"Next"}}
	}
	if len(frame) != R.cols {
		return Error{fmt.Sprintf("buffer holds %d coordinates, but %d expected", len(frame), R.cols), R.filename, []string{"Next"}}
	}
	str, err := R.h.ReadString('\n')
	if err == io.EOF && str == "" {
		return io.EOF
	}
	if err != nil && err != io.EOF {
		return Error{"Can't read sample " + err.Error(), R.filename, []string{"Next"}}
	}
	fields := strings.Fields(str)
	if len(fields) != R.cols {
		return Error{fmt.Sprintf("sample has %d coordinates, but %d expected", len(fields), R.cols), R.filename, []string{"Next"}}
	}
	for i, v := range fields {
		frame[i], err = strconv.ParseFloat(v, 64)
		if err != nil {
			return Error{fmt.Sprintf("Can't parse coordinate '%s': %s", v, err.Error()), R.filename, []string{"Next"}}
		}
	}
	return nil
}

// Close closes the reader. It can not be used after this call.
func (R *Reader) Close() {
	if R == nil {
		return
	}
	if R.readable {
		R.z.Close()
		R.f.Close()
	}
	R.readable = false
}

// Load reads a whole dataset into a gonum matrix with one sample per row.
// If cols is positive, the file must declare exactly that many columns, the
// check the transforms rely on to validate a reference dataset's
// dimensionality.
func Load(name string, cols int) (*mat.Dense, error) {
	R, _, err := New(name)
	if err != nil {
		return nil, err
	}
	defer R.Close()
	if cols > 0 && R.cols != cols {
		return nil, Error{fmt.Sprintf("dataset has %d columns, but %d expected", R.cols, cols), name, []string{"Load"}}
	}
	data := make([]float64, 0, 100*R.cols)
	frame := make([]float64, R.cols)
	n := 0
	for {
		err = R.Next(frame)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		data = append(data, frame...)
		n++
	}
	if n == 0 {
		return nil, Error{"dataset has no samples", name, []string{"Load"}}
	}
	return mat.NewDense(n, R.cols, data), nil
}

//Errors

// Error is the dataset error type. It implements the goBoltzgen Error
// interface and also reports the offending file.
type Error struct {
	message  string
	filename string
	deco     []string
}

func (err Error) Error() string {
	return fmt.Sprintf("dataset file %s error: %s", err.filename, err.message)
}

// Decorate adds the given string to the decoration slice of the error and
// returns the resulting slice.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file to which the error refers.
func (err Error) FileName() string {
	return err.filename
}
