package graphio

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/pkg/errors"
)

//go:generate go tool github.com/dmarkham/enumer -trimprefix=Format -transform=lower -type=Format -output format_enums.go

type Format byte

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatGraphML
	FormatXGMML
	FormatMsgp
)

var ErrUnknownFormat = errors.New("graphio: unknown graph format")

var suffixes = []struct {
	suffix string
	format Format
}{
	{".msgp.lz4", FormatMsgp},
	{".graphml", FormatGraphML},
	{".xgmml", FormatXGMML},
	{".json", FormatJSON},
}

// FormatOf picks the format from the file name suffix
func FormatOf(path string) Format {
	lower := strings.ToLower(path)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.format
		}
	}
	return FormatUnknown
}

func Read(r io.Reader, format Format) (*cooc.Graph, error) {
	var g *cooc.Graph
	var err error
	switch format {
	case FormatJSON:
		g, err = readJSON(r)
	case FormatGraphML:
		g, err = readGraphML(r)
	case FormatXGMML:
		g, err = readXGMML(r)
	case FormatMsgp:
		g, err = readMsgp(r)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, err
	}
	if err = g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func Write(w io.Writer, format Format, g *cooc.Graph) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, g)
	case FormatGraphML:
		return writeGraphML(w, g)
	case FormatXGMML:
		return writeXGMML(w, g)
	case FormatMsgp:
		return writeMsgp(w, g)
	}
	return ErrUnknownFormat
}

// Load reads and validates the graph in path, the format follows the suffix
func Load(path string) (*cooc.Graph, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, errors.Wrap(ErrUnknownFormat, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := Read(bufio.NewReaderSize(f, 1024*1024), format)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %v", path)
	}
	return g, nil
}

func Save(path string, g *cooc.Graph) error {
	format := FormatOf(path)
	if format == FormatUnknown {
		return errors.Wrap(ErrUnknownFormat, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(f, 1024*1024)
	err = Write(bw, format, g)
	if err == nil {
		err = bw.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrapf(err, "saving %v", path)
	}
	return nil
}
