package checksum

import (
	"errors"
	"fmt"
	"hash"
	"hash/adler32"
	"hash/crc64"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/crc32"
	"github.com/minio/crc64nvme"

	"tagres/internal/faults"
	"tagres/internal/logging"
)

// DefaultAlgorithm names the checksum used when none is configured.
const DefaultAlgorithm = "crc32"

const chunkSize = 4 * 1024

// Accumulator is a running, updatable checksum.
type Accumulator interface {
	io.Writer
	Value() uint64
}

// Algorithm produces fresh accumulators. Implementations must be stateless so
// a single value can be shared across every file of a run.
type Algorithm interface {
	Name() string
	New() Accumulator
}

type algorithm struct {
	name    string
	factory func() Accumulator
}

func (a algorithm) Name() string     { return a.name }
func (a algorithm) New() Accumulator { return a.factory() }

type sum32 struct{ hash.Hash32 }

func (s sum32) Value() uint64 { return uint64(s.Sum32()) }

type sum64 struct{ hash.Hash64 }

func (s sum64) Value() uint64 { return s.Sum64() }

var (
	crc64Table = crc64.MakeTable(crc64.ECMA)
	castagnoli = crc32.MakeTable(crc32.Castagnoli)
)

var registry = map[string]Algorithm{
	"crc32": algorithm{name: "crc32", factory: func() Accumulator {
		return sum32{crc32.NewIEEE()}
	}},
	"crc32c": algorithm{name: "crc32c", factory: func() Accumulator {
		return sum32{crc32.New(castagnoli)}
	}},
	"crc64": algorithm{name: "crc64", factory: func() Accumulator {
		return sum64{crc64.New(crc64Table)}
	}},
	"crc64nvme": algorithm{name: "crc64nvme", factory: func() Accumulator {
		return sum64{crc64nvme.New()}
	}},
	"adler32": algorithm{name: "adler32", factory: func() Accumulator {
		return sum32{adler32.New()}
	}},
	"xxhash64": algorithm{name: "xxhash64", factory: func() Accumulator {
		return sum64{xxhash.New()}
	}},
}

// Lookup resolves a checksum algorithm by name. Names are case-insensitive and
// an empty name selects DefaultAlgorithm.
func Lookup(name string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultAlgorithm
	}
	alg, ok := registry[key]
	if !ok {
		return nil, faults.Wrap(faults.ErrConfiguration, "checksum", "lookup",
			fmt.Sprintf("unsupported algorithm %q (available: %s)", name, strings.Join(Names(), ", ")), nil)
	}
	return alg, nil
}

// Default returns the CRC-32 algorithm.
func Default() Algorithm {
	return registry[DefaultAlgorithm]
}

// Names lists the registered algorithm names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sum drains r through a fresh accumulator in fixed-size chunks.
func Sum(r io.Reader, alg Algorithm) (uint64, error) {
	if alg == nil {
		alg = Default()
	}
	acc := alg.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = acc.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return acc.Value(), nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// File computes the fingerprint of the file at path. Read failures are fatal
// and name the path; a failure closing the read handle is only logged.
func File(path string, alg Algorithm, logger *slog.Logger) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, faults.Wrap(faults.ErrIO, "checksum", "open", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && logger != nil {
			logger.Debug("close after checksum failed",
				logging.String("path", path),
				logging.Error(cerr))
		}
	}()

	value, err := Sum(f, alg)
	if err != nil {
		return 0, faults.Wrap(faults.ErrIO, "checksum", "read", path, err)
	}
	return value, nil
}

// Format renders a fingerprint in the decimal form embedded into filenames.
func Format(value uint64) string {
	return strconv.FormatUint(value, 10)
}
