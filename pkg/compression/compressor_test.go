package compression

import (
	"bytes"
	"testing"

	"github.com/ajitpratap0/tables/pkg/errors"
)

func TestRoundTripAllAlgorithms(t *testing.T) {
	body := bytes.Repeat([]byte("0\t0\t1\n1\t1\t2\n2\t4\t5\n"), 200)

	for _, algorithm := range Algorithms {
		for _, level := range []Level{Fastest, Default, Better, Best} {
			t.Run(string(algorithm)+"/"+level.String(), func(t *testing.T) {
				comp, err := NewCompressor(&Config{Algorithm: algorithm, Level: level})
				if err != nil {
					t.Fatalf("Failed to create compressor: %v", err)
				}
				if comp.Algorithm() != algorithm {
					t.Errorf("expected algorithm %s, got %s", algorithm, comp.Algorithm())
				}

				compressed, err := comp.Compress(body)
				if err != nil {
					t.Fatalf("Failed to compress: %v", err)
				}

				decompressed, err := comp.Decompress(compressed)
				if err != nil {
					t.Fatalf("Failed to decompress: %v", err)
				}

				if !bytes.Equal(body, decompressed) {
					t.Errorf("Decompressed data doesn't match original")
				}

				if algorithm != None && len(compressed) >= len(body) {
					t.Logf("Warning: %s compressed size (%d) is not smaller than original (%d)",
						algorithm, len(compressed), len(body))
				}
			})
		}
	}
}

func TestEmptyPayload(t *testing.T) {
	for _, algorithm := range Algorithms {
		comp, err := NewCompressor(&Config{Algorithm: algorithm, Level: Default})
		if err != nil {
			t.Fatalf("%s: %v", algorithm, err)
		}
		compressed, err := comp.Compress(nil)
		if err != nil {
			t.Fatalf("%s: compress: %v", algorithm, err)
		}
		out, err := comp.Decompress(compressed)
		if err != nil {
			t.Fatalf("%s: decompress: %v", algorithm, err)
		}
		if len(out) != 0 {
			t.Errorf("%s: expected empty output, got %d bytes", algorithm, len(out))
		}
	}
}

func TestCorruptPayload(t *testing.T) {
	for _, algorithm := range []Algorithm{Gzip, Snappy, Zstd, S2, XZ} {
		comp, err := NewCompressor(&Config{Algorithm: algorithm})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := comp.Decompress([]byte("definitely not compressed")); err == nil {
			t.Errorf("%s: expected error for corrupt payload", algorithm)
		} else if !errors.IsType(err, errors.ErrorTypeData) {
			t.Errorf("%s: expected data error, got %v", algorithm, err)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm("lz4")
	if err != nil || a != LZ4 {
		t.Errorf("expected lz4, got %v, %v", a, err)
	}
	a, err = ParseAlgorithm("")
	if err != nil || a != None {
		t.Errorf("expected none, got %v, %v", a, err)
	}
	if _, err := ParseAlgorithm("brotli"); !errors.IsType(err, errors.ErrorTypeConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestDecompressLimit(t *testing.T) {
	body := bytes.Repeat([]byte("x\t1\n"), 4096)

	for _, algorithm := range Algorithms {
		t.Run(string(algorithm), func(t *testing.T) {
			comp, err := NewCompressor(&Config{Algorithm: algorithm, Level: Default})
			if err != nil {
				t.Fatal(err)
			}
			compressed, err := comp.Compress(body)
			if err != nil {
				t.Fatal(err)
			}

			out, err := comp.DecompressLimit(compressed, len(body))
			if err != nil {
				t.Fatalf("exact limit: %v", err)
			}
			if !bytes.Equal(body, out) {
				t.Errorf("decompressed data doesn't match original")
			}

			if _, err := comp.DecompressLimit(compressed, len(body)-1); err == nil {
				t.Errorf("expected error below the decoded size")
			} else if !errors.IsType(err, errors.ErrorTypeData) {
				t.Errorf("expected data error, got %v", err)
			}

			if _, err := comp.DecompressLimit(compressed, 0); err == nil {
				t.Errorf("expected error for a zero limit")
			}
		})
	}
}
