package textio

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/tables/pkg/compression"
	"github.com/ajitpratap0/tables/pkg/envelope"
	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/meta"
	"github.com/ajitpratap0/tables/pkg/mmap"
	"github.com/ajitpratap0/tables/pkg/tables"
	"github.com/ajitpratap0/tables/pkg/testutil"
	"github.com/ajitpratap0/tables/pkg/value"
)

// EnvelopeFileSuite writes encoded tables to framed files and reads them
// back through a memory mapping.
type EnvelopeFileSuite struct {
	testutil.FileSuite
}

func TestEnvelopeFileSuite(t *testing.T) {
	testutil.IntegrationTest(t)
	suite.Run(t, new(EnvelopeFileSuite))
}

func (s *EnvelopeFileSuite) encode(tbl tables.Table[value.Value]) *envelope.Envelope {
	env, err := ToTextEnvelope(s.Context(), tbl)
	s.Require().NoError(err)
	return env
}

func (s *EnvelopeFileSuite) TestFramesPerAlgorithm() {
	tbl := testutil.ValueTable(s.T(), 3,
		"city", []any{"Oslo", "", nil},
		"pop", []any{709000, nil, 1.5},
		"flag", []any{true, false, nil},
	)
	env := s.encode(tbl)

	for _, alg := range compression.Algorithms {
		var buf bytes.Buffer
		s.Require().NoError(envelope.Write(&buf, env, envelope.WithCompression(alg, compression.Default)))
		path := s.CreateTempFile(string(alg)+".frame", buf.Bytes())

		f, err := mmap.Open(path)
		s.Require().NoError(err)

		read, err := envelope.Read(f.Reader())
		s.Require().NoError(err, alg)
		decoded, err := ReadTextTable(s.Context(), read)
		s.Require().NoError(err, alg)
		s.NoError(f.Close())

		s.True(tables.Equal[value.Value](tbl, decoded, valueEqual), alg)
		s.Equal(env.DataID, read.DataID)
	}
}

func (s *EnvelopeFileSuite) TestManyTablesInOneFile() {
	var buf bytes.Buffer
	var sources []*tables.ColumnTable[value.Value]
	for n := 1; n <= 4; n++ {
		cells := make([]any, n)
		for i := range cells {
			cells[i] = i * n
		}
		tbl := testutil.ValueTable(s.T(), n, "v", cells)
		sources = append(sources, tbl)
		s.Require().NoError(envelope.Write(&buf, s.encode(tbl), envelope.WithCompression(compression.LZ4, compression.Fastest)))
	}
	path := s.CreateTempFile("many.frame", buf.Bytes())

	f, err := mmap.Open(path)
	s.Require().NoError(err)
	defer f.Close()

	frames := envelope.NewReader(f.Reader())
	for i, src := range sources {
		env, err := frames.Next()
		s.Require().NoError(err, "frame %d", i)

		lazy, err := ReadTextRows(env)
		s.Require().NoError(err)
		s.NoError(lazy.Validate())
		s.True(tables.Equal[value.Value](src, lazy, valueEqual), "frame %d", i)
	}
	_, err = frames.Next()
	s.ErrorIs(err, io.EOF)
}

func (s *EnvelopeFileSuite) TestCorruptFileIsLoggedAndRejected() {
	env := &envelope.Envelope{
		Type: EnvelopeType,
		Meta: meta.New().Set("column.0.name", "a"),
		Data: []byte("1\n\"open\n"),
	}
	var buf bytes.Buffer
	s.Require().NoError(envelope.Write(&buf, env))
	path := s.CreateTempFile("corrupt.frame", buf.Bytes())

	f, err := mmap.Open(path)
	s.Require().NoError(err)
	defer f.Close()
	read, err := envelope.Read(f.Reader())
	s.Require().NoError(err)

	log, logs := testutil.ObservedLogger(zapcore.DebugLevel)
	_, err = ReadTextTable(s.Context(), read, WithLogger(log))
	s.Require().Error(err)
	s.True(errors.IsType(err, errors.ErrorTypeData))

	entries := logs.FilterMessage("text envelope decode failed").All()
	s.Len(entries, 1)
}
