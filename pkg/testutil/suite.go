package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// FileSuite gives a suite a shared context and a scratch directory for
// envelope files
type FileSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	tempDir   string
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *FileSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), time.Minute)
	s.startTime = time.Now()

	tempDir, err := os.MkdirTemp("", "tables-test-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// TearDownSuite runs after all tests in the suite
func (s *FileSuite) TearDownSuite() {
	s.cancel()
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
	s.T().Logf("suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context
func (s *FileSuite) Context() context.Context {
	return s.ctx
}

// Path returns name joined to the scratch directory
func (s *FileSuite) Path(name string) string {
	return filepath.Join(s.tempDir, name)
}

// CreateTempFile writes content to name in the scratch directory
func (s *FileSuite) CreateTempFile(name string, content []byte) string {
	path := s.Path(name)
	require.NoError(s.T(), os.WriteFile(path, content, 0o600))
	return path
}

// IntegrationTest skips the calling test in short mode
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}
