package uci

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner replays canned responses keyed by the uci argument.
type fakeRunner struct {
	responses map[string]string
	err       error
	calls     []string
	argv      [][]string
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	key := args[len(args)-1]
	f.calls = append(f.calls, key)
	f.argv = append(f.argv, append([]string{name}, args...))
	if f.err != nil {
		return nil, f.err
	}
	out, ok := f.responses[key]
	if !ok {
		// uci get exits 1 with "Entry not found" on stderr for absent keys.
		return nil, &exec.ExitError{
			ProcessState: &os.ProcessState{},
			Stderr:       []byte("uci: Entry not found\n"),
		}
	}
	return []byte(out + "\n"), nil
}

// corruptStoreError models uci failing on every key, e.g. an unparsable
// /etc/config/dhcp.
func corruptStoreError() error {
	return &exec.ExitError{
		ProcessState: &os.ProcessState{},
		Stderr:       []byte("uci: Parse error (invalid command) at line 4, byte 0\n"),
	}
}

func TestCLISource_Lookup(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{
		"dhcp.@host[0].mac": "aa:bb:cc:dd:ee:01",
	}}
	src := NewCLISource("uci", DefaultSelector(), runner)

	value, ok, err := src.Lookup(context.Background(), 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "aa:bb:cc:dd:ee:01", value)
	assert.Equal(t, []string{"dhcp.@host[0].mac"}, runner.calls)

	// No -q: the binary must report its errors so absence and a broken
	// store stay distinguishable.
	require.Len(t, runner.argv, 1)
	assert.Equal(t, []string{"uci", "get", "dhcp.@host[0].mac"}, runner.argv[0])
}

func TestCLISource_AbsentKeyIsNotAnError(t *testing.T) {
	src := NewCLISource("uci", DefaultSelector(), &fakeRunner{responses: map[string]string{}})

	_, ok, err := src.Lookup(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCLISource_EmptyOutputIsAbsent(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{
		"dhcp.@host[0].mac": "   ",
	}}
	src := NewCLISource("uci", DefaultSelector(), runner)

	_, ok, err := src.Lookup(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCLISource_ExecFailureIsSourceError(t *testing.T) {
	runner := &fakeRunner{err: exec.ErrNotFound}
	src := NewCLISource("", DefaultSelector(), runner)

	_, _, err := src.Lookup(context.Background(), 0)
	require.Error(t, err)

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestCLISource_CorruptStoreIsSourceErrorNotAbsence(t *testing.T) {
	runner := &fakeRunner{err: corruptStoreError()}
	src := NewCLISource("uci", DefaultSelector(), runner)

	_, ok, err := src.Lookup(context.Background(), 0)
	require.Error(t, err)
	assert.False(t, ok)

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Contains(t, err.Error(), "Parse error")
}

func TestCLISource_CorruptStoreAbortsEnumeration(t *testing.T) {
	// A store failing on every key must error out of enumeration, not
	// present itself as empty.
	runner := &fakeRunner{err: corruptStoreError()}
	it := NewIterator(NewCLISource("uci", DefaultSelector(), runner))

	_, ok, err := it.Next(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
}
