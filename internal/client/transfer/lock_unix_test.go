//go:build !windows

package transfer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/privscan/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestLockShared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.bin")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))

	open := func() *os.File {
		f, err := os.Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })
		return f
	}

	t.Run("readers share", func(t *testing.T) {
		unlockA, err := lockShared(open())
		require.NoError(t, err)
		defer unlockA()

		unlockB, err := lockShared(open())
		require.NoError(t, err)
		unlockB()
	})

	t.Run("exclusive holder blocks", func(t *testing.T) {
		writer := open()
		require.NoError(t, unix.Flock(int(writer.Fd()), unix.LOCK_EX|unix.LOCK_NB))
		defer func() { _ = unix.Flock(int(writer.Fd()), unix.LOCK_UN) }()

		_, err := lockShared(open())
		assert.ErrorIs(t, err, errSourceLocked)
	})
}

func TestUpload_LockedSourceIsLocal(t *testing.T) {
	path, _ := writeSource(t, "held.bin", 10)

	writer, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, unix.Flock(int(writer.Fd()), unix.LOCK_EX|unix.LOCK_NB))

	// nothing listens here; a locked source must fail before dialing
	r := Request{SourcePath: path, ServerBaseURL: "http://127.0.0.1:1", EndpointPath: "/scan"}
	u := newTestUploader(nil)

	_, err = u.Upload(context.Background(), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrLocalValidation)
	assert.ErrorIs(t, err, errSourceLocked)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "source", verr.Field)

	ch, err := u.Start(context.Background(), r)
	assert.Nil(t, ch)
	assert.ErrorIs(t, err, common.ErrLocalValidation)

	require.NoError(t, unix.Flock(int(writer.Fd()), unix.LOCK_UN))
	out, err := u.Upload(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, TransportError, out.Kind, "released lock lets the transfer reach the network")
}
