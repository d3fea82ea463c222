package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadSignerSignAndVerify(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("exp-1", "paysheets/2024-05.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ticket, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "exp-1", ticket.ExportID)
	require.Equal(t, "paysheets/2024-05.csv", ticket.Path)
	require.WithinDuration(t, expiresAt, ticket.ExpiresAt, time.Second)
}

func TestDownloadSignerExpired(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Minute)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return start }
	token, _, err := signer.Sign("exp-1", "audit.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = signer.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestDownloadSignerRejectsTampering(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, _, err := signer.Sign("exp-1", "audit.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "exp-2"
	_, err = signer.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewDownloadSigner("other", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestArchiveSaveOpenDelete(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	rel, err := archive.Save("paysheets/may.csv", []byte("a,b\n"))
	require.NoError(t, err)
	require.Equal(t, "paysheets/may.csv", rel)

	file, err := archive.Open(rel)
	require.NoError(t, err)
	buf := make([]byte, 4)
	n, _ := file.Read(buf)
	require.NoError(t, file.Close())
	require.Equal(t, "a,b\n", string(buf[:n]))

	require.NoError(t, archive.Delete(rel))
	require.NoError(t, archive.Delete(rel))
	_, err = archive.Open(rel)
	require.Error(t, err)
}

func TestArchiveRejectsEscapingPaths(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Save("../outside.csv", []byte("x"))
	require.ErrorIs(t, err, ErrOutsideArchive)
	_, err = archive.Open("/etc/passwd")
	require.ErrorIs(t, err, ErrOutsideArchive)
}

func TestArchiveCleanupOlderThan(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)
	_, err = archive.Save("old.csv", []byte("x"))
	require.NoError(t, err)

	archive.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	deleted, err := archive.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old.csv"}, deleted)
}
