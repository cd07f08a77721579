package docrequest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	caseID := uuid.New()
	officer := uuid.New()

	t.Run("files an open request", func(t *testing.T) {
		d, err := New(caseID, officer, " POST_MORTEM_REPORT ", " needed for charge sheet ")

		require.NoError(t, err)
		assert.Equal(t, StatusRequested, d.Status())
		assert.True(t, d.IsOpen())
		assert.Equal(t, "POST_MORTEM_REPORT", d.DocumentType())
		assert.Equal(t, "needed for charge sheet", d.Note())
		assert.Equal(t, uuid.Nil, d.HandledBy())
		assert.Nil(t, d.HandledAt())
	})

	t.Run("rejects empty document type", func(t *testing.T) {
		_, err := New(caseID, officer, "  ", "")
		assert.ErrorIs(t, err, ErrEmptyDocType)
	})
}

func TestDocumentRequest_Fulfill(t *testing.T) {
	handler := uuid.New()

	t.Run("attaches the file and settles", func(t *testing.T) {
		d, err := New(uuid.New(), uuid.New(), "FSL_REPORT", "")
		require.NoError(t, err)

		require.NoError(t, d.Fulfill(handler, "s3://docs/fsl.pdf"))

		assert.Equal(t, StatusFulfilled, d.Status())
		assert.False(t, d.IsOpen())
		assert.Equal(t, "s3://docs/fsl.pdf", d.FileURL())
		assert.Equal(t, handler, d.HandledBy())
		require.NotNil(t, d.HandledAt())
	})

	t.Run("requires a file url", func(t *testing.T) {
		d, err := New(uuid.New(), uuid.New(), "FSL_REPORT", "")
		require.NoError(t, err)

		assert.ErrorIs(t, d.Fulfill(handler, "  "), ErrEmptyFileURL)
		assert.True(t, d.IsOpen(), "failed fulfillment leaves the request open")
	})

	t.Run("cannot fulfill twice", func(t *testing.T) {
		d, err := New(uuid.New(), uuid.New(), "FSL_REPORT", "")
		require.NoError(t, err)
		require.NoError(t, d.Fulfill(handler, "s3://docs/fsl.pdf"))

		assert.ErrorIs(t, d.Fulfill(handler, "s3://docs/other.pdf"), ErrAlreadyHandled)
	})
}

func TestDocumentRequest_Reject(t *testing.T) {
	handler := uuid.New()

	t.Run("requires a note", func(t *testing.T) {
		d, err := New(uuid.New(), uuid.New(), "CALL_RECORDS", "")
		require.NoError(t, err)

		assert.ErrorIs(t, d.Reject(handler, " "), ErrEmptyRejectNote)
	})

	t.Run("settles with the note", func(t *testing.T) {
		d, err := New(uuid.New(), uuid.New(), "CALL_RECORDS", "")
		require.NoError(t, err)

		require.NoError(t, d.Reject(handler, "not within court custody"))

		assert.Equal(t, StatusRejected, d.Status())
		assert.Equal(t, "not within court custody", d.Note())
		assert.ErrorIs(t, d.Fulfill(handler, "s3://x"), ErrAlreadyHandled)
	})
}
