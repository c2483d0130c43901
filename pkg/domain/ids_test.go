package domain

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "recordgate/pkg/domain-errors"
)

// TestParseRecordID_Invariants validates the parsing invariant:
// "IDs must be base-10 int64 values; sign and zero are not restricted"
func TestParseRecordID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseRecordID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseRecordID("not-a-number")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects surrounding whitespace", func(t *testing.T) {
		_, err := ParseRecordID(" 1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects overflow", func(t *testing.T) {
		_, err := ParseRecordID("9223372036854775808")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts zero and negative values unchanged", func(t *testing.T) {
		zero, err := ParseRecordID("0")
		require.NoError(t, err)
		assert.Equal(t, RecordID(0), zero)

		neg, err := ParseRecordID("-42")
		require.NoError(t, err)
		assert.Equal(t, RecordID(-42), neg)
	})

	t.Run("accepts int64 bounds", func(t *testing.T) {
		maxID, err := ParseRecordID(strconv.FormatInt(math.MaxInt64, 10))
		require.NoError(t, err)
		assert.Equal(t, RecordID(math.MaxInt64), maxID)

		minID, err := ParseRecordID(strconv.FormatInt(math.MinInt64, 10))
		require.NoError(t, err)
		assert.Equal(t, RecordID(math.MinInt64), minID)
	})
}

func TestRecordID_String(t *testing.T) {
	assert.Equal(t, "1", RecordID(1).String())
	assert.Equal(t, "-7", RecordID(-7).String())
	assert.Equal(t, int64(12), RecordID(12).Int64())
}
