package services

import (
	"testing"

	"github.com/SscSPs/catalog_sync_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestEnrollmentIndex_Rebuild(t *testing.T) {
	idx := NewEnrollmentIndex("0xABC")

	assert.False(t, idx.IsEnrolled(0))
	assert.Equal(t, domain.Account("0xabc"), idx.Account())

	idx.Rebuild([]uint64{3, 1, 3})
	assert.True(t, idx.IsEnrolled(1))
	assert.True(t, idx.IsEnrolled(3))
	assert.False(t, idx.IsEnrolled(2))
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []domain.EnrollmentRecord{
		{Account: "0xabc", ItemID: 1},
		{Account: "0xabc", ItemID: 3},
	}, idx.Records())

	// Replaced, not merged
	idx.Rebuild([]uint64{2})
	assert.False(t, idx.IsEnrolled(1))
	assert.False(t, idx.IsEnrolled(3))
	assert.True(t, idx.IsEnrolled(2))

	idx.Rebuild(nil)
	assert.Equal(t, 0, idx.Len())
}

func TestEnrollmentIndex_Nil(t *testing.T) {
	var idx *EnrollmentIndex
	assert.False(t, idx.IsEnrolled(0))
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Records())
}
