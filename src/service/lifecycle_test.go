package service

import (
	"testing"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalogue() *repository.Catalogue {
	return repository.NewCatalogue([]models.BreakType{
		{ID: 1, Code: "B", DisplayName: "Break", TimeLimitMinutes: intPtr(30), CountedInTotal: true},
		{ID: 2, Code: "W", DisplayName: "Restroom", TimeLimitMinutes: intPtr(5)},
		{ID: 3, Code: "P", DisplayName: "Extended Restroom", TimeLimitMinutes: intPtr(10), CountedInTotal: true},
		{ID: 4, Code: "O", DisplayName: "Other", CountedInTotal: true, RequiresReason: true},
	})
}

func TestValidateStart(t *testing.T) {
	cat := testCatalogue()

	assert.NoError(t, validateStart(cat.ByCode("B"), "", nil, cat))

	err := validateStart(nil, "", nil, cat)
	assert.ErrorIs(t, err, models.ErrUnknownBreakType)
}

func TestValidateStart_ReasonRequired(t *testing.T) {
	cat := testCatalogue()

	err := validateStart(cat.ByCode("O"), "", nil, cat)
	assert.ErrorIs(t, err, models.ErrReasonRequired)

	assert.NoError(t, validateStart(cat.ByCode("O"), "doctor visit", nil, cat))
}

func TestValidateStart_AlreadyOnBreak(t *testing.T) {
	cat := testCatalogue()
	active := &models.ActiveSession{UserID: 1, BreakTypeID: 2}

	err := validateStart(cat.ByCode("B"), "", active, cat)
	require.Error(t, err)

	var alreadyOn *models.AlreadyOnBreakError
	require.ErrorAs(t, err, &alreadyOn)
	assert.Equal(t, "W", alreadyOn.ActiveTypeCode)
	assert.Equal(t, "Restroom", alreadyOn.ActiveTypeName)
}

func TestValidateEnd(t *testing.T) {
	cat := testCatalogue()
	active := &models.ActiveSession{UserID: 1, BreakTypeID: 1}

	assert.NoError(t, validateEnd("B", active, cat))
}

func TestValidateEnd_NoActiveBreak(t *testing.T) {
	cat := testCatalogue()

	err := validateEnd("B", nil, cat)
	assert.ErrorIs(t, err, models.ErrNoActiveBreak)
}

func TestValidateEnd_TypeMismatch(t *testing.T) {
	cat := testCatalogue()
	active := &models.ActiveSession{UserID: 1, BreakTypeID: 1}

	err := validateEnd("W", active, cat)
	require.Error(t, err)

	var mismatch *models.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "W", mismatch.RequestedCode)
	assert.Equal(t, "B", mismatch.ActiveCode)
}

func TestLogDate_UsesServiceTimezone(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	// 23:30 UTC on June 1 is already June 2 in Manila.
	ts := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-02", LogDate(ts, manila))
	assert.Equal(t, "2025-06-01", LogDate(ts, time.UTC))
}

func TestCatalogueLookups(t *testing.T) {
	cat := testCatalogue()

	require.NotNil(t, cat.ByCode("P"))
	assert.Equal(t, "Extended Restroom", cat.ByCode("P").DisplayName)
	assert.Nil(t, cat.ByCode("Z"))

	require.NotNil(t, cat.ByID(4))
	assert.True(t, cat.ByID(4).RequiresReason)
	assert.Nil(t, cat.ByID(99))

	assert.Len(t, cat.All(), 4)
}
