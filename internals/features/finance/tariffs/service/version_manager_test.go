package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/databases/testdb"
	"schoolku_backend/internals/features/finance/tariffs/model"
	helper "schoolku_backend/internals/helpers"
)

func TestResolveCurrentWithoutAnyVersion(t *testing.T) {
	db := testdb.Open(t)
	_, err := ResolveCurrent(db)
	assert.ErrorIs(t, err, ErrTariffNotConfigured)
}

func TestCreatePlannedVersionAndLazyActivation(t *testing.T) {
	db := testdb.Open(t)
	actor := uuid.New()

	v, err := CreatePlannedVersion(db, CreateVersionInput{
		MonthlyAmount:    300000,
		ChargeableMonths: []int{9, 10, 11, 12, 1, 2, 3, 4, 5, 6},
		EffectiveFrom:    time.Now().Add(-time.Hour),
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, model.TariffVersionStatusPlanned, v.TariffVersionStatus)

	// the read path activates the due planned version
	settings, err := ResolveCurrent(db)
	require.NoError(t, err)
	assert.Equal(t, v.TariffVersionID, settings.VersionID)
	assert.Equal(t, 300000, settings.MonthlyAmount)
	assert.Equal(t, 3000000, settings.AnnualAmount) // derived: monthly * billed months
	assert.Len(t, settings.ChargeableMonths, 10)

	var stored model.TariffVersion
	require.NoError(t, db.First(&stored, "tariff_version_id = ?", v.TariffVersionID).Error)
	assert.Equal(t, model.TariffVersionStatusActive, stored.TariffVersionStatus)

	var actions []string
	require.NoError(t, db.Model(&model.TariffAuditLog{}).
		Pluck("tariff_audit_log_action", &actions).Error)
	assert.ElementsMatch(t, []string{"created", "activated"}, actions)
}

func TestNewVersionArchivesPreviousOnActivation(t *testing.T) {
	db := testdb.Open(t)
	actor := uuid.New()

	old, err := CreatePlannedVersion(db, CreateVersionInput{
		MonthlyAmount:    300000,
		ChargeableMonths: []int{9, 10},
		EffectiveFrom:    time.Now().Add(-48 * time.Hour),
	}, actor)
	require.NoError(t, err)
	_, err = ResolveCurrent(db)
	require.NoError(t, err)

	newer, err := CreatePlannedVersion(db, CreateVersionInput{
		MonthlyAmount:    350000,
		ChargeableMonths: []int{9, 10},
		EffectiveFrom:    time.Now().Add(-time.Hour),
	}, actor)
	require.NoError(t, err)

	settings, err := ResolveCurrent(db)
	require.NoError(t, err)
	assert.Equal(t, newer.TariffVersionID, settings.VersionID)
	assert.Equal(t, 350000, settings.MonthlyAmount)

	// the old version is archived, never deleted
	var stored model.TariffVersion
	require.NoError(t, db.First(&stored, "tariff_version_id = ?", old.TariffVersionID).Error)
	assert.Equal(t, model.TariffVersionStatusArchived, stored.TariffVersionStatus)

	var count int64
	require.NoError(t, db.Model(&model.TariffVersion{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestFutureVersionDoesNotActivateEarly(t *testing.T) {
	db := testdb.Open(t)
	actor := uuid.New()

	current, err := CreatePlannedVersion(db, CreateVersionInput{
		MonthlyAmount:    300000,
		ChargeableMonths: []int{9, 10},
		EffectiveFrom:    time.Now().Add(-time.Hour),
	}, actor)
	require.NoError(t, err)

	_, err = CreatePlannedVersion(db, CreateVersionInput{
		MonthlyAmount:    999000,
		ChargeableMonths: []int{9, 10},
		EffectiveFrom:    time.Now().Add(24 * time.Hour),
	}, actor)
	require.NoError(t, err)

	settings, err := ResolveCurrent(db)
	require.NoError(t, err)
	assert.Equal(t, current.TariffVersionID, settings.VersionID)
}

func TestRollbackCreatesNewPlannedVersion(t *testing.T) {
	db := testdb.Open(t)
	actor := uuid.New()

	old, err := CreatePlannedVersion(db, CreateVersionInput{
		MonthlyAmount:    300000,
		ChargeableMonths: []int{9, 10, 11},
		EffectiveFrom:    time.Now().Add(-48 * time.Hour),
	}, actor)
	require.NoError(t, err)
	_, err = ResolveCurrent(db)
	require.NoError(t, err)

	_, err = CreatePlannedVersion(db, CreateVersionInput{
		MonthlyAmount:    400000,
		ChargeableMonths: []int{9, 10, 11},
		EffectiveFrom:    time.Now().Add(-time.Hour),
	}, actor)
	require.NoError(t, err)
	_, err = ResolveCurrent(db)
	require.NoError(t, err)

	rolled, err := Rollback(db, old.TariffVersionID, nil, actor)
	require.NoError(t, err)
	assert.NotEqual(t, old.TariffVersionID, rolled.TariffVersionID, "rollback is a new version, not a mutation")
	assert.Equal(t, 300000, rolled.TariffVersionMonthlyAmount)

	settings, err := ResolveCurrent(db)
	require.NoError(t, err)
	assert.Equal(t, rolled.TariffVersionID, settings.VersionID)
	assert.Equal(t, 300000, settings.MonthlyAmount)

	var count int64
	require.NoError(t, db.Model(&model.TariffAuditLog{}).
		Where("tariff_audit_log_action = ?", model.TariffAuditActionRolledBack).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRollbackUnknownVersion(t *testing.T) {
	db := testdb.Open(t)
	_, err := Rollback(db, uuid.New(), nil, uuid.New())
	assert.ErrorIs(t, err, ErrTariffVersionNotFound)
}

func TestCreatePlannedVersionValidation(t *testing.T) {
	db := testdb.Open(t)

	_, err := CreatePlannedVersion(db, CreateVersionInput{MonthlyAmount: 0}, uuid.New())
	assert.Error(t, err)

	_, err = CreatePlannedVersion(db, CreateVersionInput{
		MonthlyAmount:    300000,
		ChargeableMonths: []int{13},
	}, uuid.New())
	assert.Error(t, err)
}

func TestLegacyMonthCountRowResolves(t *testing.T) {
	db := testdb.Open(t)

	// a row written by an older schema: no explicit month list, only a count
	monthCount := 10
	legacy := model.TariffVersion{
		TariffVersionMonthlyAmount: 300000,
		TariffVersionMonthCount:    &monthCount,
		TariffVersionEffectiveFrom: time.Now().Add(-time.Hour),
		TariffVersionStatus:        model.TariffVersionStatusActive,
	}
	require.NoError(t, db.Create(&legacy).Error)

	settings, err := ResolveCurrent(db)
	require.NoError(t, err)
	assert.Len(t, settings.ChargeableMonths, 10)
	assert.Equal(t, 9, settings.ChargeableMonths[0])
}

func TestRollbackAuditCommittedWithVersion(t *testing.T) {
	db := testdb.Open(t)
	actor := uuid.New()

	old, err := CreatePlannedVersion(db, CreateVersionInput{
		MonthlyAmount:    300000,
		ChargeableMonths: []int{9, 10, 11},
		EffectiveFrom:    time.Now().Add(-48 * time.Hour),
	}, actor)
	require.NoError(t, err)
	_, err = ResolveCurrent(db)
	require.NoError(t, err)

	rolled, err := Rollback(db, old.TariffVersionID, nil, actor)
	require.NoError(t, err)

	// one audit entry, written in the same transaction as the new row,
	// with the source version on the old-values side
	var logs []model.TariffAuditLog
	require.NoError(t, db.
		Where("tariff_audit_log_version_id = ?", rolled.TariffVersionID).
		Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, model.TariffAuditActionRolledBack, logs[0].TariffAuditLogAction)
	assert.NotEmpty(t, logs[0].TariffAuditLogOldValues)
}

func TestSingleActiveVersionEnforcedByIndex(t *testing.T) {
	db := testdb.Open(t)

	_, err := CreatePlannedVersion(db, CreateVersionInput{
		MonthlyAmount:    300000,
		ChargeableMonths: []int{9, 10, 11},
		EffectiveFrom:    time.Now().Add(-time.Hour),
	}, uuid.New())
	require.NoError(t, err)
	_, err = ResolveCurrent(db)
	require.NoError(t, err)

	// writing a second ACTIVE row directly trips the partial unique index
	err = db.Create(&model.TariffVersion{
		TariffVersionMonthlyAmount: 400000,
		TariffVersionEffectiveFrom: time.Now(),
		TariffVersionStatus:        model.TariffVersionStatusActive,
	}).Error
	require.Error(t, err)
	assert.True(t, helper.IsUniqueViolation(err))
}
