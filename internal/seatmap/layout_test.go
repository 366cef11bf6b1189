package seatmap

import (
	"testing"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_FullCabin(t *testing.T) {
	seats := Layout(180)
	require.Len(t, seats, 180)

	assert.Equal(t, "1A", seats[0].Number)
	assert.Equal(t, domain.SeatClassPremium, seats[0].Class)
	assert.Equal(t, PremiumPrice, seats[0].Price)

	assert.Equal(t, "5A", seats[24].Number)
	assert.Equal(t, domain.SeatClassExtraLegroom, seats[24].Class)

	assert.Equal(t, "13A", seats[72].Number)
	assert.Equal(t, domain.SeatClassNormal, seats[72].Class)
	assert.Equal(t, NormalPrice, seats[72].Price)

	assert.Equal(t, "30F", seats[179].Number)
	for _, s := range seats {
		assert.True(t, s.Available)
	}
}

func TestLayout_PartialLastRow(t *testing.T) {
	seats := Layout(104)
	require.Len(t, seats, 104)
	assert.Equal(t, "18A", seats[102].Number)
	assert.Equal(t, "18B", seats[103].Number)
}

func TestLayout_Deterministic(t *testing.T) {
	assert.Equal(t, Layout(120), Layout(120))
	assert.Nil(t, Layout(0))
}

func TestRow(t *testing.T) {
	assert.Equal(t, 12, Row("12C"))
	assert.Equal(t, 1, Row("1A"))
	assert.Equal(t, 0, Row("C"))
}
