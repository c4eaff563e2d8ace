package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/chamber/internal/models"
)

func TestFilterByID(t *testing.T) {
	records := []*models.LegislatorRecord{
		{ChamberID: 1, PoliticalName: "A"},
		{ChamberID: 2, PoliticalName: "B"},
		{ChamberID: 3, PoliticalName: "C"},
	}

	kept := filterByID(records, []int{3, 1, 42})
	if assert.Len(t, kept, 2) {
		assert.Equal(t, 1, kept[0].ChamberID)
		assert.Equal(t, 3, kept[1].ChamberID)
	}

	assert.Empty(t, filterByID(records, []int{99}))
}
