package gologin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroValueProfileHasNoListing(t *testing.T) {
	var p Profile
	assert.False(t, p.HasListing(), "a freshly decoded profile must not claim an assignment")
}

func TestListingAssignment(t *testing.T) {
	p := &Profile{ID: "p1"}

	p.AssignListing(0)
	assert.True(t, p.HasListing(), "index 0 is a valid assignment")
	assert.Equal(t, 0, p.ListingIndex())

	p.AssignListing(7)
	assert.Equal(t, 7, p.ListingIndex())

	p.ClearListing()
	assert.False(t, p.HasListing())
}
