package mailbox

import (
	"testing"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVendorCriteriaEmpty(t *testing.T) {
	assert.Nil(t, BuildVendorCriteria(nil))
	assert.Nil(t, BuildVendorCriteria([]string{}))
}

func TestBuildVendorCriteriaSingle(t *testing.T) {
	crit := BuildVendorCriteria([]string{"a@x.com"})
	require.NotNil(t, crit)

	assert.Equal(t, []string{imap.SeenFlag}, crit.WithoutFlags)
	assert.Equal(t, []string{"a@x.com"}, crit.Header["From"])
	assert.Empty(t, crit.Or)
}

func TestBuildVendorCriteriaNestedOr(t *testing.T) {
	crit := BuildVendorCriteria([]string{"a@x.com", "b@x.com", "c@x.com"})
	require.NotNil(t, crit)

	assert.Equal(t, []string{imap.SeenFlag}, crit.WithoutFlags)
	assert.Empty(t, crit.Header)

	// UNSEEN AND OR(a, OR(b, c)), right-associated
	require.Len(t, crit.Or, 1)
	left, right := crit.Or[0][0], crit.Or[0][1]
	assert.Equal(t, []string{"a@x.com"}, left.Header["From"])

	require.Len(t, right.Or, 1)
	assert.Equal(t, []string{"b@x.com"}, right.Or[0][0].Header["From"])
	assert.Equal(t, []string{"c@x.com"}, right.Or[0][1].Header["From"])
	assert.Empty(t, right.Or[0][1].Or)
}

func TestBuildVendorCriteriaTwo(t *testing.T) {
	crit := BuildVendorCriteria([]string{"a@x.com", "b@x.com"})
	require.NotNil(t, crit)
	require.Len(t, crit.Or, 1)
	assert.Equal(t, []string{"a@x.com"}, crit.Or[0][0].Header["From"])
	assert.Equal(t, []string{"b@x.com"}, crit.Or[0][1].Header["From"])
}
