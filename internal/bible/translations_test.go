package bible

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupportedTranslation(t *testing.T) {
	for _, tr := range Translations {
		assert.True(t, IsSupportedTranslation(string(tr)), "%s", tr)
	}
	assert.False(t, IsSupportedTranslation("NIV2084"))
	assert.False(t, IsSupportedTranslation("kjv"), "codes are case sensitive")
	assert.False(t, IsSupportedTranslation(""))
}

func TestAPICode(t *testing.T) {
	// The text service only carries a KJV edition; every supported
	// translation maps onto it.
	for _, tr := range Translations {
		assert.Equal(t, "kjv", APICode(tr), "%s", tr)
	}
	assert.Equal(t, DefaultAPICode, APICode("ESV"))
	assert.Equal(t, DefaultAPICode, APICode(""))
}
