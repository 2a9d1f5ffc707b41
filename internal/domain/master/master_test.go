package master

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Human Resources", DisplayName(KindDepartment, "hr"))
	assert.Equal(t, "Night Shift", DisplayName(KindTimePolicy, " ngt "))
	assert.Equal(t, "ZZ9", DisplayName(KindOrgUnit, "zz9"))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "OPS", NormalizeCode(" ops\t"))
}
