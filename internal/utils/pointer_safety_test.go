package utils_test

import (
	"testing"

	"github.com/jrsteele09/viteviteapp/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestPointerHelpers(t *testing.T) {
	require.False(t, utils.Value[bool](nil))
	require.True(t, utils.Value(utils.Ptr(true)))
	require.Equal(t, "closed", utils.Value(utils.Ptr("closed")))
}
