package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	table := []struct {
		name     string
		expected string
	}{
		{name: " Mercedes - Benz\n", expected: "mercedes-benz"},
		{name: "阿尔法 罗密欧", expected: "阿尔法罗密欧"},
		{name: "BMW", expected: "bmw"},
	}
	for _, row := range table {
		require.Equal(t, row.expected, NormalizeName(row.name))
	}
}

func TestContainsName(t *testing.T) {
	require.True(t, ContainsName("Mercedes-Benz", "benz"))
	require.True(t, ContainsName("阿尔法·罗密欧", "罗密欧"))
	require.True(t, ContainsName("Land Rover", "landrover"))
	require.False(t, ContainsName("Audi", "BMW"))
}
