package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"VaultETH", "VaultETH"},
		{"vaulteth", "VaultETH"},
		{"vault", "VaultETH"},
		{" DBTT ", "DontBuyThisToken"},
		{"token", "DontBuyThisToken"},
		{"crowdsale", "CrowdfundingWithReferral"},
		{"CrowdsaleDBTT", "CrowdfundingWithReferral"},
		{"NotARealContract", "NotARealContract"},
		{" Custom ", "Custom"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in))
		})
	}
}

func TestAll(t *testing.T) {
	all := All()
	assert.Len(t, all, 3)
	for _, c := range all {
		assert.Equal(t, "0.8.18", c.SolidityVersion)
		assert.Equal(t, 200, c.OptimizerRuns)
		assert.NotEmpty(t, c.Aliases)
	}

	all[0].Name = "changed"
	assert.NotEqual(t, "changed", All()[0].Name)
}

func TestLookup(t *testing.T) {
	c, ok := Lookup("crowdfunding")
	assert.True(t, ok)
	assert.Equal(t, "CrowdfundingWithReferral", c.Name)

	_, ok = Lookup("NotARealContract")
	assert.False(t, ok)
}
