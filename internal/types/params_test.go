package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ParamsTestSuite struct {
	suite.Suite
}

func TestParamsSuite(t *testing.T) {
	suite.Run(t, new(ParamsTestSuite))
}

func (suite *ParamsTestSuite) TestCloneIsIndependent() {
	original := Params{"lookback": 20, "threshold": 1.5}
	clone := original.Clone()

	clone["lookback"] = 50
	suite.Equal(20, original["lookback"])
	suite.Equal(50, clone["lookback"])
}

func (suite *ParamsTestSuite) TestMerge() {
	base := Params{"lookback": 20, "threshold": 1.5}
	override := Params{"threshold": 2.0, "exit": 0.5}

	merged := base.Merge(override)
	suite.Equal(20, merged["lookback"])
	suite.Equal(2.0, merged["threshold"])
	suite.Equal(0.5, merged["exit"])

	// merge must not mutate either input
	suite.Equal(1.5, base["threshold"])
	suite.NotContains(base, "exit")
}

func (suite *ParamsTestSuite) TestTypedAccessors() {
	params := Params{
		"lookback":  20,
		"threshold": 1.5,
		"mode":      "aggressive",
		"enabled":   true,
	}

	suite.Equal(20, params.Int("lookback", 0))
	suite.Equal(20.0, params.Float("lookback", 0))
	suite.Equal(1.5, params.Float("threshold", 0))
	suite.Equal(1, params.Int("threshold", 0))
	suite.Equal("aggressive", params.String("mode", "default"))
	suite.True(params.Bool("enabled", false))
}

func (suite *ParamsTestSuite) TestDefaults() {
	params := Params{}

	suite.Equal(14, params.Int("missing", 14))
	suite.Equal(2.5, params.Float("missing", 2.5))
	suite.Equal("x", params.String("missing", "x"))
	suite.False(params.Bool("missing", false))
}
