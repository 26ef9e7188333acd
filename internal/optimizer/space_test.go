package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/tidemark-labs/tidemark/pkg/errors"
)

type SpaceTestSuite struct {
	suite.Suite
}

func TestSpaceSuite(t *testing.T) {
	suite.Run(t, new(SpaceTestSuite))
}

func (suite *SpaceTestSuite) TestValidate() {
	tests := []struct {
		name      string
		space     ParamSpace
		expectErr bool
	}{
		{
			name: "valid mixed space",
			space: ParamSpace{
				"frac":   Uniform(0, 1),
				"period": IntRange(2, 50),
				"mode":   Choice("fast", "slow"),
			},
		},
		{
			name:      "empty space",
			space:     ParamSpace{},
			expectErr: true,
		},
		{
			name:      "inverted uniform bounds",
			space:     ParamSpace{"frac": Uniform(1, 0)},
			expectErr: true,
		},
		{
			name:      "degenerate int range",
			space:     ParamSpace{"period": IntRange(5, 5)},
			expectErr: true,
		},
		{
			name:      "empty choice",
			space:     ParamSpace{"mode": Choice()},
			expectErr: true,
		},
		{
			name:      "zero domain",
			space:     ParamSpace{"x": {}},
			expectErr: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := tc.space.Validate()
			if tc.expectErr {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidParamSpace))
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *SpaceTestSuite) TestSampleStaysInDomain() {
	rng := rand.New(rand.NewSource(7))

	uniform := Uniform(5, 10)
	intRange := IntRange(2, 4)
	choice := Choice("a", "b", "c")

	for i := 0; i < 200; i++ {
		suite.True(uniform.Contains(uniform.Sample(rng)))
		suite.True(intRange.Contains(intRange.Sample(rng)))
		suite.True(choice.Contains(choice.Sample(rng)))
	}
}

func (suite *SpaceTestSuite) TestIntRangeCoversBothEnds() {
	rng := rand.New(rand.NewSource(7))
	domain := IntRange(1, 3)

	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		seen[domain.Sample(rng).(int)] = true
	}
	suite.True(seen[1])
	suite.True(seen[2])
	suite.True(seen[3])
}

func (suite *SpaceTestSuite) TestUnitRoundTrip() {
	uniform := Uniform(10, 20)
	suite.InDelta(15.0, uniform.fromUnit(uniform.toUnit(15.0)).(float64), 1e-9)

	intRange := IntRange(0, 9)
	for v := 0; v <= 9; v++ {
		suite.Equal(v, intRange.fromUnit(intRange.toUnit(v)).(int))
	}

	choice := Choice("x", "y", "z")
	for _, v := range []string{"x", "y", "z"} {
		suite.Equal(v, choice.fromUnit(choice.toUnit(v)).(string))
	}
}

func (suite *SpaceTestSuite) TestNamesSorted() {
	space := ParamSpace{"zeta": Uniform(0, 1), "alpha": Uniform(0, 1), "mid": Uniform(0, 1)}
	suite.Equal([]string{"alpha", "mid", "zeta"}, space.Names())
}
