package optimizer

import (
	"math"
	"math/rand"
	"sort"

	"github.com/tidemark-labs/tidemark/internal/types"
)

// Tree-structured Parzen estimator settings. After the startup phase the
// sampler splits completed trials at the gamma quantile into good and bad
// sets, drifts candidates around good observations, and proposes the
// candidate with the highest good-to-bad density ratio.
const (
	defaultStartupTrials = 10
	defaultGamma         = 0.25
	defaultCandidates    = 24
	kernelBandwidth      = 0.1
)

type observation struct {
	params types.Params
	value  float64
}

type tpeSampler struct {
	space   ParamSpace
	rng     *rand.Rand
	startup int
}

func newTPESampler(space ParamSpace, rng *rand.Rand) *tpeSampler {
	return &tpeSampler{space: space, rng: rng, startup: defaultStartupTrials}
}

// suggest proposes the next parameter set given the history so far. Failed
// trials (value -Inf) always land in the bad set, steering the sampler away
// from broken regions without stopping the search.
func (t *tpeSampler) suggest(history []observation) types.Params {
	if len(history) < t.startup {
		return t.randomSample()
	}

	good, bad := t.split(history)
	if len(good) == 0 || len(bad) == 0 {
		return t.randomSample()
	}

	names := t.space.Names()
	bestScore := math.Inf(-1)
	var best types.Params

	for c := 0; c < defaultCandidates; c++ {
		candidate := make(types.Params, len(names))
		score := 0.0
		for _, name := range names {
			domain := t.space[name]

			// drift around one good observation in unit space
			anchor := domain.toUnit(good[t.rng.Intn(len(good))].params[name])
			u := clampUnit(anchor + t.rng.NormFloat64()*kernelBandwidth)

			score += math.Log(kernelDensity(u, good, domain, name)) -
				math.Log(kernelDensity(u, bad, domain, name))
			candidate[name] = domain.fromUnit(u)
		}
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	return best
}

func (t *tpeSampler) randomSample() types.Params {
	params := make(types.Params, len(t.space))
	for _, name := range t.space.Names() {
		params[name] = t.space[name].Sample(t.rng)
	}

	return params
}

// split orders history by value and cuts at the gamma quantile. At least one
// observation lands on each side.
func (t *tpeSampler) split(history []observation) (good, bad []observation) {
	ordered := make([]observation, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].value > ordered[j].value })

	nGood := int(math.Ceil(defaultGamma * float64(len(ordered))))
	if nGood < 1 {
		nGood = 1
	}
	if nGood >= len(ordered) {
		nGood = len(ordered) - 1
	}

	return ordered[:nGood], ordered[nGood:]
}

// kernelDensity evaluates a Gaussian mixture centered on each observation's
// unit-space value, floored so empty neighborhoods never produce -Inf logs.
func kernelDensity(u float64, obs []observation, domain Domain, name string) float64 {
	const floor = 1e-12

	density := 0.0
	for _, o := range obs {
		center := domain.toUnit(o.params[name])
		diff := (u - center) / kernelBandwidth
		density += math.Exp(-0.5 * diff * diff)
	}
	density /= float64(len(obs)) * kernelBandwidth * math.Sqrt(2*math.Pi)

	if density < floor {
		return floor
	}

	return density
}
