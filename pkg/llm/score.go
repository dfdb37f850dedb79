// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llm

// ScoreWeights are the free parameters of the desirability score.
// Any non-negative weights keep the score monotonic in quality, speed
// and inverse price.
type ScoreWeights struct {
	Quality float64 `yaml:"quality" json:"quality"`
	Speed   float64 `yaml:"speed" json:"speed"`
	Feature float64 `yaml:"feature" json:"feature"`
	Price   float64 `yaml:"price" json:"price"`
}

// DefaultWeights returns the weights used when none are configured.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{Quality: 3, Speed: 2, Feature: 0.5, Price: 5}
}

var qualityRank = map[QualityTier]float64{
	QualityBasic:    1,
	QualityGood:     2,
	QualityHigh:     3,
	QualityVeryHigh: 4,
}

var speedRank = map[SpeedTier]float64{
	SpeedSlow:   1,
	SpeedMedium: 2,
	SpeedFast:   3,
}

// Score computes the weighted desirability of a model. The price term is
// 1/(1+k*p) over the blended per-1K price, which is 1 for free models and
// falls toward 0 as price grows.
func (w ScoreWeights) Score(m ModelDescriptor) float64 {
	blended := (m.Pricing.InputPerKTokens + m.Pricing.OutputPerKTokens) / 2
	inverse := 1 / (1 + 100*blended)
	return w.Quality*qualityRank[m.Performance.Quality] +
		w.Speed*speedRank[m.Performance.Speed] +
		w.Feature*float64(m.Features.Count()) +
		w.Price*inverse
}
