// Package metrics scores closed-loop runs. Every metric implements
// [dynamo.Metric] and is fed one [dynamo.Sample] per committed step.
package metrics

import "github.com/san-kum/dpisim/internal/dynamo"

// NotSettled is reported by SettlingTime when the output ends outside the band.
const NotSettled = -1.0

// Default returns a fresh instance of every metric.
func Default() []dynamo.Metric {
	return []dynamo.Metric{
		NewIAE(),
		NewISE(),
		NewControlEffort(),
		NewOvershoot(),
		NewSaturationRatio(),
		NewSettlingTime(0.02),
	}
}
