// Package settings holds the tunables shared by the pipeline commands. Every
// option is a flag whose name doubles as the configuration.yaml key and, upper
// cased with the TAGCAMPS_ prefix, as the environment variable.
package settings

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/spf13/pflag"
)

const (
	KeyP0              = "p0"
	KeyCountRatio      = "count_ratio"
	KeyWeightThreshold = "weight_threshold"
	KeyNumTopHashtags  = "num_top_htgs"
	KeyNCPU            = "ncpu"

	DefaultP0              = 1e-6
	DefaultCountRatio      = 0.001
	DefaultWeightThreshold = 3
	DefaultNumTopHashtags  = 100
)

type Options struct {
	P0              float64 `json:"p0" yaml:"p0"`
	CountRatio      float64 `json:"count_ratio" yaml:"count_ratio"`
	WeightThreshold int     `json:"weight_threshold" yaml:"weight_threshold"`
	NumTopHashtags  int     `json:"num_top_htgs" yaml:"num_top_htgs"`
	NCPU            int     `json:"ncpu" yaml:"ncpu"`
}

// DefaultWorkers is the number of available cores minus one, never less than one
func DefaultWorkers() int {
	cores, err := cpu.Counts(true)
	if err != nil || cores < 1 {
		cores = runtime.NumCPU()
	}
	if cores > 1 {
		return cores - 1
	}
	return 1
}

func Defaults() Options {
	return Options{
		P0:              DefaultP0,
		CountRatio:      DefaultCountRatio,
		WeightThreshold: DefaultWeightThreshold,
		NumTopHashtags:  DefaultNumTopHashtags,
		NCPU:            DefaultWorkers(),
	}
}

// Bind registers flags for the named keys on fs, storing into o. Options
// without a flag keep their defaults. Unknown keys panic.
func (o *Options) Bind(fs *pflag.FlagSet, keys ...string) {
	d := Defaults()
	if *o == (Options{}) {
		*o = d
	}
	for _, key := range keys {
		switch key {
		case KeyP0:
			fs.Float64Var(&o.P0, KeyP0, d.P0, "Reference p-value the significance is measured against")
		case KeyCountRatio:
			fs.Float64Var(&o.CountRatio, KeyCountRatio, d.CountRatio, "Drop tags occurring less than this ratio of the seed reference count")
		case KeyWeightThreshold:
			fs.IntVar(&o.WeightThreshold, KeyWeightThreshold, d.WeightThreshold, "Minimum co-occurrence count for an edge to be kept")
		case KeyNumTopHashtags:
			fs.IntVar(&o.NumTopHashtags, KeyNumTopHashtags, d.NumTopHashtags, "Number of top tags to show or select per camp")
		case KeyNCPU:
			fs.IntVar(&o.NCPU, KeyNCPU, d.NCPU, "Number of parallel workers")
		default:
			panic("unknown settings key " + key)
		}
	}
}

func (o Options) Validate() error {
	if !(o.P0 > 0 && o.P0 <= 1) {
		return fmt.Errorf("%v must be in (0,1], got %v", KeyP0, o.P0)
	}
	if o.CountRatio < 0 {
		return fmt.Errorf("%v must not be negative, got %v", KeyCountRatio, o.CountRatio)
	}
	if o.WeightThreshold < 1 {
		return fmt.Errorf("%v must be at least 1, got %v", KeyWeightThreshold, o.WeightThreshold)
	}
	if o.NumTopHashtags < 0 {
		return fmt.Errorf("%v must not be negative, got %v", KeyNumTopHashtags, o.NumTopHashtags)
	}
	if o.NCPU < 1 {
		return fmt.Errorf("%v must be at least 1, got %v", KeyNCPU, o.NCPU)
	}
	return nil
}
